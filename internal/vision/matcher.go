package vision

// FeatureMatch pairs a feature from the previous frame with its nearest
// neighbor in the current frame. Matches are ephemeral, computed per
// frame-pair.
type FeatureMatch struct {
	Previous FeaturePoint
	Current  FeaturePoint
	Distance float64
}

// Dx returns the horizontal pixel displacement current − previous.
func (m FeatureMatch) Dx() float64 { return m.Current.X - m.Previous.X }

// Dy returns the vertical pixel displacement current − previous.
func (m FeatureMatch) Dy() float64 { return m.Current.Y - m.Previous.Y }

// MatcherConfig holds the descriptor-matching tunables.
type MatcherConfig struct {
	// MaxDistance is the largest sum-of-squared-differences descriptor
	// distance accepted as a match.
	MaxDistance float64 `json:"max_distance"`
	// CrossCheck additionally requires the match to be mutual: the current
	// feature's nearest previous feature must be the one that claimed it.
	// Off by default; the one-way greedy matcher deliberately allows one
	// current feature to serve several previous features.
	CrossCheck bool `json:"cross_check"`
}

// MatcherDefaults returns the standard matching configuration.
func MatcherDefaults() MatcherConfig {
	return MatcherConfig{MaxDistance: 30.0}
}

// Matcher pairs features between two frames by descriptor distance.
type Matcher struct {
	cfg MatcherConfig
}

// NewMatcher returns a matcher with the given configuration.
func NewMatcher(cfg MatcherConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match finds, for every previous feature, the current feature minimizing
// descriptor distance, and accepts the pair when the distance is below
// MaxDistance. Features with absent or differently sized descriptors never
// match. O(n·m) greedy nearest neighbor.
func (m *Matcher) Match(previous, current []FeaturePoint) []FeatureMatch {
	if len(previous) == 0 || len(current) == 0 {
		return nil
	}

	matches := make([]FeatureMatch, 0, len(previous))
	for _, prev := range previous {
		best, dist := m.nearest(prev, current)
		if best < 0 || dist >= m.cfg.MaxDistance {
			continue
		}
		if m.cfg.CrossCheck {
			back, _ := m.nearest(current[best], previous)
			if back < 0 || previous[back].X != prev.X || previous[back].Y != prev.Y {
				continue
			}
		}
		matches = append(matches, FeatureMatch{
			Previous: prev,
			Current:  current[best],
			Distance: dist,
		})
	}
	return matches
}

// nearest returns the index of the candidate with the smallest descriptor
// distance to p, or −1 when no candidate is comparable.
func (m *Matcher) nearest(p FeaturePoint, candidates []FeaturePoint) (int, float64) {
	best := -1
	bestDist := 0.0
	for i, c := range candidates {
		d, ok := descriptorDistance(p.Descriptor, c.Descriptor)
		if !ok {
			continue
		}
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// descriptorDistance is the sum of squared intensity differences between two
// descriptors. Absent or mismatched-length descriptors are not comparable.
func descriptorDistance(a, b []uint8) (float64, bool) {
	if a == nil || b == nil || len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum, true
}
