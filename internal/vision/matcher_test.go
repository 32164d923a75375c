package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patch(fill uint8, n int) []uint8 {
	p := make([]uint8, n)
	for i := range p {
		p[i] = fill
	}
	return p
}

func TestMatchIdenticalSetsIsIdempotent(t *testing.T) {
	m := NewMatcher(MatcherDefaults())

	features := []FeaturePoint{
		{X: 10, Y: 10, Descriptor: patch(10, 64)},
		{X: 30, Y: 12, Descriptor: patch(80, 64)},
		{X: 50, Y: 40, Descriptor: patch(200, 64)},
	}
	matches := m.Match(features, features)

	require.Len(t, matches, len(features))
	for i, match := range matches {
		assert.Zero(t, match.Distance)
		assert.Equal(t, features[i].X, match.Previous.X)
		assert.Equal(t, features[i].X, match.Current.X)
	}
}

func TestMatchDistanceThreshold(t *testing.T) {
	m := NewMatcher(MatcherDefaults())
	prev := []FeaturePoint{{Descriptor: patch(100, 64)}}

	// One byte off by 5: SSD 25, under the threshold.
	closeDesc := patch(100, 64)
	closeDesc[0] = 105
	matches := m.Match(prev, []FeaturePoint{{Descriptor: closeDesc}})
	require.Len(t, matches, 1)
	assert.InDelta(t, 25, matches[0].Distance, 1e-9)

	// One byte off by 6: SSD 36, rejected.
	farDesc := patch(100, 64)
	farDesc[0] = 106
	assert.Empty(t, m.Match(prev, []FeaturePoint{{Descriptor: farDesc}}))
}

func TestMatchSkipsAbsentOrMismatchedDescriptors(t *testing.T) {
	m := NewMatcher(MatcherDefaults())
	prev := []FeaturePoint{
		{Descriptor: nil},
		{Descriptor: patch(10, 32)},
		{Descriptor: patch(10, 64)},
	}
	cur := []FeaturePoint{{Descriptor: patch(10, 64)}}

	matches := m.Match(prev, cur)
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Previous.Descriptor, 64)
}

// The one-way greedy matcher deliberately lets one current feature serve
// several previous features.
func TestMatchAllowsSharedCurrentFeature(t *testing.T) {
	m := NewMatcher(MatcherDefaults())
	prev := []FeaturePoint{
		{X: 1, Descriptor: patch(10, 64)},
		{X: 2, Descriptor: patch(10, 64)},
	}
	cur := []FeaturePoint{{X: 5, Descriptor: patch(10, 64)}}

	matches := m.Match(prev, cur)
	require.Len(t, matches, 2)
	assert.Equal(t, matches[0].Current.X, matches[1].Current.X)
}

func TestMatchCrossCheck(t *testing.T) {
	cfg := MatcherDefaults()
	cfg.CrossCheck = true
	m := NewMatcher(cfg)

	// cur[0] is within threshold of both previous features, but only
	// prev[0] is cur[0]'s nearest previous feature.
	nearMiss := patch(10, 64)
	nearMiss[0] = 12
	prev := []FeaturePoint{
		{X: 1, Descriptor: patch(10, 64)},
		{X: 2, Descriptor: nearMiss},
	}
	cur := []FeaturePoint{{X: 5, Descriptor: patch(10, 64)}}

	matches := m.Match(prev, cur)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Previous.X)
}

func TestMatchEmptyInputs(t *testing.T) {
	m := NewMatcher(MatcherDefaults())
	assert.Empty(t, m.Match(nil, nil))
	assert.Empty(t, m.Match([]FeaturePoint{{Descriptor: patch(1, 64)}}, nil))
	assert.Empty(t, m.Match(nil, []FeaturePoint{{Descriptor: patch(1, 64)}}))
}
