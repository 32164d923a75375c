package vision

import (
	"sort"
)

// FeaturePoint is a salient corner in pixel space. Descriptor is the raw
// intensity patch around the point; it may be nil when extraction was
// skipped.
type FeaturePoint struct {
	X          float64
	Y          float64
	Response   float64
	Descriptor []uint8
}

// DetectorConfig holds the corner-detection tunables.
type DetectorConfig struct {
	// MaxFeatures caps the number of corners returned per frame.
	MaxFeatures int `json:"max_features"`
	// Threshold is the minimum corner response to accept.
	Threshold float64 `json:"threshold"`
	// Window is the half-size of the gradient accumulation window.
	Window int `json:"window"`
	// Stride is the grid step between evaluated pixels. Coarser grids trade
	// corner density for speed.
	Stride int `json:"stride"`
	// K is the Harris trace weight.
	K float64 `json:"k"`
	// PatchSize is the side length of the square intensity descriptor.
	PatchSize int `json:"patch_size"`
}

// DetectorDefaults returns the standard detector configuration.
func DetectorDefaults() DetectorConfig {
	return DetectorConfig{
		MaxFeatures: 200,
		Threshold:   30,
		Window:      3,
		Stride:      4,
		K:           0.04,
		PatchSize:   8,
	}
}

// Detector finds Harris-style corners on a coarse grid.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector returns a detector with the given configuration.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns up to MaxFeatures corners with response above the
// threshold, ordered by descending response. A malformed frame (buffer
// shorter than width·height) yields an empty result.
func (d *Detector) Detect(f Frame) []FeaturePoint {
	if !f.Valid() {
		return nil
	}

	w := d.cfg.Window
	features := make([]FeaturePoint, 0, d.cfg.MaxFeatures)

scan:
	for y := w; y < f.Height-w; y += d.cfg.Stride {
		for x := w; x < f.Width-w; x += d.cfg.Stride {
			r := d.cornerResponse(f, x, y)
			if r <= d.cfg.Threshold {
				continue
			}
			features = append(features, FeaturePoint{
				X:          float64(x),
				Y:          float64(y),
				Response:   r,
				Descriptor: d.extractDescriptor(f, x, y),
			})
			if len(features) >= d.cfg.MaxFeatures {
				break scan
			}
		}
	}

	sort.Slice(features, func(i, j int) bool {
		return features[i].Response > features[j].Response
	})
	return features
}

// cornerResponse accumulates the gradient covariance over the window around
// (cx, cy) from forward differences and returns det(M) − k·trace(M)²,
// clamped to ≥ 0.
func (d *Detector) cornerResponse(f Frame, cx, cy int) float64 {
	var ixx, iyy, ixy float64
	for dy := -d.cfg.Window; dy <= d.cfg.Window; dy++ {
		for dx := -d.cfg.Window; dx <= d.cfg.Window; dx++ {
			x, y := cx+dx, cy+dy
			c := float64(f.At(x, y))
			gx := float64(f.At(x+1, y)) - c
			gy := float64(f.At(x, y+1)) - c
			ixx += gx * gx
			iyy += gy * gy
			ixy += gx * gy
		}
	}
	det := ixx*iyy - ixy*ixy
	trace := ixx + iyy
	r := det - d.cfg.K*trace*trace
	if r < 0 {
		return 0
	}
	return r
}

// extractDescriptor samples a PatchSize×PatchSize intensity patch centered
// on (cx, cy), clamping out-of-bounds reads to the image edges.
func (d *Detector) extractDescriptor(f Frame, cx, cy int) []uint8 {
	n := d.cfg.PatchSize
	half := n / 2
	patch := make([]uint8, 0, n*n)
	for dy := -half; dy < n-half; dy++ {
		for dx := -half; dx < n-half; dx++ {
			patch = append(patch, f.At(cx+dx, cy+dy))
		}
	}
	return patch
}
