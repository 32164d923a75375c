package vision

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// ErrNoMatches is returned when motion estimation has no correspondences to
// work with. Callers fall back to the reference pose.
var ErrNoMatches = errors.New("no feature matches")

// EstimatorConfig holds the motion-estimation tunables.
type EstimatorConfig struct {
	// PixelToMeter converts mean pixel displacement to meters. An empirical
	// scale with no calibration procedure; treat as configuration.
	PixelToMeter float64 `json:"pixel_to_meter"`
	// FeatureWeight is the fusion weight of the feature-derived increment;
	// the reference pose carries 1 − FeatureWeight.
	FeatureWeight float64 `json:"feature_weight"`
	// RotationSamples caps how many matches contribute to the rotation
	// estimate.
	RotationSamples int `json:"rotation_samples"`
	// NoiseFloor is the minimum displacement magnitude (px) for a match to
	// contribute to rotation.
	NoiseFloor float64 `json:"noise_floor"`
}

// EstimatorDefaults returns the standard motion-estimation configuration.
func EstimatorDefaults() EstimatorConfig {
	return EstimatorConfig{
		PixelToMeter:    0.001,
		FeatureWeight:   0.3,
		RotationSamples: 20,
		NoiseFloor:      0.1,
	}
}

// Estimator converts matched feature displacement plus the external
// reference pose into an incremental planar pose, fusing the two with fixed
// weights.
type Estimator struct {
	cfg EstimatorConfig
}

// NewEstimator returns a motion estimator with the given configuration.
func NewEstimator(cfg EstimatorConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate returns the incremental pose for one frame step: the mean pixel
// displacement scaled to meters, fused with the reference pose translation
// and yaw. The increment is meant to be added to the running accumulated
// pose. A degenerate input (no matches, non-finite arithmetic) returns an
// error and the caller falls back to the reference pose directly.
func (e *Estimator) Estimate(matches []FeatureMatch, ref Reference) (pose.Pose2D, error) {
	if len(matches) == 0 {
		return pose.Pose2D{}, ErrNoMatches
	}

	dxs := make([]float64, len(matches))
	dys := make([]float64, len(matches))
	for i, m := range matches {
		dxs[i] = m.Dx()
		dys[i] = m.Dy()
	}
	avgDx := stat.Mean(dxs, nil)
	avgDy := stat.Mean(dys, nil)

	featureX := avgDx * e.cfg.PixelToMeter
	featureY := avgDy * e.cfg.PixelToMeter
	featureTheta := e.rotationEstimate(matches)

	refPlanar := ref.Planar()
	wf := e.cfg.FeatureWeight
	wr := 1 - wf

	out := pose.Pose2D{
		X:     wf*featureX + wr*refPlanar.X,
		Y:     wf*featureY + wr*refPlanar.Y,
		Theta: wf*featureTheta + wr*refPlanar.Theta,
	}
	if !finite(out.X) || !finite(out.Y) || !finite(out.Theta) {
		return pose.Pose2D{}, errors.New("motion estimate is not finite")
	}
	return out, nil
}

// rotationEstimate is the mean displacement direction over the first
// RotationSamples matches whose displacement exceeds the noise floor, 0 when
// none qualify.
func (e *Estimator) rotationEstimate(matches []FeatureMatch) float64 {
	var angles []float64
	for _, m := range matches {
		if len(angles) >= e.cfg.RotationSamples {
			break
		}
		dx, dy := m.Dx(), m.Dy()
		if math.Hypot(dx, dy) <= e.cfg.NoiseFloor {
			continue
		}
		angles = append(angles, math.Atan2(dy, dx))
	}
	if len(angles) == 0 {
		return 0
	}
	return stat.Mean(angles, nil)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
