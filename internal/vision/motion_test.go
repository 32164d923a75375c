package vision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shiftMatches(n int, dx, dy float64) []FeatureMatch {
	matches := make([]FeatureMatch, n)
	for i := range matches {
		prev := FeaturePoint{X: float64(10 * i), Y: float64(5 * i)}
		matches[i] = FeatureMatch{
			Previous: prev,
			Current:  FeaturePoint{X: prev.X + dx, Y: prev.Y + dy},
		}
	}
	return matches
}

func TestEstimateFusesFeatureAndReference(t *testing.T) {
	e := NewEstimator(EstimatorDefaults())

	// 10 px right, reference 1 m along x:
	// x = 0.3·(10·0.001) + 0.7·1 = 0.703
	got, err := e.Estimate(shiftMatches(5, 10, 0), Reference{TX: 1, QW: 1, Tracking: true})
	require.NoError(t, err)

	assert.InDelta(t, 0.703, got.X, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
	assert.InDelta(t, 0, got.Theta, 1e-9)
}

func TestEstimateNegatesReferenceZ(t *testing.T) {
	e := NewEstimator(EstimatorDefaults())

	// Reference z = −2 maps to planar y = +2.
	got, err := e.Estimate(shiftMatches(3, 0.05, 0.05), Reference{TZ: -2, QW: 1, Tracking: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.7*2, got.Y, 1e-4)
}

func TestEstimateRotationFromDisplacement(t *testing.T) {
	e := NewEstimator(EstimatorDefaults())

	// All displacements point straight up: rotation estimate π/2, fused
	// with the identity reference yaw at 0.3 weight.
	got, err := e.Estimate(shiftMatches(4, 0, 10), Reference{QW: 1, Tracking: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.3*math.Pi/2, got.Theta, 1e-9)
}

func TestEstimateIgnoresSubNoiseDisplacementForRotation(t *testing.T) {
	e := NewEstimator(EstimatorDefaults())

	// 0.05 px is under the noise floor: no rotation contribution.
	got, err := e.Estimate(shiftMatches(4, 0, 0.05), Reference{QW: 1, Tracking: true})
	require.NoError(t, err)
	assert.Zero(t, got.Theta)
}

func TestEstimateNoMatches(t *testing.T) {
	e := NewEstimator(EstimatorDefaults())
	_, err := e.Estimate(nil, Reference{QW: 1, Tracking: true})
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestEstimateRejectsNonFinite(t *testing.T) {
	e := NewEstimator(EstimatorDefaults())
	matches := []FeatureMatch{{
		Previous: FeaturePoint{X: 0},
		Current:  FeaturePoint{X: math.NaN()},
	}}
	_, err := e.Estimate(matches, Reference{QW: 1, Tracking: true})
	assert.Error(t, err)
}

func TestReferencePlanar(t *testing.T) {
	ref := Reference{TX: 1.5, TZ: 2, QZ: math.Sin(math.Pi / 4), QW: math.Cos(math.Pi / 4)}
	p := ref.Planar()
	assert.InDelta(t, 1.5, p.X, 1e-9)
	assert.InDelta(t, -2, p.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, p.Theta, 1e-9)
}
