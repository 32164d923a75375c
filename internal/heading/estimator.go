package heading

import (
	"math"
	"sync/atomic"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// Estimator keeps the most recent yaw extracted from an orientation
// quaternion stream. Writers and readers may be on different goroutines:
// the value is published atomically, so a reader sees either the previous
// or the current heading, never a torn one. No history is kept.
type Estimator struct {
	bits atomic.Uint64
}

// NewEstimator returns an estimator with heading 0.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Update replaces the current heading with the yaw of the given quaternion.
func (e *Estimator) Update(qx, qy, qz, qw float64) {
	e.Set(pose.YawFromQuaternion(qx, qy, qz, qw))
}

// Set replaces the current heading with a yaw supplied directly, in radians.
// Used by providers that already produce a heading (e.g. GPS course).
func (e *Estimator) Set(yaw float64) {
	e.bits.Store(math.Float64bits(pose.NormalizeAngle(yaw)))
}

// Heading returns the latest yaw in radians, (−π, π].
func (e *Estimator) Heading() float64 {
	return math.Float64frombits(e.bits.Load())
}
