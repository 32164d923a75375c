package drift

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

func dr(x, y float64, nanos int64) pose.Update {
	return pose.Update{Source: pose.SourceDeadReckoning, Pose: pose.Pose2D{X: x, Y: y}, Nanos: nanos}
}

func visual(x, y float64, nanos int64) pose.Update {
	return pose.Update{Source: pose.SourceVisual, Pose: pose.Pose2D{X: x, Y: y}, Nanos: nanos}
}

func TestDriftIsZeroWhileEitherStreamSilent(t *testing.T) {
	a := NewAggregator()
	assert.Zero(t, a.Drift())

	a.OnPose(dr(3, 4, 1))
	assert.Zero(t, a.Drift())
	assert.Zero(t, a.RMSDrift(0))
}

func TestDriftBetweenLatestPoses(t *testing.T) {
	a := NewAggregator()
	a.OnPose(dr(0, 0, 1))
	a.OnPose(visual(3, 4, 1))
	assert.InDelta(t, 5, a.Drift(), 1e-9)

	a.OnPose(dr(3, 4, 2))
	assert.Zero(t, a.Drift())
}

func TestRMSDriftOverAlignedPairs(t *testing.T) {
	a := NewAggregator()
	// Pairs separated by 1 m and 3 m: rms = sqrt((1+9)/2)
	a.OnPose(dr(1, 0, 1))
	a.OnPose(visual(0, 0, 1))
	a.OnPose(dr(3, 0, 2))
	a.OnPose(visual(0, 0, 2))

	assert.InDelta(t, math.Sqrt(5), a.RMSDrift(0), 1e-9)
	// Window of 1: only the last pair.
	assert.InDelta(t, 3, a.RMSDrift(1), 1e-9)
}

func TestTrajectoriesAreCopies(t *testing.T) {
	a := NewAggregator()
	a.OnPose(dr(1, 1, 1))

	drTraj, vis := a.Trajectories()
	assert.Len(t, drTraj, 1)
	assert.Empty(t, vis)

	drTraj[0].Pose.X = 99
	fresh, _ := a.Trajectories()
	assert.Equal(t, 1.0, fresh[0].Pose.X)
}
