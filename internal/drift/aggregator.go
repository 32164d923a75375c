package drift

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/relabs-tech/drift_tracker/internal/pose"
)

// Point is one trajectory sample.
type Point struct {
	Pose  pose.Pose2D `json:"pose"`
	Nanos int64       `json:"t_ns"`
}

// Aggregator collects the dead-reckoning and visual trajectories and
// quantifies their divergence. It implements pose.Sink; either stream may
// be silent for any stretch of time.
type Aggregator struct {
	mu     sync.Mutex
	dr     []Point
	visual []Point
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// OnPose records one update on its source's trajectory.
func (a *Aggregator) OnPose(u pose.Update) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := Point{Pose: u.Pose, Nanos: u.Nanos}
	switch u.Source {
	case pose.SourceDeadReckoning:
		a.dr = append(a.dr, p)
	case pose.SourceVisual:
		a.visual = append(a.visual, p)
	}
}

// Trajectories returns copies of both trajectories, dead reckoning first.
func (a *Aggregator) Trajectories() ([]Point, []Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	dr := make([]Point, len(a.dr))
	copy(dr, a.dr)
	vis := make([]Point, len(a.visual))
	copy(vis, a.visual)
	return dr, vis
}

// Drift is the planar distance between the latest pose of each trajectory,
// or 0 while either stream is still empty.
func (a *Aggregator) Drift() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.dr) == 0 || len(a.visual) == 0 {
		return 0
	}
	d := a.dr[len(a.dr)-1].Pose
	v := a.visual[len(a.visual)-1].Pose
	return math.Hypot(d.X-v.X, d.Y-v.Y)
}

// RMSDrift is the root-mean-square separation over the last window sample
// pairs (index-aligned), or 0 when there is nothing to pair. window <= 0
// means all pairs.
func (a *Aggregator) RMSDrift(window int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.dr)
	if len(a.visual) < n {
		n = len(a.visual)
	}
	if n == 0 {
		return 0
	}
	start := 0
	if window > 0 && n > window {
		start = n - window
	}
	sq := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		d := a.dr[i].Pose
		v := a.visual[i].Pose
		sep := math.Hypot(d.X-v.X, d.Y-v.Y)
		sq = append(sq, sep*sep)
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
