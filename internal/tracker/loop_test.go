package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/drift_tracker/internal/vision"
)

// fakeSource counts polls and serves a fixed capture every other tick.
type fakeSource struct {
	mu     sync.Mutex
	polls  int
	serve  bool
	frame  vision.Frame
	nextNS int64
}

func (s *fakeSource) Next() (*vision.Capture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	s.serve = !s.serve
	if !s.serve {
		// Nothing ready this tick.
		return nil, nil
	}
	s.nextNS++
	return &vision.Capture{
		Frame: s.frame,
		Ref:   vision.Reference{QW: 1, Tracking: true},
		Nanos: s.nextNS,
	}, nil
}

func (s *fakeSource) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func TestLoopPollsAndStops(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = ModeReference
	v := New(cfg, nil)
	src := &fakeSource{frame: vision.Frame{Pix: make([]uint8, 64), Width: 8, Height: 8}}

	loop := NewLoop(v, src, time.Millisecond)
	loop.Start()
	assert.True(t, v.Running())

	require.Eventually(t, func() bool { return src.pollCount() >= 5 },
		time.Second, time.Millisecond)

	loop.Stop()
	assert.False(t, v.Running())

	// No further ticks once Stop has returned.
	after := src.pollCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, src.pollCount())
}

func TestLoopStartStopIdempotent(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = ModeReference
	v := New(cfg, nil)
	src := &fakeSource{}

	loop := NewLoop(v, src, time.Millisecond)
	loop.Stop() // never started: no-op
	loop.Start()
	loop.Start() // already running: no-op
	loop.Stop()
	loop.Stop() // already stopped: no-op
	assert.False(t, v.Running())
}
