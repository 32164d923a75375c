package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/drift_tracker/internal/vision"
)

// FrameSource supplies captures to the poll loop. Next returns (nil, nil)
// when no new frame is ready yet; it must never block waiting for one.
type FrameSource interface {
	Next() (*vision.Capture, error)
}

// Loop polls a FrameSource at a fixed approximate rate and feeds the
// tracker. The timer is re-armed after each tick's work completes rather
// than firing on a hard schedule, so a slow frame delays the next poll
// instead of piling ticks up.
type Loop struct {
	tracker  *Visual
	source   FrameSource
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop returns a loop that is not yet running.
func NewLoop(t *Visual, src FrameSource, interval time.Duration) *Loop {
	return &Loop{tracker: t, source: src, interval: interval}
}

// Start begins polling. Starting a running loop is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.tracker.Start()
	go l.run(ctx, l.done)
}

// Stop halts polling and the tracker. Safe to call concurrently with an
// in-flight tick: the tick finishes, and no further ticks are scheduled
// once Stop returns.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	l.tracker.Stop()
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(l.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		cap, err := l.source.Next()
		switch {
		case err != nil:
			log.Printf("tracker loop: frame source: %v", err)
		case cap == nil:
			// No frame ready; skip this tick and re-arm.
		default:
			l.tracker.ProcessFrame(*cap)
		}

		timer.Reset(l.interval)
	}
}
