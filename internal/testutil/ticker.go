package testutil

import (
	"sync"
	"time"
)

// ManualTicker delivers ticks only when Tick is called.
//
// Tick blocks until the consumer receives the tick, so after Tick returns
// the consumer has started handling it.
type ManualTicker struct {
	ch       chan time.Time
	done     chan struct{}
	mu       sync.Mutex
	stopped  bool
	interval time.Duration
}

// NewManualTicker creates a ticker for the given interval.
// The interval is recorded only so tests can assert on it.
func NewManualTicker(interval time.Duration) *ManualTicker {
	return &ManualTicker{
		ch:       make(chan time.Time),
		done:     make(chan struct{}),
		interval: interval,
	}
}

// C returns the tick channel.
func (t *ManualTicker) C() <-chan time.Time {
	return t.ch
}

// Tick delivers one tick carrying at. It returns false without blocking
// once the ticker is stopped, including when Stop is called while Tick
// waits for the consumer.
func (t *ManualTicker) Tick(at time.Time) bool {
	if t.Stopped() {
		return false
	}
	select {
	case t.ch <- at:
		return true
	case <-t.done:
		return false
	}
}

// Stop marks the ticker stopped and releases a pending Tick. The tick
// channel is never closed, matching time.Ticker.
func (t *ManualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.stopped = true
		close(t.done)
	}
}

// Stopped reports whether Stop was called.
func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Interval returns the interval the ticker was created with.
func (t *ManualTicker) Interval() time.Duration {
	return t.interval
}
