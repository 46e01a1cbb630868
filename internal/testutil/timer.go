package testutil

import (
	"sync"
	"time"
)

// Timer fires immediately and records every wait it was asked for. It satisfies
// the backoff.Timer shape used by pkg/retry.
type Timer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func NewTimer() *Timer {
	return &Timer{c: make(chan time.Time, 1)}
}

func (t *Timer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()

	select {
	case <-t.c:
	default:
	}
	t.c <- time.Now()
}

func (t *Timer) Stop() {}

func (t *Timer) C() <-chan time.Time { return t.c }

// Waits returns the requested waits in order.
func (t *Timer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}
