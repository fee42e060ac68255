package timer

import (
	"sync"
	"time"
)

// Timer measures time since a start instant. Elapsed is read from the clock
// on demand, so a missed tick never loses time.
type Timer struct {
	mu      sync.RWMutex
	now     func() time.Time
	started time.Time
	elapsed time.Duration
	running bool
}

// NewWithClock returns a stopped timer that reads time from now.
func NewWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

// StartAt runs the timer as if it had been started at t.
func (t *Timer) StartAt(start time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = start
	t.elapsed = 0
	t.running = true
}

// Stop freezes the elapsed time.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.elapsed = t.now().Sub(t.started)
	t.running = false
}

func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.elapsed = 0
	t.started = time.Time{}
}

func (t *Timer) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.running {
		return t.now().Sub(t.started)
	}
	return t.elapsed
}

func (t *Timer) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}
