package timer

import (
	"sync"
	"time"
)

type Phase int

const (
	Idle Phase = iota
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "running"
	}
	return "idle"
}

// Timer is the two-state stopwatch machine. It does not read the clock
// itself; callers pass the instant of each transition.
type Timer struct {
	mu        sync.RWMutex
	phase     Phase
	startedAt time.Time
}

func New() *Timer {
	return &Timer{}
}

// Start moves Idle to Running(at). It reports false and changes nothing when
// already running.
func (t *Timer) Start(at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == Running {
		return false
	}
	t.phase = Running
	t.startedAt = at
	return true
}

// Stop moves Running to Idle and returns the start instant of the run that
// ended. It reports false when already idle.
func (t *Timer) Stop() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != Running {
		return time.Time{}, false
	}
	started := t.startedAt
	t.phase = Idle
	t.startedAt = time.Time{}
	return started, true
}

func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = Idle
	t.startedAt = time.Time{}
}

func (t *Timer) Phase() Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase
}

func (t *Timer) Running() bool {
	return t.Phase() == Running
}

func (t *Timer) StartedAt() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.startedAt, t.phase == Running
}

// Elapsed returns now minus the start instant, or zero when idle.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.phase != Running {
		return 0
	}
	return now.Sub(t.startedAt)
}
