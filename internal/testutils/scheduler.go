package testutils

import (
	"sync"
	"time"

	"github.com/espalier-dev/espalier/pkg/sim"
)

// ManualScheduler implements sim.Scheduler with explicit, synchronous
// firing. Tests use it to drive pacing continuations deterministically
// instead of waiting on wall-clock timers.
type ManualScheduler struct {
	mu      sync.Mutex
	entries []*entry
}

type entry struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc records the continuation without starting any timer.
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) sim.CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{delay: d, fn: fn}
	m.entries = append(m.entries, e)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		e.cancelled = true
	}
}

// Pending returns the number of continuations that are scheduled but
// neither fired nor cancelled.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if !e.fired && !e.cancelled {
			n++
		}
	}
	return n
}

// Step fires the oldest pending continuation. It reports whether one fired.
func (m *ManualScheduler) Step() bool {
	fn := m.take(false)
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Run fires continuations until none are pending, returning how many
// fired. Firing a continuation may schedule new ones; those are drained
// too. The iteration cap guards against flows that loop forever.
func (m *ManualScheduler) Run() int {
	count := 0
	for count < 1000 && m.Step() {
		count++
	}
	return count
}

// FireStale fires every continuation that was cancelled before it could
// fire, returning how many ran. This simulates the race where a
// wall-clock timer has already expired when the run is reset, so the
// callback fires anyway and only the engine's generation check can stop
// it from touching fresh state.
func (m *ManualScheduler) FireStale() int {
	count := 0
	for {
		fn := m.take(true)
		if fn == nil {
			return count
		}
		fn()
		count++
	}
}

// take pops the oldest unfired entry, cancelled entries only when
// stale is set. The callback is returned so it runs outside the lock.
func (m *ManualScheduler) take(stale bool) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.fired || e.cancelled != stale {
			continue
		}
		e.fired = true
		return e.fn
	}
	return nil
}
