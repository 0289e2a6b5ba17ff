// Package sched provides the cancellable-timer primitive used for every
// debounce window in the application (search idle delay, preview-open
// delay). Components depend on the Scheduler interface so tests can drive
// time deterministically with Manual instead of sleeping.
package sched

import (
	"sync"
	"time"
)

// CancelFunc cancels a scheduled callback. Calling it after the callback
// has fired (or calling it twice) is a no-op.
type CancelFunc func()

// Scheduler schedules a function to run once after a delay.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) CancelFunc
}

// ── Wall-clock implementation ───────────────────────────────────────────────

// Timers is the production Scheduler backed by time.AfterFunc.
//
// Callbacks fire on a timer goroutine. Callers that must stay on the UI
// event loop (Bubbletea) should make the callback post a message rather
// than mutate model state directly.
type Timers struct{}

// NewTimers returns a wall-clock scheduler.
func NewTimers() *Timers { return &Timers{} }

// Schedule runs fn once after d. The returned CancelFunc stops the timer
// if it has not fired yet.
func (*Timers) Schedule(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ── Deterministic implementation ────────────────────────────────────────────

// Manual is a Scheduler for tests: nothing fires until Fire or Advance is
// called. Safe for concurrent use, though tests are typically sequential.
type Manual struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]manualEntry
	now     time.Duration
}

type manualEntry struct {
	due time.Duration
	fn  func()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{pending: make(map[int]manualEntry)}
}

// Schedule registers fn to fire when the manual clock advances past d from
// the current manual time.
func (m *Manual) Schedule(d time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.pending[id] = manualEntry{due: m.now + d, fn: fn}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}
}

// Advance moves the manual clock forward and fires every callback whose
// deadline has passed, in scheduling order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var ready []func()
	var ids []int
	for id, e := range m.pending {
		if e.due <= m.now {
			ids = append(ids, id)
		}
	}
	// Map iteration order is random; fire in registration order.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		ready = append(ready, m.pending[id].fn)
		delete(m.pending, id)
	}
	m.mu.Unlock()

	for _, fn := range ready {
		fn()
	}
}

// FireAll fires every pending callback immediately, regardless of deadline.
func (m *Manual) FireAll() {
	m.Advance(1 << 40)
}

// Pending reports how many callbacks are scheduled and not yet fired.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
