package search

import (
	"sync"
	"time"

	"notepane/internal/sched"
)

// Orchestrator owns the raw vs debounced query split. The raw query
// changes on every keystroke and drives the input widget and inline
// highlight; the debounced query is promoted only after an idle delay and
// is the sole source of parsed tokens, so filtering never recomputes per
// keystroke.
//
// The debounce timer fires off the event loop; it only posts a generation
// number through the notify callback. The owner calls Settle on the event
// loop, which promotes the raw query iff the generation is still current.
// That generation check is the single arbiter of staleness.
type Orchestrator struct {
	timers sched.Scheduler
	delay  time.Duration
	notify func(gen uint64)

	mu        sync.Mutex
	active    bool
	raw       string
	debounced string
	tokens    TokenSet
	gen       uint64
	cancel    sched.CancelFunc

	listeners      map[string]func(TokenSet)
	lastStructural string
}

// NewOrchestrator creates an orchestrator using the given scheduler for
// its debounce window.
func NewOrchestrator(timers sched.Scheduler, delay time.Duration) *Orchestrator {
	return &Orchestrator{
		timers:    timers,
		delay:     delay,
		listeners: make(map[string]func(TokenSet)),
	}
}

// SetNotify wires the callback invoked (off the event loop) when the
// debounce window elapses. The callback should post a message that leads
// back to Settle.
func (o *Orchestrator) SetNotify(fn func(gen uint64)) {
	o.mu.Lock()
	o.notify = fn
	o.mu.Unlock()
}

// Active reports whether search is on.
func (o *Orchestrator) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Raw returns the per-keystroke query text.
func (o *Orchestrator) Raw() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.raw
}

// Debounced returns the settled query text.
func (o *Orchestrator) Debounced() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debounced
}

// Tokens returns the parsed form of the debounced query.
func (o *Orchestrator) Tokens() TokenSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tokens
}

// HighlightQuery is the text the list highlights inline: the raw query,
// except when the settled query is purely structural — highlighting free
// text makes no sense for a tag-only filter.
func (o *Orchestrator) HighlightQuery() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tokens.Mode == ModeTag {
		return ""
	}
	return o.raw
}

// Toggle flips search on or off and returns the new state. Turning
// search off clears both query values synchronously — no debounce delay
// on close.
func (o *Orchestrator) Toggle() bool {
	o.mu.Lock()
	if o.active {
		fire := o.closeLocked()
		o.mu.Unlock()
		fire()
		return false
	}
	o.active = true
	o.mu.Unlock()
	return true
}

// Close deactivates search and clears all query state synchronously.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	fire := o.closeLocked()
	o.mu.Unlock()
	fire()
}

func (o *Orchestrator) closeLocked() func() {
	o.active = false
	o.raw = ""
	o.debounced = ""
	o.gen++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	return o.reparseLocked()
}

// SetRaw records a keystroke's worth of query text and (re)starts the
// trailing debounce window.
func (o *Orchestrator) SetRaw(q string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.active || o.raw == q {
		return
	}
	o.raw = q
	o.gen++
	gen := o.gen
	if o.cancel != nil {
		o.cancel()
	}
	notify := o.notify
	o.cancel = o.timers.Schedule(o.delay, func() {
		if notify != nil {
			notify(gen)
		}
	})
}

// Settle promotes the raw query to the debounced query, if gen is still
// the current generation. Returns true when the debounced value changed
// (the caller should rebuild the list).
func (o *Orchestrator) Settle(gen uint64) bool {
	o.mu.Lock()
	if gen != o.gen || !o.active {
		o.mu.Unlock()
		return false
	}
	o.cancel = nil
	if o.debounced == o.raw {
		o.mu.Unlock()
		return false
	}
	o.debounced = o.raw
	fire := o.reparseLocked()
	o.mu.Unlock()
	fire()
	return true
}

// SetQueryImmediate sets both the raw and debounced query in the same
// tick, bypassing the debounce. Used by programmatic mutation (tag badge
// clicks, saved searches) so the list reflects the change on the next
// render. Activates search when inactive.
func (o *Orchestrator) SetQueryImmediate(q string) {
	o.mu.Lock()
	o.active = true
	o.gen++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.raw = q
	o.debounced = q
	fire := o.reparseLocked()
	o.mu.Unlock()
	fire()
}

// reparseLocked recomputes tokens and returns a closure that fires the
// structural-change listeners. Callers invoke it after releasing the
// mutex so listeners can call back into the orchestrator.
func (o *Orchestrator) reparseLocked() func() {
	o.tokens = Parse(o.debounced)

	structural := o.tokens.StructuralKey()
	if structural == o.lastStructural {
		return func() {}
	}
	o.lastStructural = structural

	ts := o.tokens
	fns := make([]func(TokenSet), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(ts)
		}
	}
}

// ── Token-change pub-sub ────────────────────────────────────────────────────

// RegisterListener subscribes to structural token changes (tag/property
// include-exclude sets), for sibling components such as a navigation
// tree. The callback runs on whichever goroutine triggered the change.
func (o *Orchestrator) RegisterListener(id string, fn func(TokenSet)) {
	o.mu.Lock()
	o.listeners[id] = fn
	o.mu.Unlock()
}

// UnregisterListener removes a subscription.
func (o *Orchestrator) UnregisterListener(id string) {
	o.mu.Lock()
	delete(o.listeners, id)
	o.mu.Unlock()
}
