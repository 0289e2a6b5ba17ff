package listpane

import (
	"sync"
	"time"

	"notepane/internal/sched"
	"notepane/internal/vault"
)

// OpenState is the debounced preview-open pipeline state.
type OpenState int

// Pipeline states.
const (
	OpenIdle OpenState = iota
	OpenPending
	OpenCommitted
)

// OpenFunc performs the host open call. On debounce expiry it runs on the
// timer goroutine; implementations must post back to the event loop
// rather than mutate UI state directly.
type OpenFunc func(f *vault.FileRef, opts vault.OpenOptions)

// Engine translates navigation key events into the debounced preview-open
// pipeline. Selection movement itself is synchronous and owned by the
// caller; the engine only decides when the moved-to file actually opens:
// immediately spamming the host with an open per arrow repeat would
// re-render the preview faster than anyone can read it.
//
// A monotonic request id is the sole arbiter of staleness. Every
// selection change increments it; the scheduled commit captures its id
// and bails when superseded.
type Engine struct {
	timers sched.Scheduler
	delay  time.Duration
	open   OpenFunc

	mu          sync.Mutex
	enterToOpen bool
	requestID   uint64
	state       OpenState
	pending     *vault.FileRef
	cancel      sched.CancelFunc
	navKey      string // key that initiated navigation, "" when none
}

// NewEngine creates a navigation engine. delay is the preview-open
// debounce window.
func NewEngine(timers sched.Scheduler, delay time.Duration, open OpenFunc) *Engine {
	return &Engine{timers: timers, delay: delay, open: open}
}

// SetEnterToOpen toggles explicit-open mode: arrows only move the
// selection and nothing opens until Enter. Enabling it discards any
// pending open.
func (e *Engine) SetEnterToOpen(v bool) {
	e.mu.Lock()
	e.enterToOpen = v
	if v {
		e.discardLocked()
	}
	e.mu.Unlock()
}

// EnterToOpen reports the current mode.
func (e *Engine) EnterToOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enterToOpen
}

// State returns the pipeline state.
func (e *Engine) State() OpenState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PendingFile returns the file a scheduled open would commit, or nil.
func (e *Engine) PendingFile() *vault.FileRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != OpenPending {
		return nil
	}
	return e.pending
}

// IsNavKey reports whether key participates in debounced navigation
// (the repeated-press family; Home/End are discrete jumps).
func IsNavKey(key string) bool {
	switch key {
	case "up", "down", "k", "j", "pgup", "pgdown", "shift+up", "shift+down":
		return true
	default:
		return false
	}
}

// ── Keydown / keyup ─────────────────────────────────────────────────────────

// OnNavMove records a navigation keydown that moved the cursor to f. The
// caller has already applied the selection change; the engine schedules
// (or reschedules) the debounced open.
func (e *Engine) OnNavMove(key string, f *vault.FileRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.navKey = key
	if e.enterToOpen || f == nil {
		return
	}
	e.scheduleLocked(f)
}

// OnNavNoMove records a navigation keydown that hit a list boundary. The
// selection did not change, but the pending request is refreshed against
// the current selection so a later keyup still commits the right file.
func (e *Engine) OnNavNoMove(key string, current *vault.FileRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.navKey = key
	if e.enterToOpen || current == nil {
		return
	}
	e.scheduleLocked(current)
}

// OnNavKeyUp handles release of the key that initiated navigation:
// whatever is pending opens right away instead of waiting out the rest
// of the debounce window. Release of modifier or non-navigation keys is
// ignored, as is keyup of a nav key other than the initiating one.
func (e *Engine) OnNavKeyUp(key string) {
	if !IsNavKey(key) {
		return
	}
	e.mu.Lock()
	if key != e.navKey || e.state != OpenPending {
		e.mu.Unlock()
		return
	}
	e.navKey = ""
	f := e.pending
	e.commitLocked()
	open := e.open
	e.mu.Unlock()
	open(f, vault.OpenOptions{Context: vault.OpenActive, Active: false})
}

// ── External transitions ────────────────────────────────────────────────────

// OnExternalSelection reconciles the pipeline with a selection change the
// engine did not cause (reveal, another pane, a rebuild repair). A
// pending open for a different file is discarded without opening —
// a stale debounced open must never fire for a file the user is no
// longer looking at.
func (e *Engine) OnExternalSelection(f *vault.FileRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != OpenPending {
		return
	}
	if f == nil || e.pending == nil || f.Path != e.pending.Path {
		e.discardLocked()
	}
}

// OnBlur resets navigation-key tracking when focus leaves the list. An
// already-scheduled open for the still-current selection is left alone.
func (e *Engine) OnBlur() {
	e.mu.Lock()
	e.navKey = ""
	e.mu.Unlock()
}

// CancelPending discards any scheduled open (teardown, Escape).
func (e *Engine) CancelPending() {
	e.mu.Lock()
	e.discardLocked()
	e.mu.Unlock()
}

// ── Direct opens ────────────────────────────────────────────────────────────

// OpenNow opens f immediately, superseding any pending request. Used for
// Enter, mouse clicks, and reveal-with-open.
func (e *Engine) OpenNow(f *vault.FileRef, opts vault.OpenOptions) {
	if f == nil {
		return
	}
	e.mu.Lock()
	e.discardLocked()
	e.requestID++
	e.state = OpenCommitted
	open := e.open
	e.mu.Unlock()
	open(f, opts)
}

// OpenDiscrete opens f for a discrete jump (Home/End): synchronous, no
// debounce, but still gated by enter-to-open mode.
func (e *Engine) OpenDiscrete(f *vault.FileRef) {
	e.mu.Lock()
	if e.enterToOpen {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.OpenNow(f, vault.OpenOptions{Context: vault.OpenActive, Active: false})
}

// ── Internals (mu held) ─────────────────────────────────────────────────────

func (e *Engine) scheduleLocked(f *vault.FileRef) {
	e.requestID++
	id := e.requestID
	e.pending = f
	e.state = OpenPending
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = e.timers.Schedule(e.delay, func() { e.fire(id) })
}

// fire is the debounce expiry path. Runs off the event loop.
func (e *Engine) fire(id uint64) {
	e.mu.Lock()
	if id != e.requestID || e.state != OpenPending {
		e.mu.Unlock()
		return // superseded — no-op
	}
	f := e.pending
	e.commitLocked()
	open := e.open
	e.mu.Unlock()
	open(f, vault.OpenOptions{Context: vault.OpenActive, Active: false})
}

func (e *Engine) commitLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = OpenCommitted
}

func (e *Engine) discardLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.pending = nil
	if e.state == OpenPending {
		e.state = OpenIdle
	}
}
