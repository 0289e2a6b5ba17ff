package listpane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepane/internal/sched"
	"notepane/internal/vault"
)

const openDelay = 120 * time.Millisecond

type openRecorder struct {
	paths []string
	opts  []vault.OpenOptions
}

func (r *openRecorder) open(f *vault.FileRef, opts vault.OpenOptions) {
	r.paths = append(r.paths, f.Path)
	r.opts = append(r.opts, opts)
}

func newTestEngine() (*Engine, *sched.Manual, *openRecorder) {
	clock := sched.NewManual()
	rec := &openRecorder{}
	return NewEngine(clock, openDelay, rec.open), clock, rec
}

func ref(path string) *vault.FileRef {
	return &vault.FileRef{Path: path, Name: path}
}

func TestRapidNavigationOpensOnce(t *testing.T) {
	e, clock, rec := newTestEngine()

	// Ten held-key repeats, each faster than the debounce window.
	var last *vault.FileRef
	for i := 0; i < 10; i++ {
		last = ref(string(rune('a'+i)) + ".md")
		e.OnNavMove("down", last)
		clock.Advance(openDelay / 4)
	}
	assert.Empty(t, rec.paths, "no open while navigation continues")
	assert.Equal(t, OpenPending, e.State())

	clock.Advance(openDelay)
	require.Equal(t, []string{last.Path}, rec.paths, "exactly one open, for the final file")
	assert.Equal(t, OpenCommitted, e.State())

	// Residual timers from superseded moves must stay dead.
	clock.FireAll()
	assert.Len(t, rec.paths, 1)
}

func TestKeyUpCommitsImmediately(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.OnNavKeyUp("down")
	assert.Equal(t, []string{"a.md"}, rec.paths, "keyup opens without waiting out the window")

	// The cancelled debounce timer is inert.
	clock.FireAll()
	assert.Len(t, rec.paths, 1)
}

func TestKeyUpOfOtherKeyIgnored(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.OnNavKeyUp("up")
	assert.Empty(t, rec.paths)
	assert.Equal(t, OpenPending, e.State())

	clock.Advance(openDelay)
	assert.Equal(t, []string{"a.md"}, rec.paths)
}

func TestKeyUpOfNonNavKeyIgnored(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.OnNavKeyUp("shift")
	e.OnNavKeyUp("")
	assert.Equal(t, OpenPending, e.State(), "modifier release leaves the request pending")

	clock.Advance(openDelay)
	assert.Equal(t, []string{"a.md"}, rec.paths)
}

func TestBoundaryNoMoveStillOpens(t *testing.T) {
	e, clock, rec := newTestEngine()

	// Cursor already at the top; repeated presses do not move it.
	top := ref("top.md")
	e.OnNavNoMove("up", top)
	e.OnNavNoMove("up", top)
	clock.Advance(openDelay)
	assert.Equal(t, []string{"top.md"}, rec.paths)
}

func TestExternalSelectionDiscardsPending(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.OnExternalSelection(ref("b.md"))
	assert.Equal(t, OpenIdle, e.State())
	assert.Nil(t, e.PendingFile())

	clock.FireAll()
	assert.Empty(t, rec.paths, "discarded request must never open")
}

func TestExternalSelectionSameFileKeepsPending(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.OnExternalSelection(ref("a.md"))
	assert.Equal(t, OpenPending, e.State())

	clock.Advance(openDelay)
	assert.Equal(t, []string{"a.md"}, rec.paths)
}

func TestOpenNowSupersedesPending(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.OpenNow(ref("b.md"), vault.OpenOptions{Context: vault.OpenTab, Active: true})
	require.Equal(t, []string{"b.md"}, rec.paths)
	assert.Equal(t, vault.OpenTab, rec.opts[0].Context)

	clock.FireAll()
	assert.Len(t, rec.paths, 1, "superseded debounce must not fire afterwards")
}

func TestEnterToOpenGatesNavigation(t *testing.T) {
	e, clock, rec := newTestEngine()
	e.SetEnterToOpen(true)

	e.OnNavMove("down", ref("a.md"))
	clock.FireAll()
	assert.Empty(t, rec.paths, "arrows only move the cursor in explicit-open mode")
	assert.Equal(t, OpenIdle, e.State())

	e.OpenDiscrete(ref("a.md"))
	assert.Empty(t, rec.paths, "discrete jumps are gated too")

	e.OpenNow(ref("a.md"), vault.OpenOptions{Active: true})
	assert.Equal(t, []string{"a.md"}, rec.paths, "Enter still opens")
}

func TestEnablingEnterToOpenDiscardsPending(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.SetEnterToOpen(true)
	clock.FireAll()
	assert.Empty(t, rec.paths)
}

func TestCancelPending(t *testing.T) {
	e, clock, rec := newTestEngine()

	e.OnNavMove("down", ref("a.md"))
	e.CancelPending()
	clock.FireAll()
	assert.Empty(t, rec.paths)
	assert.Equal(t, OpenIdle, e.State())
}

func TestIsNavKey(t *testing.T) {
	for _, k := range []string{"up", "down", "k", "j", "pgup", "pgdown", "shift+up", "shift+down"} {
		assert.True(t, IsNavKey(k), k)
	}
	for _, k := range []string{"enter", "a", "esc", ""} {
		assert.False(t, IsNavKey(k), k)
	}
}
