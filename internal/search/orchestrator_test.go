package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepane/internal/sched"
)

const testDelay = 200 * time.Millisecond

func newTestOrchestrator() (*Orchestrator, *sched.Manual, *[]uint64) {
	clock := sched.NewManual()
	o := NewOrchestrator(clock, testDelay)
	gens := &[]uint64{}
	o.SetNotify(func(gen uint64) { *gens = append(*gens, gen) })
	return o, clock, gens
}

// settle drains fired notifications into Settle calls, the way the event
// loop would, and reports whether any of them changed the debounced query.
func settle(o *Orchestrator, gens *[]uint64) bool {
	changed := false
	for _, g := range *gens {
		if o.Settle(g) {
			changed = true
		}
	}
	*gens = (*gens)[:0]
	return changed
}

func TestTypingDebounce(t *testing.T) {
	o, clock, gens := newTestOrchestrator()
	require.True(t, o.Toggle())

	// Type "report" one keystroke at a time, faster than the window.
	for _, q := range []string{"r", "re", "rep", "repo", "repor", "report"} {
		o.SetRaw(q)
		clock.Advance(testDelay / 4)
	}
	assert.Equal(t, "report", o.Raw())
	assert.Equal(t, "", o.Debounced(), "nothing settles while typing continues")

	clock.Advance(testDelay)
	require.NotEmpty(t, *gens)
	assert.True(t, settle(o, gens))
	assert.Equal(t, "report", o.Debounced())
	assert.Equal(t, "report", o.Tokens().FreeText)
	assert.Equal(t, ModeText, o.Tokens().Mode)
}

func TestStaleGenerationIgnored(t *testing.T) {
	o, clock, gens := newTestOrchestrator()
	o.Toggle()

	o.SetRaw("first")
	clock.Advance(testDelay) // fires gen for "first"
	staleGens := append([]uint64(nil), *gens...)
	*gens = (*gens)[:0]

	// A new keystroke before the loop processed the settle message.
	o.SetRaw("second")

	for _, g := range staleGens {
		assert.False(t, o.Settle(g), "stale generation must not promote")
	}
	assert.Equal(t, "", o.Debounced())

	clock.Advance(testDelay)
	assert.True(t, settle(o, gens))
	assert.Equal(t, "second", o.Debounced())
}

func TestSettleSameValueNoRebuild(t *testing.T) {
	o, clock, gens := newTestOrchestrator()
	o.Toggle()

	o.SetRaw("abc")
	clock.Advance(testDelay)
	require.True(t, settle(o, gens))

	// Typing away and back to the same settled value.
	o.SetRaw("abcd")
	o.SetRaw("abc")
	clock.Advance(testDelay)
	assert.False(t, settle(o, gens), "unchanged debounced value needs no rebuild")
}

func TestCloseClearsSynchronously(t *testing.T) {
	o, clock, gens := newTestOrchestrator()
	o.Toggle()
	o.SetRaw("#work")
	clock.Advance(testDelay)
	settle(o, gens)
	require.False(t, o.Tokens().IsZero())

	o.Close()
	assert.False(t, o.Active())
	assert.Equal(t, "", o.Raw())
	assert.Equal(t, "", o.Debounced())
	assert.True(t, o.Tokens().IsZero(), "tokens clear without waiting out a debounce")

	// The cancelled timer's generation must not resurrect the query.
	clock.FireAll()
	assert.False(t, settle(o, gens))
	assert.Equal(t, "", o.Debounced())
}

func TestSetQueryImmediate(t *testing.T) {
	o, _, _ := newTestOrchestrator()

	o.SetQueryImmediate("#work")
	assert.True(t, o.Active(), "programmatic mutation activates search")
	assert.Equal(t, "#work", o.Raw())
	assert.Equal(t, "#work", o.Debounced())
	assert.Equal(t, ModeTag, o.Tokens().Mode)
}

func TestSetRawInactiveIgnored(t *testing.T) {
	o, clock, gens := newTestOrchestrator()

	o.SetRaw("ghost")
	clock.FireAll()
	assert.False(t, settle(o, gens))
	assert.Equal(t, "", o.Raw())
}

func TestHighlightQuery(t *testing.T) {
	o, clock, gens := newTestOrchestrator()
	o.Toggle()

	o.SetRaw("repo")
	clock.Advance(testDelay)
	settle(o, gens)
	assert.Equal(t, "repo", o.HighlightQuery())

	o.SetQueryImmediate("#work")
	assert.Equal(t, "", o.HighlightQuery(), "tag-only queries highlight nothing")

	o.SetQueryImmediate("#work repo")
	assert.Equal(t, "#work repo", o.HighlightQuery())
}

func TestStructuralListeners(t *testing.T) {
	o, clock, gens := newTestOrchestrator()
	o.Toggle()

	var calls []string
	o.RegisterListener("tree", func(ts TokenSet) {
		calls = append(calls, ts.StructuralKey())
	})

	// Free-text edits never fire the listener.
	o.SetRaw("rep")
	clock.Advance(testDelay)
	settle(o, gens)
	assert.Empty(t, calls)

	// A tag change does.
	o.SetRaw("rep #work")
	clock.Advance(testDelay)
	settle(o, gens)
	require.Len(t, calls, 1)
	assert.Equal(t, "+work", calls[0])

	// Same structural key again: no duplicate notification.
	o.SetRaw("report #work")
	clock.Advance(testDelay)
	settle(o, gens)
	assert.Len(t, calls, 1)

	// Listeners may call back into the orchestrator without deadlocking.
	o.UnregisterListener("tree")
	o.RegisterListener("reentrant", func(TokenSet) {
		_ = o.Tokens()
		_ = o.Active()
	})
	o.SetQueryImmediate("#home")
}
