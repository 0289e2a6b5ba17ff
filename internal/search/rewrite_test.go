package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleTag(t *testing.T) {
	tests := []struct {
		name  string
		query string
		tag   string
		op    Operator
		want  string
	}{
		{"add to empty", "", "work", OpAnd, "#work"},
		{"add second and", "#work", "urgent", OpAnd, "#work #urgent"},
		{"add as or alternative", "#work", "home", OpOr, "#work|#home"},
		{"or with no tag present appends", "report", "work", OpOr, "report #work"},
		{"remove present tag", "#work #urgent", "work", OpAnd, "#urgent"},
		{"remove keeps free text", "report #work", "work", OpAnd, "report"},
		{"remove alternative from group", "#work|#home", "home", OpAnd, "#work"},
		{"remove sole alternative drops token", "#work report", "work", OpOr, "report"},
		{"hash prefix tolerated", "", "#work", OpAnd, "#work"},
		{"invalid tag unchanged", "#work", "a b", OpAnd, "#work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToggleTag(tt.query, tt.tag, tt.op))
		})
	}
}

func TestToggleTagRoundTrip(t *testing.T) {
	q := ToggleTag("", "work", OpAnd)
	q = ToggleTag(q, "urgent", OpAnd)
	q = ToggleTag(q, "home", OpOr)

	ts := Parse(q)
	assert.ElementsMatch(t, []string{"work", "urgent", "home"}, ts.IncludeTags())

	// Toggling each back off leaves an empty query.
	q = ToggleTag(q, "work", OpAnd)
	q = ToggleTag(q, "urgent", OpAnd)
	q = ToggleTag(q, "home", OpAnd)
	assert.Equal(t, "", q)
}

func TestToggleProp(t *testing.T) {
	tests := []struct {
		name  string
		query string
		key   string
		value string
		want  string
	}{
		{"add existence", "", "status", "", "[status]"},
		{"add value", "#work", "status", "done", "#work [status:done]"},
		{"remove exact token", "[status:done] report", "status", "done", "report"},
		{"remove matching exclusion", "![status:done]", "status", "done", ""},
		{"different value adds new token", "[status:done]", "status", "open", "[status:done] [status:open]"},
		{"invalid key unchanged", "#work", "a b", "x", "#work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToggleProp(tt.query, tt.key, tt.value, OpAnd))
		})
	}
}

func TestSetDateToken(t *testing.T) {
	assert.Equal(t, "@today", SetDateToken("", "today"))
	assert.Equal(t, "#work @week", SetDateToken("#work @today", "week"))
	assert.Equal(t, "#work", SetDateToken("#work @today", ""))
	assert.Equal(t, "@2025-01-01", SetDateToken("@today", "@2025-01-01"))
}
