// Package search implements the query tokenizer and the raw/debounced
// search state that feeds list filtering.
//
// Query grammar (whitespace separated tokens):
//
//	#tag        include tag (AND between tokens)
//	#a|#b       include tag OR-group (one token, alternatives joined by |)
//	!#tag       exclude tag
//	[key]       property key must exist
//	[key:val]   property key must equal val
//	![key:val]  property exclusion
//	@today      date token (also: @yesterday, @week, @month, @2024-05-01,
//	            @2024-05-01..2024-06-01)
//	anything else is free text, matched fuzzily against title and preview
package search

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sahilm/fuzzy"

	"notepane/internal/vault"
)

// Mode discriminates what kind of query the token set represents.
type Mode int

// Query modes.
const (
	ModeText  Mode = iota // free text only
	ModeTag               // structural tokens only (tags/props/dates)
	ModeMixed             // both
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeTag:
		return "tag"
	case ModeMixed:
		return "mixed"
	default:
		return "text"
	}
}

// PropFilter matches a frontmatter property. Empty Value means "key exists".
type PropFilter struct {
	Key   string
	Value string
}

// DateRange bounds file dates. Zero From/To means unbounded on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// TokenSet is the parsed form of a query. It is immutable once produced.
type TokenSet struct {
	// TagGroups is an AND of OR-groups: every group must match via at
	// least one of its alternatives.
	TagGroups   [][]string
	ExcludeTags []string

	IncludeProps []PropFilter
	ExcludeProps []PropFilter

	Dates DateRange

	FreeText string
	Mode     Mode
}

// IsZero reports whether the set filters nothing.
func (ts TokenSet) IsZero() bool {
	return len(ts.TagGroups) == 0 && len(ts.ExcludeTags) == 0 &&
		len(ts.IncludeProps) == 0 && len(ts.ExcludeProps) == 0 &&
		ts.Dates.IsZero() && ts.FreeText == ""
}

// IncludeTags returns the flattened include set across all groups.
func (ts TokenSet) IncludeTags() []string {
	var out []string
	for _, group := range ts.TagGroups {
		out = append(out, group...)
	}
	return out
}

// StructuralKey identifies the tag/property include-exclude sets. Sibling
// components (the navigation tree) only care when this changes, not when
// free text does.
func (ts TokenSet) StructuralKey() string {
	var b strings.Builder
	for _, group := range ts.TagGroups {
		b.WriteString("+" + strings.Join(group, "|"))
	}
	for _, t := range ts.ExcludeTags {
		b.WriteString("-" + t)
	}
	for _, p := range ts.IncludeProps {
		b.WriteString("+[" + p.Key + ":" + p.Value + "]")
	}
	for _, p := range ts.ExcludeProps {
		b.WriteString("-[" + p.Key + ":" + p.Value + "]")
	}
	return b.String()
}

// ── Parsing ─────────────────────────────────────────────────────────────────

// Parse turns a raw query into a TokenSet. Parsing never fails: malformed
// tokens degrade to free text.
func Parse(raw string) TokenSet {
	var ts TokenSet
	var free []string

	for _, tok := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(tok, "!#"):
			if tag, ok := NormalizeTag(tok[2:]); ok {
				ts.ExcludeTags = append(ts.ExcludeTags, tag)
				continue
			}
			free = append(free, tok)

		case strings.HasPrefix(tok, "#"):
			if group := parseTagGroup(tok); len(group) > 0 {
				ts.TagGroups = append(ts.TagGroups, group)
				continue
			}
			free = append(free, tok)

		case strings.HasPrefix(tok, "!["):
			if p, ok := parseProp(tok[1:]); ok {
				ts.ExcludeProps = append(ts.ExcludeProps, p)
				continue
			}
			free = append(free, tok)

		case strings.HasPrefix(tok, "["):
			if p, ok := parseProp(tok); ok {
				ts.IncludeProps = append(ts.IncludeProps, p)
				continue
			}
			free = append(free, tok)

		case strings.HasPrefix(tok, "@"):
			if r, ok := parseDateToken(tok[1:], time.Now()); ok {
				ts.Dates = r
				continue
			}
			free = append(free, tok)

		default:
			free = append(free, tok)
		}
	}

	ts.FreeText = strings.Join(free, " ")
	ts.Mode = classify(ts)
	return ts
}

func classify(ts TokenSet) Mode {
	structural := len(ts.TagGroups) > 0 || len(ts.ExcludeTags) > 0 ||
		len(ts.IncludeProps) > 0 || len(ts.ExcludeProps) > 0 || !ts.Dates.IsZero()
	switch {
	case structural && ts.FreeText != "":
		return ModeMixed
	case structural:
		return ModeTag
	default:
		return ModeText
	}
}

// parseTagGroup parses "#a" or "#a|#b|c" into its alternatives.
func parseTagGroup(tok string) []string {
	var group []string
	for _, alt := range strings.Split(tok, "|") {
		tag, ok := NormalizeTag(alt)
		if !ok {
			return nil
		}
		group = append(group, tag)
	}
	return group
}

// parseProp parses "[key]" or "[key:value]".
func parseProp(tok string) (PropFilter, bool) {
	if !strings.HasPrefix(tok, "[") || !strings.HasSuffix(tok, "]") {
		return PropFilter{}, false
	}
	inner := tok[1 : len(tok)-1]
	key, value, _ := strings.Cut(inner, ":")
	key, ok := NormalizePropKey(key)
	if !ok {
		return PropFilter{}, false
	}
	return PropFilter{Key: key, Value: strings.TrimSpace(value)}, true
}

// parseDateToken resolves a date token against now's local day.
func parseDateToken(tok string, now time.Time) (DateRange, bool) {
	day := 24 * time.Hour
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch tok {
	case "":
		return DateRange{}, false
	case "today":
		return DateRange{From: today, To: today.Add(day)}, true
	case "yesterday":
		return DateRange{From: today.Add(-day), To: today}, true
	case "week":
		return DateRange{From: today.Add(-7 * day), To: today.Add(day)}, true
	case "month":
		return DateRange{From: today.Add(-30 * day), To: today.Add(day)}, true
	}

	if from, to, ok := strings.Cut(tok, ".."); ok {
		f, errF := dateparse.ParseLocal(from)
		t, errT := dateparse.ParseLocal(to)
		if errF != nil || errT != nil {
			return DateRange{}, false
		}
		return DateRange{From: f, To: t}, true
	}

	t, err := dateparse.ParseLocal(tok)
	if err != nil {
		return DateRange{}, false
	}
	// A bare date means that whole day.
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DateRange{From: start, To: start.Add(day)}, true
}

// ── Normalization ───────────────────────────────────────────────────────────

// NormalizeTag trims decoration from a tag and rejects values that cannot
// be a tag (empty, embedded whitespace).
func NormalizeTag(raw string) (string, bool) {
	tag := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if tag == "" || strings.ContainsAny(tag, " \t|#") {
		return "", false
	}
	return tag, true
}

// NormalizePropKey trims a property key and rejects empty or malformed ones.
func NormalizePropKey(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	if key == "" || strings.ContainsAny(key, " \t:[]") {
		return "", false
	}
	return key, true
}

// ── Matching ────────────────────────────────────────────────────────────────

// MatchMeta records why a file matched, for row decoration and highlight.
type MatchMeta struct {
	MatchedTags  []string
	TitleIndexes []int // rune indexes into DisplayTitle matched by free text
	Score        int
}

// Matches evaluates the token set against a file. The second return is
// nil when the file does not match.
func (ts TokenSet) Matches(f *vault.FileRef) (bool, *MatchMeta) {
	meta := &MatchMeta{}

	for _, tag := range ts.ExcludeTags {
		if f.HasTag(tag, true) {
			return false, nil
		}
	}
	for _, group := range ts.TagGroups {
		matched := ""
		for _, tag := range group {
			if f.HasTag(tag, true) {
				matched = tag
				break
			}
		}
		if matched == "" {
			return false, nil
		}
		meta.MatchedTags = append(meta.MatchedTags, matched)
	}

	for _, p := range ts.ExcludeProps {
		if val, ok := f.Props[p.Key]; ok && (p.Value == "" || val == p.Value) {
			return false, nil
		}
	}
	for _, p := range ts.IncludeProps {
		val, ok := f.Props[p.Key]
		if !ok || (p.Value != "" && val != p.Value) {
			return false, nil
		}
	}

	if !ts.Dates.IsZero() && !ts.Dates.Contains(f.Created) && !ts.Dates.Contains(f.Modified) {
		return false, nil
	}

	if ts.FreeText != "" {
		ok := ts.matchFreeText(f, meta)
		if !ok {
			return false, nil
		}
	}

	return true, meta
}

func (ts TokenSet) matchFreeText(f *vault.FileRef, meta *MatchMeta) bool {
	// Title match wins and carries highlight positions.
	if m := fuzzy.Find(ts.FreeText, []string{f.DisplayTitle()}); len(m) > 0 {
		meta.TitleIndexes = m[0].MatchedIndexes
		meta.Score = m[0].Score
		return true
	}
	// Fall back to name, folder, preview — no highlight offsets.
	for _, hay := range []string{f.Name, f.Folder, f.Preview} {
		if hay == "" {
			continue
		}
		if len(fuzzy.Find(ts.FreeText, []string{hay})) > 0 {
			return true
		}
	}
	return false
}
