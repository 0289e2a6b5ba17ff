package search

import "strings"

// Operator joins a newly added filter token with the existing query.
type Operator int

// Operators.
const (
	OpAnd Operator = iota
	OpOr
)

// ToggleTag rewrites query so that tag is present (or removed, when it
// already was): the pure text rule behind "click a tag badge". An
// unparseable tag leaves the query unchanged. With OpOr the tag joins the
// last tag token as an alternative instead of a new AND term.
func ToggleTag(query, rawTag string, op Operator) string {
	tag, ok := NormalizeTag(rawTag)
	if !ok {
		return query
	}

	fields := strings.Fields(query)

	// Already present (as a token or group alternative) → remove.
	removed := fields[:0]
	found := false
	for _, tok := range fields {
		if !strings.HasPrefix(tok, "#") {
			removed = append(removed, tok)
			continue
		}
		alts := strings.Split(tok, "|")
		kept := alts[:0]
		for _, alt := range alts {
			if t, ok := NormalizeTag(alt); ok && t == tag {
				found = true
				continue
			}
			kept = append(kept, alt)
		}
		if len(kept) > 0 {
			removed = append(removed, strings.Join(kept, "|"))
		}
	}
	if found {
		return strings.Join(removed, " ")
	}

	if op == OpOr {
		// Join the last tag token as an OR alternative.
		for i := len(fields) - 1; i >= 0; i-- {
			if strings.HasPrefix(fields[i], "#") {
				fields[i] += "|#" + tag
				return strings.Join(fields, " ")
			}
		}
	}
	fields = append(fields, "#"+tag)
	return strings.Join(fields, " ")
}

// ToggleProp rewrites query so that the [key:value] filter is present, or
// removes it when it already was. Properties always combine by AND; the
// operator parameter exists for call-site symmetry with ToggleTag.
func ToggleProp(query, rawKey, value string, _ Operator) string {
	key, ok := NormalizePropKey(rawKey)
	if !ok {
		return query
	}
	value = strings.TrimSpace(value)

	token := "[" + key + "]"
	if value != "" {
		token = "[" + key + ":" + value + "]"
	}

	fields := strings.Fields(query)
	kept := fields[:0]
	found := false
	for _, tok := range fields {
		if tok == token || tok == "!"+token {
			found = true
			continue
		}
		kept = append(kept, tok)
	}
	if found {
		return strings.Join(kept, " ")
	}
	return strings.Join(append(kept, token), " ")
}

// SetDateToken rewrites query so that it carries exactly one @date token.
// An empty token clears any existing date filter.
func SetDateToken(query, token string) string {
	fields := strings.Fields(query)
	kept := fields[:0]
	for _, tok := range fields {
		if strings.HasPrefix(tok, "@") {
			continue
		}
		kept = append(kept, tok)
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, "@"))
	if token == "" {
		return strings.Join(kept, " ")
	}
	return strings.Join(append(kept, "@"+token), " ")
}
