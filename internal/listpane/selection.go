package listpane

import "notepane/internal/vault"

// Coordinator is the state machine over the selected file, the
// multi-selection set, and the transient provenance flags that gate
// auto-open side effects.
//
// Invariant: when both are non-empty, the selected file is always a
// member of the multi-selection set — single-select is the degenerate
// case of multi-select with one element. Clearing the selected file does
// not necessarily clear the set (mid multi-select).
type Coordinator struct {
	selected *vault.FileRef
	multi    map[string]struct{}

	// rangeAnchor is the ordinal the next range extension grows from.
	rangeAnchor int
	hasAnchor   bool

	// Provenance flags: set by the action that caused a change, cleared
	// by the first consumer that inspects them — acted on or not.
	keyboardNav          bool
	userSelection        bool
	folderChangeAutoPick bool
	revealOp             bool
}

// NewCoordinator returns an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{multi: make(map[string]struct{})}
}

// Selected returns the primary cursor file, or nil.
func (c *Coordinator) Selected() *vault.FileRef { return c.selected }

// SelectedPath returns the primary cursor path, or "".
func (c *Coordinator) SelectedPath() string {
	if c.selected == nil {
		return ""
	}
	return c.selected.Path
}

// IsSelected reports membership in the multi-selection set.
func (c *Coordinator) IsSelected(path string) bool {
	_, ok := c.multi[path]
	return ok
}

// Count returns the multi-selection size.
func (c *Coordinator) Count() int { return len(c.multi) }

// SelectedPaths returns a copy of the multi-selection set.
func (c *Coordinator) SelectedPaths() map[string]struct{} {
	out := make(map[string]struct{}, len(c.multi))
	for p := range c.multi {
		out[p] = struct{}{}
	}
	return out
}

// ── Actions ─────────────────────────────────────────────────────────────────

// SetSelectedFile makes f the sole selection (collapses any multi-select)
// and re-anchors range extension at its ordinal.
func (c *Coordinator) SetSelectedFile(f *vault.FileRef, ordinal int) {
	c.selected = f
	c.multi = make(map[string]struct{})
	c.hasAnchor = false
	if f != nil {
		c.multi[f.Path] = struct{}{}
		// An unknown ordinal (file not in the current build) cannot anchor
		// a range; the next extension re-anchors at its own target.
		if ordinal >= 0 {
			c.rangeAnchor = ordinal
			c.hasAnchor = true
		}
	}
}

// UpdateCurrentFile moves the primary cursor without collapsing the
// multi-selection set; the new file joins the set to preserve the subset
// invariant.
func (c *Coordinator) UpdateCurrentFile(f *vault.FileRef) {
	c.selected = f
	if f != nil {
		c.multi[f.Path] = struct{}{}
	}
}

// ToggleFileSelection flips f's membership in the multi-selection set.
// Toggling on makes f the primary cursor; toggling the primary off
// clears the cursor but keeps the rest of the set.
func (c *Coordinator) ToggleFileSelection(f *vault.FileRef, ordinal int) {
	if f == nil {
		return
	}
	if _, ok := c.multi[f.Path]; ok {
		delete(c.multi, f.Path)
		if c.selected != nil && c.selected.Path == f.Path {
			c.selected = nil
		}
		return
	}
	c.multi[f.Path] = struct{}{}
	c.selected = f
	c.rangeAnchor = ordinal
	c.hasAnchor = true
}

// ExtendTo grows the range selection from the anchor to the target
// ordinal, replacing any previous extension, and moves the cursor to the
// boundary file. ordered is the file-only ordered list of the current
// build.
func (c *Coordinator) ExtendTo(ordered []*vault.FileRef, target int) {
	if target < 0 || target >= len(ordered) {
		return
	}
	if !c.hasAnchor {
		c.rangeAnchor = target
		c.hasAnchor = true
	}
	lo, hi := c.rangeAnchor, target
	if lo > hi {
		lo, hi = hi, lo
	}
	c.multi = make(map[string]struct{}, hi-lo+1)
	for i := lo; i <= hi; i++ {
		c.multi[ordered[i].Path] = struct{}{}
	}
	c.selected = ordered[target]
}

// ClearSelection empties both the cursor and the set.
func (c *Coordinator) ClearSelection() {
	c.selected = nil
	c.multi = make(map[string]struct{})
	c.hasAnchor = false
}

// ── Selection repair ────────────────────────────────────────────────────────

// RepairOptions pick one of the three outcomes when the selected file has
// dropped out of the active list: fall back to the first file, clear on
// an empty list, or (neither set) leave the state untouched.
type RepairOptions struct {
	SelectFallback bool
	ClearIfEmpty   bool
}

// Repair reconciles selection with a freshly built ordered list. It runs
// once per triggering change. Membership of vanished files is pruned from
// the multi-selection set in every case; the three-way decision applies
// to the primary cursor only. Returns true when the cursor changed.
func (c *Coordinator) Repair(ordered []*vault.FileRef, opts RepairOptions) bool {
	present := make(map[string]int, len(ordered))
	for i, f := range ordered {
		present[f.Path] = i
	}
	for p := range c.multi {
		if _, ok := present[p]; !ok {
			delete(c.multi, p)
		}
	}

	if c.selected != nil {
		if _, ok := present[c.selected.Path]; ok {
			return false // still valid
		}
	}

	switch {
	case opts.SelectFallback && len(ordered) > 0:
		c.SetSelectedFile(ordered[0], 0)
		return true
	case opts.ClearIfEmpty && len(ordered) == 0:
		changed := c.selected != nil
		c.ClearSelection()
		return changed
	default:
		return false
	}
}

// ── Provenance flags (write-once-read-once) ─────────────────────────────────

// SetKeyboardNavigation marks the next change as keyboard-driven.
func (c *Coordinator) SetKeyboardNavigation(v bool) { c.keyboardNav = v }

// ConsumeKeyboardNavigation reads and clears the flag.
func (c *Coordinator) ConsumeKeyboardNavigation() bool {
	v := c.keyboardNav
	c.keyboardNav = false
	return v
}

// SetUserSelection marks the next change as an explicit user click.
func (c *Coordinator) SetUserSelection(v bool) { c.userSelection = v }

// ConsumeUserSelection reads and clears the flag.
func (c *Coordinator) ConsumeUserSelection() bool {
	v := c.userSelection
	c.userSelection = false
	return v
}

// SetFolderChangeWithAutoSelect marks that a scope change auto-picked the
// first file.
func (c *Coordinator) SetFolderChangeWithAutoSelect(v bool) { c.folderChangeAutoPick = v }

// ConsumeFolderChangeWithAutoSelect reads and clears the flag.
func (c *Coordinator) ConsumeFolderChangeWithAutoSelect() bool {
	v := c.folderChangeAutoPick
	c.folderChangeAutoPick = false
	return v
}

// SetRevealOperation marks the next change as a programmatic reveal.
func (c *Coordinator) SetRevealOperation(v bool) { c.revealOp = v }

// ConsumeRevealOperation reads and clears the flag.
func (c *Coordinator) ConsumeRevealOperation() bool {
	v := c.revealOp
	c.revealOp = false
	return v
}
