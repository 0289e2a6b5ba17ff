package listpane

import "sort"

// Align controls where ScrollToIndex places the target row.
type Align int

// Alignments. AlignAuto moves the window only as far as needed, and not
// at all when the row is already fully visible — repeated key presses on
// a visible row must not jitter the scroll position.
const (
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// HeightEstimator returns the estimated height (terminal rows) for a row
// that has never been measured, derived from its content shape only.
type HeightEstimator func(row Row) int

// Virtualizer maps the row sequence onto a scrolling window. Heights are
// variable: unrendered rows use the shape estimate, rendered rows are
// reconciled against their measured height, cached by row key so a pure
// content rebuild keeps measurements for unaffected rows.
type Virtualizer struct {
	rows     []Row
	estimate HeightEstimator
	overscan int

	orderKey string
	measured map[string]int

	viewH  int
	offset int

	prefix []int // prefix[i] = total height of rows[0:i]; nil when dirty
}

// NewVirtualizer creates an adapter with the given shape estimator and
// overscan row count.
func NewVirtualizer(estimate HeightEstimator, overscan int) *Virtualizer {
	if overscan < 0 {
		overscan = 0
	}
	return &Virtualizer{
		estimate: estimate,
		overscan: overscan,
		measured: make(map[string]int),
	}
}

// SetViewportHeight sets the visible window height.
func (v *Virtualizer) SetViewportHeight(h int) {
	if h < 0 {
		h = 0
	}
	v.viewH = h
	v.clampOffset()
}

// SetRows installs a freshly built row sequence. When orderKey differs
// from the previous build the row-index meaning has changed: all cached
// measurements are discarded and the window re-anchors to the top.
// Same-key rebuilds (content updates) keep measurements and offset.
func (v *Virtualizer) SetRows(rows []Row, orderKey string) {
	v.rows = rows
	v.prefix = nil
	if orderKey != v.orderKey {
		v.orderKey = orderKey
		v.measured = make(map[string]int)
		v.offset = 0
		return
	}
	v.clampOffset()
}

// InvalidateRow drops the cached measurement for one row key (a file's
// preview text changed). Unrelated rows keep theirs.
func (v *Virtualizer) InvalidateRow(key string) {
	if _, ok := v.measured[key]; ok {
		delete(v.measured, key)
		v.prefix = nil
	}
}

// RecordMeasured reconciles a rendered row's actual height. No-op when it
// matches the current value.
func (v *Virtualizer) RecordMeasured(index, height int) {
	if index < 0 || index >= len(v.rows) || height <= 0 {
		return
	}
	key := v.rows[index].Key()
	if v.measured[key] == height {
		return
	}
	v.measured[key] = height
	v.prefix = nil
}

// EstimateSize returns the current height for a row index.
func (v *Virtualizer) EstimateSize(index int) int {
	if index < 0 || index >= len(v.rows) {
		return 0
	}
	if h, ok := v.measured[v.rows[index].Key()]; ok {
		return h
	}
	return v.estimate(v.rows[index])
}

// TotalSize returns the summed height of every row.
func (v *Virtualizer) TotalSize() int {
	p := v.prefixSums()
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// ScrollOffset returns the current window offset.
func (v *Virtualizer) ScrollOffset() int { return v.offset }

// ScrollBy moves the window by delta rows, clamped to content.
func (v *Virtualizer) ScrollBy(delta int) {
	v.offset += delta
	v.clampOffset()
}

// VisibleRange returns the inclusive index range materialized for the
// current offset, padded by overscan rows in each direction.
func (v *Virtualizer) VisibleRange() (start, end int) {
	if len(v.rows) == 0 || v.viewH == 0 {
		return 0, -1
	}
	p := v.prefixSums()

	start = v.indexAt(p, v.offset)
	end = v.indexAt(p, v.offset+v.viewH-1)

	start -= v.overscan
	end += v.overscan
	if start < 0 {
		start = 0
	}
	if end > len(v.rows)-1 {
		end = len(v.rows) - 1
	}
	return start, end
}

// ScrollToIndex adjusts the window so the row at index is placed per
// align. Returns true when the offset actually moved.
func (v *Virtualizer) ScrollToIndex(index int, align Align) bool {
	if index < 0 || index >= len(v.rows) || v.viewH == 0 {
		return false
	}
	p := v.prefixSums()
	top := p[index]
	bottom := top + v.EstimateSize(index)

	prev := v.offset
	switch align {
	case AlignAuto:
		if top >= v.offset && bottom <= v.offset+v.viewH {
			return false // already fully visible
		}
		if top < v.offset {
			v.offset = top
		} else {
			v.offset = bottom - v.viewH
		}
	case AlignStart:
		v.offset = top
	case AlignCenter:
		v.offset = top - (v.viewH-(bottom-top))/2
	case AlignEnd:
		v.offset = bottom - v.viewH
	}
	v.clampOffset()
	return v.offset != prev
}

// RowTop returns the content offset of a row's first line.
func (v *Virtualizer) RowTop(index int) int {
	if index < 0 || index >= len(v.rows) {
		return 0
	}
	return v.prefixSums()[index]
}

// IndexAtOffset maps a content offset to a row index (for mouse
// hit-testing against rendered output).
func (v *Virtualizer) IndexAtOffset(offset int) int {
	if len(v.rows) == 0 {
		return -1
	}
	if offset < 0 || offset >= v.TotalSize() {
		return -1
	}
	return v.indexAt(v.prefixSums(), offset)
}

// ── Internals ───────────────────────────────────────────────────────────────

func (v *Virtualizer) prefixSums() []int {
	if v.prefix != nil {
		return v.prefix
	}
	p := make([]int, len(v.rows)+1)
	for i := range v.rows {
		p[i+1] = p[i] + v.EstimateSize(i)
	}
	v.prefix = p
	return p
}

// indexAt finds the row containing content offset off.
func (v *Virtualizer) indexAt(p []int, off int) int {
	if off < 0 {
		return 0
	}
	// First index whose end exceeds off.
	i := sort.Search(len(v.rows), func(i int) bool { return p[i+1] > off })
	if i >= len(v.rows) {
		return len(v.rows) - 1
	}
	return i
}

func (v *Virtualizer) clampOffset() {
	max := v.TotalSize() - v.viewH
	if max < 0 {
		max = 0
	}
	if v.offset > max {
		v.offset = max
	}
	if v.offset < 0 {
		v.offset = 0
	}
}
