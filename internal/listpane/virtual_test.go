package listpane

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepane/internal/vault"
)

func fileRows(n int) []Row {
	rows := []Row{{Kind: RowTopSpacer}}
	for i := 0; i < n; i++ {
		f := &vault.FileRef{Path: fmt.Sprintf("n%03d.md", i)}
		rows = append(rows, Row{Kind: RowFile, File: f, Ordinal: i})
	}
	rows = append(rows, Row{Kind: RowBottomSpacer})
	return rows
}

func twoLineEstimate(r Row) int {
	if r.Kind == RowFile {
		return 2
	}
	return 1
}

func TestVisibleRangeAndTotal(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 2)
	v.SetViewportHeight(10)
	rows := fileRows(100)
	v.SetRows(rows, "key1")

	// 100 files × 2 + 2 spacers.
	assert.Equal(t, 202, v.TotalSize())

	start, end := v.VisibleRange()
	assert.Equal(t, 0, start)
	assert.Less(t, end, len(rows), "window materializes a slice, not everything")
	assert.GreaterOrEqual(t, end, 5, "visible rows plus overscan")

	v.ScrollBy(100)
	start, end = v.VisibleRange()
	assert.Greater(t, start, 0)
	assert.Less(t, end-start, 20, "window stays bounded mid-list")
}

func TestMeasuredReconciliation(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 0)
	v.SetViewportHeight(10)
	v.SetRows(fileRows(10), "k")

	base := v.TotalSize()
	v.RecordMeasured(1, 3) // first file renders one line taller
	assert.Equal(t, base+1, v.TotalSize())
	assert.Equal(t, 3, v.EstimateSize(1))

	// Re-measuring the same value changes nothing.
	v.RecordMeasured(1, 3)
	assert.Equal(t, base+1, v.TotalSize())

	v.InvalidateRow("n000.md")
	assert.Equal(t, base, v.TotalSize(), "invalidated row falls back to the estimate")
}

func TestOrderKeyResetBoundary(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 0)
	v.SetViewportHeight(6)
	v.SetRows(fileRows(50), "sort=title")
	v.RecordMeasured(1, 4)
	v.ScrollBy(30)
	require.Equal(t, 30, v.ScrollOffset())

	// Same order key: content rebuild keeps measurements and offset.
	v.SetRows(fileRows(50), "sort=title")
	assert.Equal(t, 30, v.ScrollOffset())
	assert.Equal(t, 4, v.EstimateSize(1), "measurement survives, keyed by path")

	// Different order key: full reset.
	v.SetRows(fileRows(50), "sort=modified")
	assert.Equal(t, 0, v.ScrollOffset())
	assert.Equal(t, 2, v.EstimateSize(1))
}

func TestScrollToIndexAuto(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 0)
	v.SetViewportHeight(10)
	v.SetRows(fileRows(50), "k")

	// Already fully visible: no movement, no jitter.
	moved := v.ScrollToIndex(2, AlignAuto)
	assert.False(t, moved)
	assert.Equal(t, 0, v.ScrollOffset())

	// Below the window: scroll the minimum distance so it is flush with
	// the bottom edge.
	moved = v.ScrollToIndex(20, AlignAuto)
	require.True(t, moved)
	top := v.RowTop(20)
	assert.Equal(t, top+2-10, v.ScrollOffset())

	// Scrolling back up to a row above the window puts it at the top.
	moved = v.ScrollToIndex(5, AlignAuto)
	require.True(t, moved)
	assert.Equal(t, v.RowTop(5), v.ScrollOffset())
}

func TestScrollToIndexAlignments(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 0)
	v.SetViewportHeight(10)
	v.SetRows(fileRows(50), "k")

	v.ScrollToIndex(20, AlignStart)
	assert.Equal(t, v.RowTop(20), v.ScrollOffset())

	v.ScrollToIndex(20, AlignEnd)
	assert.Equal(t, v.RowTop(20)+2-10, v.ScrollOffset())

	v.ScrollToIndex(20, AlignCenter)
	assert.Equal(t, v.RowTop(20)-4, v.ScrollOffset())
}

func TestIndexAtOffset(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 0)
	v.SetViewportHeight(10)
	v.SetRows(fileRows(10), "k")

	assert.Equal(t, 0, v.IndexAtOffset(0), "top spacer")
	assert.Equal(t, 1, v.IndexAtOffset(1), "first file starts after the spacer")
	assert.Equal(t, 1, v.IndexAtOffset(2), "second line of a two-line row")
	assert.Equal(t, 2, v.IndexAtOffset(3))
	assert.Equal(t, -1, v.IndexAtOffset(-1))
	assert.Equal(t, -1, v.IndexAtOffset(v.TotalSize()))
}

func TestClamping(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 0)
	v.SetViewportHeight(10)
	v.SetRows(fileRows(5), "k")

	v.ScrollBy(1000)
	assert.Equal(t, v.TotalSize()-10, v.ScrollOffset())
	v.ScrollBy(-1000)
	assert.Equal(t, 0, v.ScrollOffset())

	// Content shorter than the viewport pins to zero.
	v.SetViewportHeight(100)
	v.ScrollBy(50)
	assert.Equal(t, 0, v.ScrollOffset())
}

func TestEmptyRows(t *testing.T) {
	v := NewVirtualizer(twoLineEstimate, 3)
	v.SetViewportHeight(10)
	v.SetRows(nil, "k")

	start, end := v.VisibleRange()
	assert.Greater(t, start, end, "empty range")
	assert.Equal(t, 0, v.TotalSize())
	assert.False(t, v.ScrollToIndex(0, AlignStart))
	assert.Equal(t, -1, v.IndexAtOffset(0))
}
