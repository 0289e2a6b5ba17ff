package listpane

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepane/internal/vault"
)

func orderedFiles(n int) []*vault.FileRef {
	out := make([]*vault.FileRef, n)
	for i := range out {
		out[i] = &vault.FileRef{Path: fmt.Sprintf("f%02d.md", i)}
	}
	return out
}

func TestSingleSelectIsDegenerateMulti(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(3)

	c.SetSelectedFile(files[1], 1)
	assert.Equal(t, files[1], c.Selected())
	assert.Equal(t, 1, c.Count())
	assert.True(t, c.IsSelected(files[1].Path))
}

func TestToggleFileSelection(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(3)

	c.SetSelectedFile(files[0], 0)
	c.ToggleFileSelection(files[1], 1)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, files[1], c.Selected(), "toggling on moves the cursor")

	// Toggling the primary off clears the cursor, keeps the set.
	c.ToggleFileSelection(files[1], 1)
	assert.Nil(t, c.Selected())
	assert.Equal(t, 1, c.Count())
	assert.True(t, c.IsSelected(files[0].Path))
}

func TestSetSelectedCollapsesMulti(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(4)

	c.SetSelectedFile(files[0], 0)
	c.ToggleFileSelection(files[2], 2)
	require.Equal(t, 2, c.Count())

	c.SetSelectedFile(files[3], 3)
	assert.Equal(t, 1, c.Count())
	assert.False(t, c.IsSelected(files[2].Path))
}

func TestUpdateCurrentFilePreservesMulti(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(4)

	c.SetSelectedFile(files[0], 0)
	c.ToggleFileSelection(files[1], 1)

	c.UpdateCurrentFile(files[2])
	assert.Equal(t, files[2], c.Selected())
	assert.Equal(t, 3, c.Count(), "set is preserved and the cursor joins it")
	assert.True(t, c.IsSelected(files[2].Path), "subset invariant holds")
}

func TestExtendTo(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(10)

	c.SetSelectedFile(files[3], 3)
	c.ExtendTo(files, 6)
	assert.Equal(t, 4, c.Count())
	assert.Equal(t, files[6], c.Selected())

	// A new extension from the same anchor replaces the old range.
	c.ExtendTo(files, 1)
	assert.Equal(t, 3, c.Count(), "anchor 3 to target 1")
	assert.Equal(t, files[1], c.Selected())
	assert.False(t, c.IsSelected(files[6].Path))
}

func TestExtendWithoutAnchor(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(5)

	c.ExtendTo(files, 2)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, files[2], c.Selected())
}

func TestRepairThreeWay(t *testing.T) {
	files := orderedFiles(5)
	gone := &vault.FileRef{Path: "gone.md"}

	t.Run("fallback to first", func(t *testing.T) {
		c := NewCoordinator()
		c.SetSelectedFile(gone, 0)
		changed := c.Repair(files, RepairOptions{SelectFallback: true})
		assert.True(t, changed)
		assert.Equal(t, files[0], c.Selected())
	})

	t.Run("clear when list empty", func(t *testing.T) {
		c := NewCoordinator()
		c.SetSelectedFile(gone, 0)
		changed := c.Repair(nil, RepairOptions{ClearIfEmpty: true})
		assert.True(t, changed)
		assert.Nil(t, c.Selected())
		assert.Equal(t, 0, c.Count())
	})

	t.Run("leave untouched", func(t *testing.T) {
		c := NewCoordinator()
		c.SetSelectedFile(gone, 0)
		changed := c.Repair(files, RepairOptions{})
		assert.False(t, changed)
		assert.Equal(t, gone, c.Selected(), "selection survives a transient filter")
	})

	t.Run("still valid selection untouched", func(t *testing.T) {
		c := NewCoordinator()
		c.SetSelectedFile(files[2], 2)
		changed := c.Repair(files, RepairOptions{SelectFallback: true})
		assert.False(t, changed)
		assert.Equal(t, files[2], c.Selected())
	})
}

func TestRepairPrunesVanishedMultiMembers(t *testing.T) {
	c := NewCoordinator()
	files := orderedFiles(5)

	c.SetSelectedFile(files[0], 0)
	c.ToggleFileSelection(files[2], 2)
	c.ToggleFileSelection(files[4], 4)
	require.Equal(t, 3, c.Count())

	// files[2] disappears from the list.
	remaining := []*vault.FileRef{files[0], files[1], files[3], files[4]}
	changed := c.Repair(remaining, RepairOptions{})
	assert.False(t, changed, "cursor still valid")
	assert.Equal(t, 2, c.Count())
	assert.False(t, c.IsSelected(files[2].Path))
}

func TestProvenanceFlagsConsumeOnce(t *testing.T) {
	c := NewCoordinator()

	c.SetKeyboardNavigation(true)
	assert.True(t, c.ConsumeKeyboardNavigation())
	assert.False(t, c.ConsumeKeyboardNavigation(), "flag reads clear")

	c.SetUserSelection(true)
	assert.True(t, c.ConsumeUserSelection())
	assert.False(t, c.ConsumeUserSelection())

	c.SetFolderChangeWithAutoSelect(true)
	assert.True(t, c.ConsumeFolderChangeWithAutoSelect())
	assert.False(t, c.ConsumeFolderChangeWithAutoSelect())

	c.SetRevealOperation(true)
	assert.True(t, c.ConsumeRevealOperation())
	assert.False(t, c.ConsumeRevealOperation())
}
