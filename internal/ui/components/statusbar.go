package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"notepane/internal/ui"
)

// StatusBarData carries everything the status bar renders.
type StatusBarData struct {
	VaultName   string
	ScopeLabel  string // current folder/tag/property scope, empty at vault root
	NoteCount   int
	ShownCount  int // after search filtering; equals NoteCount when idle
	Selected    int // size of the multi-selection, 0 or 1 for a single cursor
	SearchQuery string
	Searching   bool
	Message     string // transient info/error line, wins over counts
	IsError     bool
}

// RenderStatusBar renders a single status line of exactly width cells.
func RenderStatusBar(s ui.Styles, width int, d StatusBarData) string {
	if width <= 0 {
		return ""
	}

	var left []string
	if d.VaultName != "" {
		left = append(left, s.Bold.Render(d.VaultName))
	}
	if d.ScopeLabel != "" {
		left = append(left, s.FolderNote.Render(d.ScopeLabel))
	}
	if d.Searching {
		q := d.SearchQuery
		if q == "" {
			q = "…"
		}
		left = append(left, s.MatchText.Render("/"+q))
	}

	var right string
	switch {
	case d.Message != "" && d.IsError:
		right = lipgloss.NewStyle().Foreground(s.Theme.Error).Render(d.Message)
	case d.Message != "":
		right = lipgloss.NewStyle().Foreground(s.Theme.Info).Render(d.Message)
	case d.Selected > 1:
		right = s.Muted.Render(fmt.Sprintf("%d selected · %d notes", d.Selected, d.ShownCount))
	case d.Searching && d.ShownCount != d.NoteCount:
		right = s.Muted.Render(fmt.Sprintf("%d of %d notes", d.ShownCount, d.NoteCount))
	default:
		right = s.Muted.Render(fmt.Sprintf("%d notes", d.NoteCount))
	}

	leftStr := strings.Join(left, s.Muted.Render(" › "))
	gap := width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
	if gap < 1 {
		leftStr = ui.Truncate(leftStr, width-lipgloss.Width(right)-3)
		gap = width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
		if gap < 1 {
			gap = 1
		}
	}

	line := leftStr + strings.Repeat(" ", gap) + right
	return s.StatusBar.Width(width).Render(line)
}
