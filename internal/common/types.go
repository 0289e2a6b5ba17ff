package common

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"notepane/internal/ui/components"
)

// ── Custom messages ─────────────────────────────────────────────────────────

// RefreshMsg signals views to reload data from the vault index.
type RefreshMsg struct{}

// ErrMsg carries an error to be displayed in the status bar.
type ErrMsg struct{ Err error }

// InfoMsg carries an informational message.
type InfoMsg struct{ Text string }

// ToggleHelpMsg toggles the help overlay.
type ToggleHelpMsg struct{}

// GoToDailyNoteMsg asks the list pane to reveal the daily note for Date.
// Emitted by calendar-style triggers (the today binding, external
// commands); the list pane treats it as a reveal operation.
type GoToDailyNoteMsg struct{ Date time.Time }

// CmdRefresh returns a RefreshMsg (use as return from tea.Cmd).
func CmdRefresh() tea.Msg { return RefreshMsg{} }

// CmdErr creates a tea.Cmd that sends an ErrMsg.
func CmdErr(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// CmdInfo creates a tea.Cmd that sends an InfoMsg.
func CmdInfo(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: text} }
}

// ── View interface ──────────────────────────────────────────────────────────

// View is the interface every pane must implement.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []components.HelpEntry

	// InputCapture returns true when the view is in a text-input mode
	// (e.g. the search bar is focused) and wants to capture letters and
	// arrows instead of letting the app handle them globally.
	InputCapture() bool
}
