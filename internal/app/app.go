// Package app is the top-level Bubbletea model: it hosts the list pane,
// renders the status bar and help overlay, and routes global keys.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notepane/internal/common"
	"notepane/internal/config"
	"notepane/internal/listpane"
	"notepane/internal/ui"
	"notepane/internal/ui/components"
)

// Model orchestrates the pane and the application chrome around it.
type Model struct {
	cfg    *config.Config
	styles ui.Styles
	keys   KeyMap

	pane *listpane.Controller

	width, height int
	showHelp      bool

	statusMsg string
	statusErr bool
	statusExp time.Time
}

// New creates the application model.
func New(cfg *config.Config, styles ui.Styles, pane *listpane.Controller) Model {
	return Model{
		cfg:    cfg,
		styles: styles,
		keys:   DefaultKeyMap(),
		pane:   pane,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.pane.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pane.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.KeyMsg:
		// The search bar captures letters and arrows; forward everything
		// except ctrl+c so typing "q" works.
		if m.pane.InputCapture() {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m.forward(msg)
		}

		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, common.CmdRefresh
		case key.Matches(msg, m.keys.Shortcut1):
			return m, m.runShortcut(0)
		case key.Matches(msg, m.keys.Shortcut2):
			return m, m.runShortcut(1)
		case key.Matches(msg, m.keys.Shortcut3):
			return m, m.runShortcut(2)
		case key.Matches(msg, m.keys.Shortcut4):
			return m, m.runShortcut(3)
		case key.Matches(msg, m.keys.Shortcut5):
			return m, m.runShortcut(4)
		}
		return m.forward(msg)

	case common.ErrMsg:
		m.statusMsg = msg.Err.Error()
		m.statusErr = true
		m.statusExp = time.Now().Add(5 * time.Second)
		return m, nil

	case common.InfoMsg:
		m.statusMsg = msg.Text
		m.statusErr = false
		m.statusExp = time.Now().Add(3 * time.Second)
		return m, nil

	case common.ToggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := m.pane.Update(msg)
	return m, cmd
}

func (m Model) runShortcut(i int) tea.Cmd {
	if i >= len(m.cfg.SavedSearches) {
		return nil
	}
	ss := m.cfg.SavedSearches[i]
	m.pane.ExecuteSearchShortcut(ss)
	if ss.Name != "" {
		return common.CmdInfo(ss.Name)
	}
	return nil
}

// View renders the entire UI. Pure — no I/O.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		return components.RenderHelp(m.styles, m.width, m.height, m.pane.ShortHelp())
	}

	content := lipgloss.NewStyle().Width(m.width).Height(m.contentHeight()).Render(m.pane.View())

	barData := m.pane.StatusData()
	if m.statusMsg != "" && time.Now().Before(m.statusExp) {
		barData.Message = m.statusMsg
		barData.IsError = m.statusErr
	}
	statusBar := components.RenderStatusBar(m.styles, m.width, barData)

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) contentHeight() int {
	h := m.height - 1 // status bar
	if h < 1 {
		h = 1
	}
	return h
}
