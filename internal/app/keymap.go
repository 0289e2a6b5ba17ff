package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings. Everything list-specific lives
// in the pane; only keys that must work from any focus state are global.
type KeyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Refresh key.Binding
	Back    key.Binding

	// Saved-search shortcuts. Alt+digit so they never conflict with
	// search input or pane-level keys.
	Shortcut1 key.Binding
	Shortcut2 key.Binding
	Shortcut3 key.Binding
	Shortcut4 key.Binding
	Shortcut5 key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reindex")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Shortcut1: key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "saved search 1")),
		Shortcut2: key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "saved search 2")),
		Shortcut3: key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "saved search 3")),
		Shortcut4: key.NewBinding(key.WithKeys("alt+4"), key.WithHelp("alt+4", "saved search 4")),
		Shortcut5: key.NewBinding(key.WithKeys("alt+5"), key.WithHelp("alt+5", "saved search 5")),
	}
}
