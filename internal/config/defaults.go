package config

// KeyBindings defines the mapping of list-pane actions to keys.
// Kept separate so it can later be made configurable via config file.
type KeyBindings struct {
	Quit          string
	Help          string
	Up            string
	Down          string
	PageUp        string
	PageDown      string
	Home          string
	End           string
	Enter         string
	Space         string
	ExtendUp      string
	ExtendDown    string
	ExtendHome    string
	ExtendEnd     string
	Search        string
	ClearSearch   string
	TogglePin     string
	ToggleHidden  string
	CycleSort     string
	CycleGroup    string
	Refresh       string
	DailyNote     string
	OpenInEditor  string
	FocusPreview  string
}

// DefaultKeyBindings returns the default key bindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:         "q",
		Help:         "?",
		Up:           "k",
		Down:         "j",
		PageUp:       "pgup",
		PageDown:     "pgdown",
		Home:         "home",
		End:          "end",
		Enter:        "enter",
		Space:        " ",
		ExtendUp:     "shift+up",
		ExtendDown:   "shift+down",
		ExtendHome:   "shift+home",
		ExtendEnd:    "shift+end",
		Search:       "/",
		ClearSearch:  "esc",
		TogglePin:    "p",
		ToggleHidden: "h",
		CycleSort:    "s",
		CycleGroup:   "G",
		Refresh:      "r",
		DailyNote:    "t",
		OpenInEditor: "e",
		FocusPreview: "tab",
	}
}
