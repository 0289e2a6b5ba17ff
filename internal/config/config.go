package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the resolved application configuration. The list pane
// receives this as a read-only snapshot — nothing in the core reaches
// into viper after startup.
type Config struct {
	// Vault is the root directory of the note vault.
	Vault string `mapstructure:"vault"`
	// Theme name: "dark" (default) or "light".
	Theme string `mapstructure:"theme"`
	// Editor used for external open (falls back to $EDITOR).
	Editor string `mapstructure:"editor"`

	// SortOption is the global default sort: "title", "title-desc",
	// "modified", "modified-desc", "created", "created-desc".
	SortOption string `mapstructure:"sort_option"`
	// SortOverrides maps a scope key (e.g. "folder:journal", "tag:work")
	// to a sort option that wins over the global default for that scope.
	SortOverrides map[string]string `mapstructure:"sort_overrides"`
	// GroupMode groups file rows: "none", "date", or "folder".
	GroupMode string `mapstructure:"group_mode"`

	// ShowHidden includes files matching the ignore patterns.
	ShowHidden bool `mapstructure:"show_hidden"`
	// IncludeDescendants lists files from subfolders of the active folder.
	IncludeDescendants bool `mapstructure:"include_descendants"`
	// IgnorePatterns are glob patterns (relative to the vault root) whose
	// matches are flagged hidden, e.g. "templates/**".
	IgnorePatterns []string `mapstructure:"ignore_patterns"`

	// CompactRows renders every file row as a single line.
	CompactRows bool `mapstructure:"compact_rows"`
	// ShowPreview adds a preview-text line to file rows.
	ShowPreview bool `mapstructure:"show_preview"`
	// ShowTags adds a tag line to file rows that have tags.
	ShowTags bool `mapstructure:"show_tags"`

	// EnterToOpen disables the debounced preview-open pipeline: arrows
	// move the selection and nothing opens until Enter.
	EnterToOpen bool `mapstructure:"enter_to_open"`
	// AutoSelectFirst selects the first file after a scope change when
	// the previous selection is gone.
	AutoSelectFirst bool `mapstructure:"auto_select_first"`
	// PinnedScopeOnly limits the pinned section to files pinned in the
	// exact active scope.
	PinnedScopeOnly bool `mapstructure:"pinned_scope_only"`

	// Overscan is the number of extra rows materialized beyond the
	// viewport in each direction.
	Overscan int `mapstructure:"overscan"`
	// OpenDebounceMs is the keyboard preview-open debounce window.
	OpenDebounceMs int `mapstructure:"open_debounce_ms"`
	// SearchDebounceMs is the search-input idle delay.
	SearchDebounceMs int `mapstructure:"search_debounce_ms"`

	// DailyNoteFolder and DailyNoteFormat locate daily notes, e.g.
	// "journal" + "2006-01-02".
	DailyNoteFolder string `mapstructure:"daily_note_folder"`
	DailyNoteFormat string `mapstructure:"daily_note_format"`

	// SavedSearches are executed via the search-shortcut command.
	SavedSearches []SavedSearch `mapstructure:"saved_searches"`

	// LogLevel for the file logger: "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`
}

// SavedSearch is a named query, optionally with a starting scope to
// navigate to before the query is applied.
type SavedSearch struct {
	Name   string `mapstructure:"name"`
	Query  string `mapstructure:"query"`
	Folder string `mapstructure:"folder"`
	Tag    string `mapstructure:"tag"`
}

// Load reads configuration from ~/.config/notepane/config.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(ConfigDirectory())
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("NOTEPANE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is fine — use defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault", ".")
	v.SetDefault("theme", "dark")
	v.SetDefault("editor", "")
	v.SetDefault("sort_option", "modified-desc")
	v.SetDefault("group_mode", "date")
	v.SetDefault("show_hidden", false)
	v.SetDefault("include_descendants", true)
	v.SetDefault("ignore_patterns", []string{".*/**", ".*", "templates/**"})
	v.SetDefault("compact_rows", false)
	v.SetDefault("show_preview", true)
	v.SetDefault("show_tags", true)
	v.SetDefault("enter_to_open", false)
	v.SetDefault("auto_select_first", true)
	v.SetDefault("pinned_scope_only", false)
	v.SetDefault("overscan", 10)
	v.SetDefault("open_debounce_ms", 120)
	v.SetDefault("search_debounce_ms", 200)
	v.SetDefault("daily_note_folder", "journal")
	v.SetDefault("daily_note_format", "2006-01-02")
	v.SetDefault("log_level", "info")
}

// ConfigDirectory resolves the XDG config directory for notepane.
func ConfigDirectory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "notepane")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notepane")
}

// StateDirectory resolves the XDG state directory (log files).
func StateDirectory() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "notepane")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "notepane")
}
