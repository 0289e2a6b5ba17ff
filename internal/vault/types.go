package vault

import "time"

// FileRef describes a single note in the vault. Path is the only stable
// identity — relative to the vault root, unique, and the key every other
// subsystem uses across rebuilds.
type FileRef struct {
	Path   string // relative path, e.g. "projects/roadmap.md"
	Name   string // base name without extension
	Title  string // frontmatter title, or Name when absent
	Folder string // parent folder relative to root, "" for root

	Tags  []string
	Props map[string]string

	Created  time.Time
	Modified time.Time
	Size     int64

	Pinned  bool
	Hidden  bool // matched an ignore pattern
	Preview string
	HasImage bool
}

// DisplayTitle returns the title shown in list rows.
func (f *FileRef) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// HasTag reports whether the file carries tag, or a descendant of it when
// withDescendants is set (tag hierarchy uses "/" separators).
func (f *FileRef) HasTag(tag string, withDescendants bool) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
		if withDescendants && len(t) > len(tag) && t[:len(tag)] == tag && t[len(tag)] == '/' {
			return true
		}
	}
	return false
}

// ── Scope ───────────────────────────────────────────────────────────────────

// ScopeKind selects which navigation target is active.
type ScopeKind int

// Scope kinds. Exactly one target field is meaningful per kind.
const (
	ScopeNone ScopeKind = iota
	ScopeFolder
	ScopeTag
	ScopeProperty
)

// Scope is the selection context the list pane reads: which folder, tag,
// or property is active, plus visibility flags. Mutated only by external
// navigation actions.
type Scope struct {
	Kind ScopeKind

	Folder    string
	Tag       string
	PropKey   string
	PropValue string

	IncludeDescendants bool
	ShowHidden         bool
}

// Key returns a stable identifier for per-scope settings (sort overrides,
// scope-local pins).
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeFolder:
		return "folder:" + s.Folder
	case ScopeTag:
		return "tag:" + s.Tag
	case ScopeProperty:
		return "prop:" + s.PropKey + "=" + s.PropValue
	default:
		return ""
	}
}

// Label returns the scope name shown in the pane header.
func (s Scope) Label() string {
	switch s.Kind {
	case ScopeFolder:
		if s.Folder == "" {
			return "Vault"
		}
		return s.Folder
	case ScopeTag:
		return "#" + s.Tag
	case ScopeProperty:
		if s.PropValue == "" {
			return "[" + s.PropKey + "]"
		}
		return "[" + s.PropKey + ":" + s.PropValue + "]"
	default:
		return ""
	}
}

// ── Open collaboration ──────────────────────────────────────────────────────

// OpenContext selects where an opened file lands on the host side.
type OpenContext int

// Open contexts, chosen by the modifier held on Enter.
const (
	OpenActive OpenContext = iota
	OpenTab
	OpenSplit
	OpenWindow
)

// OpenOptions qualify an open request.
type OpenOptions struct {
	Context OpenContext
	Active  bool
}

// Opener is the host file-open collaborator. The list pane never retries
// a failed open; the opener owns its own error surface.
type Opener interface {
	OpenFile(file *FileRef, opts OpenOptions) error
}
