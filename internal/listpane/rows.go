// Package listpane implements the virtualized file list: the row model
// built from scope + search state, the virtualization window over it, the
// selection state machine, and the keyboard navigation engine with its
// debounced preview-open pipeline.
package listpane

import (
	"notepane/internal/search"
	"notepane/internal/vault"
)

// RowKind tags the display row union.
type RowKind int

// Row kinds. A built sequence always starts with one top spacer and, when
// any file row exists, ends with one bottom spacer.
const (
	RowTopSpacer RowKind = iota
	RowBottomSpacer
	RowHeader
	RowFile
)

// Row is one renderable list entry. Rows are immutable once built; a
// rebuild produces a wholly new slice.
type Row struct {
	Kind RowKind

	// Header fields.
	Label      string
	Pinned     bool
	FolderPath string

	// File fields.
	File        *vault.FileRef
	Ordinal     int    // position in the file-only ordered list
	ParentLabel string // parent folder annotation, when shown out of place
	Meta        *search.MatchMeta
}

// Key returns a stable identity for height caching across rebuilds.
// Spacers share fixed keys; they are never measured anyway.
func (r Row) Key() string {
	switch r.Kind {
	case RowTopSpacer:
		return "^"
	case RowBottomSpacer:
		return "$"
	case RowHeader:
		if r.Pinned {
			return "hdr:pinned"
		}
		return "hdr:" + r.Label
	default:
		return r.File.Path
	}
}

// ── Sort & group options ────────────────────────────────────────────────────

// SortOption orders the file list.
type SortOption int

// Sort options.
const (
	SortTitleAsc SortOption = iota
	SortTitleDesc
	SortModifiedAsc
	SortModifiedDesc
	SortCreatedAsc
	SortCreatedDesc
)

// ParseSortOption resolves a config string; unknown values fall back to
// modified-desc.
func ParseSortOption(s string) SortOption {
	switch s {
	case "title":
		return SortTitleAsc
	case "title-desc":
		return SortTitleDesc
	case "modified":
		return SortModifiedAsc
	case "modified-desc":
		return SortModifiedDesc
	case "created":
		return SortCreatedAsc
	case "created-desc":
		return SortCreatedDesc
	default:
		return SortModifiedDesc
	}
}

// String returns the config form of the option.
func (s SortOption) String() string {
	switch s {
	case SortTitleAsc:
		return "title"
	case SortTitleDesc:
		return "title-desc"
	case SortModifiedAsc:
		return "modified"
	case SortModifiedDesc:
		return "modified-desc"
	case SortCreatedAsc:
		return "created"
	default:
		return "created-desc"
	}
}

// dateBased reports whether the option orders by a timestamp. Date
// grouping only applies to date-based sorts; grouping an alphabetical
// order by date would scatter duplicate headers through the list.
func (s SortOption) dateBased() bool {
	return s != SortTitleAsc && s != SortTitleDesc
}

// GroupMode groups file rows under section headers.
type GroupMode int

// Group modes.
const (
	GroupNone GroupMode = iota
	GroupByDate
	GroupByFolder
)

// ParseGroupMode resolves a config string.
func ParseGroupMode(s string) GroupMode {
	switch s {
	case "date":
		return GroupByDate
	case "folder":
		return GroupByFolder
	default:
		return GroupNone
	}
}

// String returns the config form of the mode.
func (g GroupMode) String() string {
	switch g {
	case GroupByDate:
		return "date"
	case GroupByFolder:
		return "folder"
	default:
		return "none"
	}
}
