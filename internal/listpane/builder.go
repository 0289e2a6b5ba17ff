package listpane

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"notepane/internal/log"
	"notepane/internal/search"
	"notepane/internal/vault"
)

// Builder produces the ordered, grouped row sequence from the active
// scope and search state. Every Build returns a wholly new snapshot; the
// previous one is discarded, never patched.
type Builder struct {
	svc vault.Service

	globalSort      SortOption
	sortOverrides   map[string]SortOption // scope key → override
	group           GroupMode
	pinnedScopeOnly bool
}

// BuildResult is an immutable snapshot of one build pass.
type BuildResult struct {
	Rows         []Row
	OrderedFiles []*vault.FileRef

	// PathToRow maps a file path to its row index in Rows (for scroll
	// targeting); PathToOrdinal maps it to its position in OrderedFiles
	// (for range-selection math).
	PathToRow     map[string]int
	PathToOrdinal map[string]int

	// OrderKey changes exactly when row-index identity is invalidated:
	// sort option, group mode, or the search-active flag flipped.
	OrderKey string
}

// NewBuilder creates a builder over the vault service.
func NewBuilder(svc vault.Service, globalSort SortOption, group GroupMode, pinnedScopeOnly bool) *Builder {
	return &Builder{
		svc:             svc,
		globalSort:      globalSort,
		group:           group,
		sortOverrides:   make(map[string]SortOption),
		pinnedScopeOnly: pinnedScopeOnly,
	}
}

// SetSortOverride records a per-scope sort that wins over the global
// default.
func (b *Builder) SetSortOverride(scopeKey string, opt SortOption) {
	b.sortOverrides[scopeKey] = opt
}

// SetGlobalSort replaces the global default sort.
func (b *Builder) SetGlobalSort(opt SortOption) { b.globalSort = opt }

// SetGroupMode replaces the grouping mode.
func (b *Builder) SetGroupMode(g GroupMode) { b.group = g }

// SortFor resolves the effective sort for a scope.
func (b *Builder) SortFor(scope vault.Scope) SortOption {
	if opt, ok := b.sortOverrides[scope.Key()]; ok {
		return opt
	}
	return b.globalSort
}

// GroupMode returns the current grouping mode.
func (b *Builder) GroupMode() GroupMode { return b.group }

// Build fetches the scope's files, applies search filtering, partitions
// pins, sorts, groups, and assembles the row sequence. A temporarily
// unavailable index yields an empty result, never an error.
//
// now is the local day reference: date buckets are computed against it
// once per build so grouping stays stable across a midnight boundary
// within a single render pass.
func (b *Builder) Build(scope vault.Scope, tokens search.TokenSet, searchActive bool, now time.Time) BuildResult {
	res := BuildResult{
		PathToRow:     map[string]int{},
		PathToOrdinal: map[string]int{},
		OrderKey:      b.orderKey(scope, searchActive),
	}
	res.Rows = append(res.Rows, Row{Kind: RowTopSpacer})

	listed, err := b.svc.ListFiles(scope)
	if err != nil {
		log.Debugf("list files for %s: %v", scope.Key(), err)
		return res
	}
	// The service may hand out a cached slice; never reorder it in place.
	files := append([]*vault.FileRef(nil), listed...)

	filtering := searchActive && !tokens.IsZero()
	metas := map[string]*search.MatchMeta{}
	if filtering {
		kept := files[:0]
		for _, f := range files {
			ok, meta := tokens.Matches(f)
			if !ok {
				continue
			}
			metas[f.Path] = meta
			kept = append(kept, f)
		}
		files = kept
	}

	sortOpt := b.SortFor(scope)
	sortFiles(files, sortOpt)

	pinned, rest := b.partitionPinned(files, scope)

	appendFile := func(f *vault.FileRef, isPinned bool) {
		row := Row{
			Kind:    RowFile,
			File:    f,
			Ordinal: len(res.OrderedFiles),
			Pinned:  isPinned,
			Meta:    metas[f.Path],
		}
		if f.Folder != scope.Folder {
			row.ParentLabel = f.Folder
		}
		res.PathToRow[f.Path] = len(res.Rows)
		res.PathToOrdinal[f.Path] = row.Ordinal
		res.Rows = append(res.Rows, row)
		res.OrderedFiles = append(res.OrderedFiles, f)
	}

	if len(pinned) > 0 {
		res.Rows = append(res.Rows, Row{Kind: RowHeader, Label: "Pinned", Pinned: true})
		for _, f := range pinned {
			appendFile(f, true)
		}
	}

	group := b.group
	if group == GroupByDate && !sortOpt.dateBased() {
		group = GroupNone
	}
	if group == GroupByFolder {
		sortByFolderThen(rest, sortOpt)
	}

	lastLabel := ""
	for _, f := range rest {
		switch group {
		case GroupByDate:
			label := dateBucket(sortDate(f, sortOpt), now)
			if label != lastLabel {
				res.Rows = append(res.Rows, Row{Kind: RowHeader, Label: label})
				lastLabel = label
			}
		case GroupByFolder:
			label := f.Folder
			if label == "" {
				label = "/"
			}
			if label != lastLabel {
				res.Rows = append(res.Rows, Row{Kind: RowHeader, Label: label, FolderPath: f.Folder})
				lastLabel = label
			}
		}
		appendFile(f, false)
	}

	if len(res.OrderedFiles) > 0 {
		res.Rows = append(res.Rows, Row{Kind: RowBottomSpacer})
	}
	return res
}

func (b *Builder) orderKey(scope vault.Scope, searchActive bool) string {
	return fmt.Sprintf("%s|%s|%t|%s", b.SortFor(scope), b.group, searchActive, scope.Key())
}

// partitionPinned splits pinned files out, honoring the scope-only limit.
// Pin order follows the active sort, same as the rest of the list.
func (b *Builder) partitionPinned(files []*vault.FileRef, scope vault.Scope) (pinned, rest []*vault.FileRef) {
	for _, f := range files {
		if !f.Pinned {
			rest = append(rest, f)
			continue
		}
		if b.pinnedScopeOnly {
			if _, inScope := b.svc.PinnedIn(f.Path, scope.Key()); !inScope {
				rest = append(rest, f)
				continue
			}
		}
		pinned = append(pinned, f)
	}
	return pinned, rest
}

// ── Sorting ─────────────────────────────────────────────────────────────────

// sortFiles orders files by the option, breaking ties by path so two
// builds with identical inputs always agree.
func sortFiles(files []*vault.FileRef, opt SortOption) {
	sort.SliceStable(files, func(i, j int) bool {
		return fileLess(files[i], files[j], opt)
	})
}

func sortByFolderThen(files []*vault.FileRef, opt SortOption) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Folder != files[j].Folder {
			return files[i].Folder < files[j].Folder
		}
		return fileLess(files[i], files[j], opt)
	})
}

func fileLess(a, b *vault.FileRef, opt SortOption) bool {
	switch opt {
	case SortTitleAsc:
		if c := strings.Compare(sortTitle(a), sortTitle(b)); c != 0 {
			return c < 0
		}
	case SortTitleDesc:
		if c := strings.Compare(sortTitle(a), sortTitle(b)); c != 0 {
			return c > 0
		}
	case SortModifiedAsc:
		if !a.Modified.Equal(b.Modified) {
			return a.Modified.Before(b.Modified)
		}
	case SortModifiedDesc:
		if !a.Modified.Equal(b.Modified) {
			return a.Modified.After(b.Modified)
		}
	case SortCreatedAsc:
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
	case SortCreatedDesc:
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
	}
	return a.Path < b.Path
}

func sortTitle(f *vault.FileRef) string {
	return strings.ToLower(f.DisplayTitle())
}

func sortDate(f *vault.FileRef, opt SortOption) time.Time {
	if opt == SortCreatedAsc || opt == SortCreatedDesc {
		return f.Created
	}
	return f.Modified
}

// ── Date buckets ────────────────────────────────────────────────────────────

// dateBucket maps a timestamp to its semantic bucket label relative to
// the build's day reference.
func dateBucket(t time.Time, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := 24 * time.Hour

	switch {
	case !t.Before(today):
		return "Today"
	case !t.Before(today.Add(-day)):
		return "Yesterday"
	case !t.Before(today.Add(-7 * day)):
		return "Previous 7 Days"
	case !t.Before(today.Add(-30 * day)):
		return "Previous 30 Days"
	case t.Year() == now.Year():
		return t.Month().String()
	default:
		return fmt.Sprintf("%d", t.Year())
	}
}
