package vault

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"notepane/internal/log"
)

// Index is the filesystem-backed Service. It walks the vault once at
// startup (and again on Reindex) and answers every query from the
// in-memory snapshot, so list rebuilds never touch the disk.
type Index struct {
	root    string
	ignores []glob.Glob

	mu    sync.RWMutex
	files map[string]*FileRef
	pins  map[string]string // path → scope key the pin was made in ("" = global)
}

// Compile-time check.
var _ Service = (*Index)(nil)

// NewIndex creates an index rooted at dir and performs the initial walk.
// Invalid ignore patterns are skipped with a log line rather than failing
// startup.
func NewIndex(dir string, ignorePatterns []string) (*Index, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", abs)
	}

	idx := &Index{
		root:  abs,
		files: make(map[string]*FileRef),
		pins:  make(map[string]string),
	}
	for _, pat := range ignorePatterns {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			log.Warnf("ignoring invalid ignore pattern %q: %v", pat, err)
			continue
		}
		idx.ignores = append(idx.ignores, g)
	}

	if err := idx.Reindex(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Root returns the vault root directory.
func (x *Index) Root() string { return x.root }

// Reindex re-walks the vault. Pins survive a reindex as long as the
// pinned path still exists.
func (x *Index) Reindex() error {
	files := make(map[string]*FileRef)

	err := filepath.WalkDir(x.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, keep indexing the rest.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(x.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		ref, parseErr := x.parseNote(path, rel)
		if parseErr != nil {
			log.Debugf("skipping unreadable note %s: %v", rel, parseErr)
			return nil
		}
		files[rel] = ref
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk vault %s: %w", x.root, err)
	}

	x.mu.Lock()
	for path := range x.pins {
		if f, ok := files[path]; ok {
			f.Pinned = true
		} else {
			delete(x.pins, path)
		}
	}
	x.files = files
	x.mu.Unlock()

	log.Infof("indexed %d notes in %s", len(files), x.root)
	return nil
}

func (x *Index) parseNote(abs, rel string) (*FileRef, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(rel), ".md")
	folder := filepath.ToSlash(filepath.Dir(rel))
	if folder == "." {
		folder = ""
	}

	ref := &FileRef{
		Path:     rel,
		Name:     name,
		Folder:   folder,
		Modified: info.ModTime(),
		Created:  info.ModTime(),
		Size:     info.Size(),
		Hidden:   x.isIgnored(rel),
		Props:    map[string]string{},
	}

	body := applyFrontmatter(ref, data)
	ref.Preview = previewLine(body)
	ref.HasImage = bytes.Contains(body, []byte("!["))
	return ref, nil
}

func (x *Index) isIgnored(rel string) bool {
	for _, g := range x.ignores {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// applyFrontmatter parses a leading YAML block into ref and returns the
// remaining body. Malformed frontmatter is ignored wholesale — the note
// still indexes with filesystem metadata only.
func applyFrontmatter(ref *FileRef, data []byte) []byte {
	const fence = "---\n"
	if !bytes.HasPrefix(data, []byte(fence)) {
		return data
	}
	rest := data[len(fence):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return data
	}
	raw := rest[:end+1]
	body := rest[end+4:]

	var fm map[string]any
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return data
	}

	for key, val := range fm {
		switch key {
		case "title":
			if s, ok := val.(string); ok {
				ref.Title = s
			}
		case "tags":
			ref.Tags = stringList(val)
		case "pinned":
			if b, ok := val.(bool); ok {
				ref.Pinned = b
			}
		case "created", "date":
			// yaml.v3 resolves ISO-looking scalars to time.Time on its
			// own; anything else goes through the lenient parser.
			switch v := val.(type) {
			case time.Time:
				ref.Created = v
			case string:
				if t, err := dateparse.ParseLocal(v); err == nil {
					ref.Created = t
				}
			}
		default:
			ref.Props[key] = scalarString(val)
		}
	}
	sort.Strings(ref.Tags)
	return body
}

func stringList(val any) []string {
	switch v := val.(type) {
	case string:
		var out []string
		for _, part := range strings.Fields(v) {
			out = append(out, strings.TrimPrefix(part, "#"))
		}
		return out
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, strings.TrimPrefix(s, "#"))
			}
		}
		return out
	default:
		return nil
	}
}

func scalarString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// previewLine returns the first content line worth showing: non-empty,
// not a heading marker, not frontmatter residue.
func previewLine(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" {
			continue
		}
		line = strings.TrimLeft(line, "# ")
		if line == "" {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return ""
}

// ── Queries ─────────────────────────────────────────────────────────────────

// ListFiles returns files matching the scope. Hidden files are excluded
// unless the scope requests them.
func (x *Index) ListFiles(scope Scope) ([]*FileRef, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]*FileRef, 0, len(x.files))
	for _, f := range x.files {
		if f.Hidden && !scope.ShowHidden {
			continue
		}
		if inScope(f, scope) {
			out = append(out, f)
		}
	}
	return out, nil
}

func inScope(f *FileRef, scope Scope) bool {
	switch scope.Kind {
	case ScopeNone:
		return false
	case ScopeFolder:
		if scope.Folder == "" {
			return scope.IncludeDescendants || f.Folder == ""
		}
		if f.Folder == scope.Folder {
			return true
		}
		return scope.IncludeDescendants && strings.HasPrefix(f.Folder, scope.Folder+"/")
	case ScopeTag:
		return f.HasTag(scope.Tag, scope.IncludeDescendants)
	case ScopeProperty:
		val, ok := f.Props[scope.PropKey]
		if !ok {
			return false
		}
		return scope.PropValue == "" || val == scope.PropValue
	default:
		return false
	}
}

// FileByPath resolves a vault-relative path.
func (x *Index) FileByPath(path string) *FileRef {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.files[path]
}

// Read loads a note's content from disk.
func (x *Index) Read(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(x.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("read note %s: %w", path, err)
	}
	return string(data), nil
}

// Folders returns every folder containing at least one note, sorted.
func (x *Index) Folders() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, f := range x.files {
		seen[f.Folder] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for folder := range seen {
		out = append(out, folder)
	}
	sort.Strings(out)
	return out
}

// Tags returns every tag present in the vault, sorted.
func (x *Index) Tags() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, f := range x.files {
		for _, t := range f.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ── Pins ────────────────────────────────────────────────────────────────────

// SetPinned toggles the in-memory pin flag for a path.
func (x *Index) SetPinned(path string, pinned bool, scopeKey string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	f, ok := x.files[path]
	if !ok {
		return
	}
	f.Pinned = pinned
	if pinned {
		x.pins[path] = scopeKey
	} else {
		delete(x.pins, path)
	}
}

// PinnedIn reports pin state for a path relative to a scope.
func (x *Index) PinnedIn(path, scopeKey string) (pinned, inScope bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	f, ok := x.files[path]
	if !ok || !f.Pinned {
		return false, false
	}
	made, tracked := x.pins[path]
	if !tracked {
		// Pinned via frontmatter: treated as global.
		return true, false
	}
	return true, made == scopeKey
}
