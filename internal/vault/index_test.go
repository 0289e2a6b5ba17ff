package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	root := t.TempDir()

	writeNote(t, root, "inbox.md", "---\ntitle: Inbox\ntags: [work, projects/go]\nstatus: open\n---\n\nFirst line of the inbox.\n")
	writeNote(t, root, "plain.md", "# Heading\n\nBody text here.\n")
	writeNote(t, root, "projects/roadmap.md", "---\npinned: true\ncreated: 2024-03-01\n---\nRoadmap body.\n")
	writeNote(t, root, "archive/old.md", "Old content.\n")
	writeNote(t, root, "notes.txt", "not a note\n")
	writeNote(t, root, ".trash/deleted.md", "gone\n")

	idx, err := NewIndex(root, []string{"archive/**"})
	require.NoError(t, err)
	return idx, root
}

func TestIndexWalk(t *testing.T) {
	idx, _ := newTestIndex(t)

	// .txt files and dot-directories never index; the ignored folder
	// indexes as hidden.
	assert.Nil(t, idx.FileByPath("notes.txt"))
	assert.Nil(t, idx.FileByPath(".trash/deleted.md"))

	old := idx.FileByPath("archive/old.md")
	require.NotNil(t, old)
	assert.True(t, old.Hidden)

	inbox := idx.FileByPath("inbox.md")
	require.NotNil(t, inbox)
	assert.Equal(t, "Inbox", inbox.Title)
	assert.Equal(t, []string{"projects/go", "work"}, inbox.Tags, "tags come back sorted")
	assert.Equal(t, "open", inbox.Props["status"])
	assert.Equal(t, "First line of the inbox.", inbox.Preview)
	assert.Equal(t, "", inbox.Folder)
}

func TestIndexFrontmatter(t *testing.T) {
	idx, _ := newTestIndex(t)

	roadmap := idx.FileByPath("projects/roadmap.md")
	require.NotNil(t, roadmap)
	assert.True(t, roadmap.Pinned)
	assert.Equal(t, 2024, roadmap.Created.Year())
	assert.Equal(t, "projects", roadmap.Folder)
	assert.Equal(t, "roadmap", roadmap.DisplayTitle(), "falls back to the file name")

	plain := idx.FileByPath("plain.md")
	require.NotNil(t, plain)
	assert.Equal(t, "plain", plain.DisplayTitle())
	assert.Equal(t, "Heading", plain.Preview, "heading markers are stripped")
}

func TestListFilesScopes(t *testing.T) {
	idx, _ := newTestIndex(t)

	root := Scope{Kind: ScopeFolder}
	files, err := idx.ListFiles(root)
	require.NoError(t, err)
	assert.Len(t, files, 2, "root folder, no descendants, hidden excluded")

	all, err := idx.ListFiles(Scope{Kind: ScopeFolder, IncludeDescendants: true, ShowHidden: true})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	proj, err := idx.ListFiles(Scope{Kind: ScopeFolder, Folder: "projects"})
	require.NoError(t, err)
	require.Len(t, proj, 1)
	assert.Equal(t, "projects/roadmap.md", proj[0].Path)

	tagged, err := idx.ListFiles(Scope{Kind: ScopeTag, Tag: "work"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "inbox.md", tagged[0].Path)

	// Tag scope with descendants pulls in projects/go via its parent.
	nested, err := idx.ListFiles(Scope{Kind: ScopeTag, Tag: "projects", IncludeDescendants: true})
	require.NoError(t, err)
	assert.Len(t, nested, 1)

	byProp, err := idx.ListFiles(Scope{Kind: ScopeProperty, PropKey: "status", PropValue: "open"})
	require.NoError(t, err)
	assert.Len(t, byProp, 1)

	none, err := idx.ListFiles(Scope{Kind: ScopeNone})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFoldersAndTags(t *testing.T) {
	idx, _ := newTestIndex(t)

	assert.Equal(t, []string{"", "archive", "projects"}, idx.Folders())
	assert.Equal(t, []string{"projects/go", "work"}, idx.Tags())
}

func TestPinsSurviveReindex(t *testing.T) {
	idx, root := newTestIndex(t)

	idx.SetPinned("inbox.md", true, "folder:")
	pinned, inScope := idx.PinnedIn("inbox.md", "folder:")
	assert.True(t, pinned)
	assert.True(t, inScope)

	_, inScope = idx.PinnedIn("inbox.md", "folder:projects")
	assert.False(t, inScope, "pin belongs to the scope it was made in")

	require.NoError(t, idx.Reindex())
	pinned, _ = idx.PinnedIn("inbox.md", "folder:")
	assert.True(t, pinned, "pins survive a rewalk")

	// Frontmatter pins read as global.
	pinned, inScope = idx.PinnedIn("projects/roadmap.md", "folder:projects")
	assert.True(t, pinned)
	assert.False(t, inScope)

	// Deleting the note drops its pin.
	require.NoError(t, os.Remove(filepath.Join(root, "inbox.md")))
	require.NoError(t, idx.Reindex())
	pinned, _ = idx.PinnedIn("inbox.md", "folder:")
	assert.False(t, pinned)
}

func TestRead(t *testing.T) {
	idx, _ := newTestIndex(t)

	content, err := idx.Read("plain.md")
	require.NoError(t, err)
	assert.Contains(t, content, "Body text here.")

	_, err = idx.Read("missing.md")
	assert.Error(t, err)
}

func TestMalformedFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "broken.md", "---\nkey: [unclosed\n---\nStill readable body.\n")

	idx, err := NewIndex(root, nil)
	require.NoError(t, err)

	f := idx.FileByPath("broken.md")
	require.NotNil(t, f, "malformed frontmatter never drops the note")
	assert.Equal(t, "broken", f.DisplayTitle())
	assert.False(t, f.Modified.IsZero())
	assert.WithinDuration(t, time.Now(), f.Modified, time.Minute)
}
