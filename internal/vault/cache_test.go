package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingService counts how often each read hits the inner service.
type countingService struct {
	listCalls    int
	folderCalls  int
	reindexCalls int
	files        []*FileRef
}

func (s *countingService) Root() string { return "/vault" }

func (s *countingService) ListFiles(Scope) ([]*FileRef, error) {
	s.listCalls++
	return s.files, nil
}

func (s *countingService) FileByPath(path string) *FileRef {
	for _, f := range s.files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

func (s *countingService) Read(string) (string, error) { return "", nil }

func (s *countingService) Folders() []string {
	s.folderCalls++
	return []string{""}
}

func (s *countingService) Tags() []string { return nil }

func (s *countingService) SetPinned(path string, pinned bool, _ string) {
	if f := s.FileByPath(path); f != nil {
		f.Pinned = pinned
	}
}

func (s *countingService) PinnedIn(path, _ string) (bool, bool) {
	f := s.FileByPath(path)
	return f != nil && f.Pinned, false
}

func (s *countingService) Reindex() error {
	s.reindexCalls++
	return nil
}

func TestCacheCollapsesReads(t *testing.T) {
	inner := &countingService{files: []*FileRef{{Path: "a.md"}}}
	c := NewCachedService(inner, time.Minute)

	scope := Scope{Kind: ScopeFolder}
	for i := 0; i < 5; i++ {
		files, err := c.ListFiles(scope)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	}
	assert.Equal(t, 1, inner.listCalls, "five reads inside the TTL, one scan")

	c.Folders()
	c.Folders()
	assert.Equal(t, 1, inner.folderCalls)
}

func TestCacheKeyIncludesVisibilityFlags(t *testing.T) {
	inner := &countingService{}
	c := NewCachedService(inner, time.Minute)

	base := Scope{Kind: ScopeFolder}
	_, _ = c.ListFiles(base)
	_, _ = c.ListFiles(Scope{Kind: ScopeFolder, ShowHidden: true})
	_, _ = c.ListFiles(Scope{Kind: ScopeFolder, IncludeDescendants: true})
	assert.Equal(t, 3, inner.listCalls, "each flag combination is its own entry")

	_, _ = c.ListFiles(base)
	assert.Equal(t, 3, inner.listCalls)
}

func TestCacheExpiry(t *testing.T) {
	inner := &countingService{}
	c := NewCachedService(inner, 10*time.Millisecond)

	scope := Scope{Kind: ScopeFolder}
	_, _ = c.ListFiles(scope)
	time.Sleep(20 * time.Millisecond)
	_, _ = c.ListFiles(scope)
	assert.Equal(t, 2, inner.listCalls)
}

func TestWritesInvalidate(t *testing.T) {
	inner := &countingService{files: []*FileRef{{Path: "a.md"}}}
	c := NewCachedService(inner, time.Minute)

	scope := Scope{Kind: ScopeFolder}
	_, _ = c.ListFiles(scope)

	c.SetPinned("a.md", true, "")
	_, _ = c.ListFiles(scope)
	assert.Equal(t, 2, inner.listCalls, "SetPinned invalidates")

	require.NoError(t, c.Reindex())
	assert.Equal(t, 1, inner.reindexCalls)
	_, _ = c.ListFiles(scope)
	assert.Equal(t, 3, inner.listCalls, "Reindex invalidates")
}

func TestUncachedPassthrough(t *testing.T) {
	inner := &countingService{files: []*FileRef{{Path: "a.md", Pinned: true}}}
	c := NewCachedService(inner, time.Minute)

	assert.NotNil(t, c.FileByPath("a.md"), "point lookups bypass the cache")
	pinned, _ := c.PinnedIn("a.md", "")
	assert.True(t, pinned)
	assert.Equal(t, "/vault", c.Root())
}
