package vault

// Service defines the contract for all vault reads. The list pane depends
// on this interface, never on the filesystem directly, which keeps the
// core testable via in-memory implementations.
type Service interface {
	// Root returns the vault root directory (absolute).
	Root() string

	// ListFiles returns the files in scope, unfiltered by search and in
	// no particular order. An indexing-in-progress vault returns an
	// empty slice, never an error the caller must branch on.
	ListFiles(scope Scope) ([]*FileRef, error)

	// FileByPath resolves a vault-relative path, or nil when it no
	// longer exists.
	FileByPath(path string) *FileRef

	// Read returns the note's content for the preview pane.
	Read(path string) (string, error)

	// Folders returns every folder that contains at least one note.
	Folders() []string

	// Tags returns every tag present in the vault.
	Tags() []string

	// SetPinned toggles the in-memory pin flag for a path. scopeKey is
	// recorded so pins can be limited to the scope they were made in.
	SetPinned(path string, pinned bool, scopeKey string)

	// PinnedIn reports whether path is pinned, and whether that pin was
	// made in the given scope.
	PinnedIn(path, scopeKey string) (pinned, inScope bool)

	// Reindex re-walks the vault from disk.
	Reindex() error
}
