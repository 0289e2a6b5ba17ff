package vault

import (
	"sync"
	"time"
)

// CachedService wraps a Service with a TTL cache for scope listings.
// Several triggers fire close together (search debounce settling, a
// filesystem refresh, a scope change) and each one asks for the same
// scope listing; caching collapses those into one index scan per window.
// Write operations (SetPinned, Reindex) invalidate the cache so the next
// read is fresh.
//
// The cache is bounded by maxCacheEntries to keep memory flat across
// long-running sessions.
type CachedService struct {
	inner Service
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// maxCacheEntries caps the number of entries. When exceeded, expired
// entries are evicted first; if still over, the cache is flushed (the
// TTL is short, so this only happens if something is wrong).
const maxCacheEntries = 64

type cacheEntry struct {
	val    any
	err    error
	expiry time.Time
}

// Compile-time check.
var _ Service = (*CachedService)(nil)

// NewCachedService wraps an existing Service with a TTL cache.
// Recommended TTL: 1-2 seconds.
func NewCachedService(inner Service, ttl time.Duration) *CachedService {
	return &CachedService{
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]cacheEntry, 16),
	}
}

// Invalidate clears all cached entries. Called after any write operation.
func (c *CachedService) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[string]cacheEntry, 16)
	c.mu.Unlock()
}

func (c *CachedService) get(key string) (val any, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.cache[key]
	if !found || time.Now().After(e.expiry) {
		return nil, false, nil
	}
	return e.val, true, e.err
}

func (c *CachedService) set(key string, val any, err error) {
	c.mu.Lock()
	if len(c.cache) >= maxCacheEntries {
		now := time.Now()
		for k, e := range c.cache {
			if now.After(e.expiry) {
				delete(c.cache, k)
			}
		}
		if len(c.cache) >= maxCacheEntries {
			c.cache = make(map[string]cacheEntry, 16)
		}
	}
	c.cache[key] = cacheEntry{val: val, err: err, expiry: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// ── Cached reads ────────────────────────────────────────────────────────────

// Root delegates to the inner service.
func (c *CachedService) Root() string { return c.inner.Root() }

// ListFiles returns files in scope (cached per scope + visibility flags).
func (c *CachedService) ListFiles(scope Scope) ([]*FileRef, error) {
	key := listKey(scope)
	if v, ok, err := c.get(key); ok {
		return v.([]*FileRef), err
	}
	v, err := c.inner.ListFiles(scope)
	c.set(key, v, err)
	return v, err
}

func listKey(scope Scope) string {
	key := "list:" + scope.Key()
	if scope.IncludeDescendants {
		key += "+desc"
	}
	if scope.ShowHidden {
		key += "+hidden"
	}
	return key
}

// Folders delegates to the inner service (cached).
func (c *CachedService) Folders() []string {
	if v, ok, _ := c.get("folders"); ok {
		return v.([]string)
	}
	v := c.inner.Folders()
	c.set("folders", v, nil)
	return v
}

// Tags delegates to the inner service (cached).
func (c *CachedService) Tags() []string {
	if v, ok, _ := c.get("tags"); ok {
		return v.([]string)
	}
	v := c.inner.Tags()
	c.set("tags", v, nil)
	return v
}

// ── Uncached reads ──────────────────────────────────────────────────────────

// FileByPath delegates to the inner service (already a map lookup).
func (c *CachedService) FileByPath(path string) *FileRef {
	return c.inner.FileByPath(path)
}

// Read delegates to the inner service (content is large and per-file).
func (c *CachedService) Read(path string) (string, error) {
	return c.inner.Read(path)
}

// PinnedIn delegates to the inner service.
func (c *CachedService) PinnedIn(path, scopeKey string) (pinned, inScope bool) {
	return c.inner.PinnedIn(path, scopeKey)
}

// ── Write operations (invalidate cache) ─────────────────────────────────────

// SetPinned toggles a pin and invalidates the cache.
func (c *CachedService) SetPinned(path string, pinned bool, scopeKey string) {
	c.inner.SetPinned(path, pinned, scopeKey)
	c.Invalidate()
}

// Reindex re-walks the vault and invalidates the cache.
func (c *CachedService) Reindex() error {
	err := c.inner.Reindex()
	if err == nil {
		c.Invalidate()
	}
	return err
}
