package music

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a catalog record stays fresh.
const DefaultCacheTTL = 15 * time.Minute

type cacheEntry struct {
	track    Track
	cachedAt time.Time
}

// Cache is the process-wide track cache, shared across conversations.
// Writes are last-writer-wins; racing lookups for the same id fetch the
// same record, so the overwrite is harmless.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	now func() time.Time
}

// NewCache returns a cache with the given ttl (DefaultCacheTTL when <= 0).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached track when present and fresh.
func (c *Cache) Get(id string) (*Track, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.cachedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a fresh Put may have landed.
		if current, still := c.entries[id]; still && c.now().Sub(current.cachedAt) >= c.ttl {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil, false
	}

	track := entry.track
	return &track, true
}

// Put stores a track keyed by its id.
func (c *Cache) Put(track Track) {
	if track.ID == "" {
		return
	}

	c.mu.Lock()
	c.entries[track.ID] = cacheEntry{track: track, cachedAt: c.now()}
	c.mu.Unlock()
}

// Reset drops every entry. The app calls this on explicit reset rather
// than relying on ambient expiry.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
