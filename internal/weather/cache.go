package weather

import (
	"sync"
	"time"
)

type cacheEntry struct {
	set     IntervalSet
	written time.Time
}

// Cache is a process-wide TTL cache for provider payloads, keyed by the
// canonical location key. Expired entries are treated as absent on read and
// overwritten lazily; they are never evicted proactively.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache whose entries are valid for exactly ttl from write.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached payload for key, or a miss when the entry is absent
// or older than the TTL.
func (c *Cache) Get(key string) (IntervalSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.written) > c.ttl {
		return IntervalSet{}, false
	}
	return entry.set, true
}

// Set stores the payload for key, restarting its TTL. Concurrent writers for
// the same key race and the last one wins.
func (c *Cache) Set(key string, set IntervalSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{set: set, written: c.now()}
}
