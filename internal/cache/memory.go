package cache

import (
	"sync"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// MemoryCache is the L1 cache. Entries are never evicted; the owner clears
// it on shutdown.
type MemoryCache struct {
	items map[string]*audio.Buffer
	size  int64

	mu sync.RWMutex

	stats CacheStats
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*audio.Buffer),
	}
}

// Get retrieves a buffer from the cache.
func (c *MemoryCache) Get(key string) (*audio.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	c.stats.LastAccess = time.Now()
	return buf, true
}

// Put stores buf under key. A second Put for the same key replaces the
// first.
func (c *MemoryCache) Put(key string, buf *audio.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.items[key]; ok {
		c.size -= old.SizeBytes()
	}
	c.items[key] = buf
	c.size += buf.SizeBytes()
}

// Delete removes an entry from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.items[key]; ok {
		c.size -= old.SizeBytes()
		delete(c.items, key)
	}
}

// Contains checks if a key exists without touching the hit counters.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.items[key]
	return ok
}

// Len returns the number of cached buffers.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Size returns the total sample bytes held.
func (c *MemoryCache) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Clear removes all entries. Counters are kept.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*audio.Buffer)
	c.size = 0
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	stats.calculateHitRate()
	return stats
}
