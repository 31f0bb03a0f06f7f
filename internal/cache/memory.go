package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps fetched text in process memory with per-entry expiry
type MemoryCache struct {
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// NewMemoryCache creates a memory cache; expired entries are purged every cleanupInterval
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached text for key
func (c *MemoryCache) Get(key string) (string, bool) {
	val, found := c.cache.Get(key)
	if !found {
		c.misses.Add(1)
		return "", false
	}
	text, ok := val.(string)
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return text, true
}

// Set stores text under key; a zero ttl uses the cache default
func (c *MemoryCache) Set(key string, text string, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, text, ttl)
}

// Delete removes key
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes every entry
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Stats returns hit/miss counters and the current entry count
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.ItemCount(),
	}
}
