package cache

import (
	"sync"
	"time"
)

// DefaultTTL bounds how long a cached market-data entry stays fresh.
const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a mutex-guarded in-memory TTL cache for market data keyed by
// ticker and window. Instances are constructed where needed and passed
// explicitly; there is no package-level singleton.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[V]
	enabled bool
}

// New creates a cache with the given TTL. A disabled cache stores
// nothing and always misses, so callers never need to branch on
// configuration.
func New[V any](ttl time.Duration, enabled bool) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		enabled: enabled,
	}
}

// Get returns the value stored under key when present and still fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.enabled {
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if time.Since(e.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: time.Now()}
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}
