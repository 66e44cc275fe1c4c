// Package memo provides the in-memory memoization cache for nested
// computations. Keys typically embed a tracked route handle, so the
// route's collapsing of no-op frames directly controls the hit rate.
package memo

import "sync"

// Cache maps comparable keys to computed values.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	hits    int64
	misses  int64
}

// New returns an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get looks up a key and counts the outcome.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put stores the value for a key, replacing any previous entry.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = v
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the lookup counters.
func (c *Cache[K, V]) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
