package cache

import (
	"sync"
	"time"
)

// Cache is the in-memory memoization layer for aggregate results. It is a
// plain performance optimization: dropping every entry changes latency, not
// correctness, because aggregates are recomputed from the event log. Entries
// expire at their TTL and are never invalidated by new tracked views.
//
// The cache is passed around as an explicit handle; there is no package
// global.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowFn   func() time.Time
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// New creates a cache and starts a background janitor that sweeps expired
// entries once a minute.
func New() *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		nowFn:   time.Now,
	}

	go func() {
		for {
			time.Sleep(time.Minute)
			c.DeleteExpired()
		}
	}()

	return c
}

// Set stores value under key for the given duration.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.nowFn().Add(ttl),
	}
}

// Get returns the value for key and whether a live entry was found. Expired
// entries read as missing even before the janitor removes them.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.nowFn().After(e.expiresAt) {
		return nil, false
	}

	return e.value, true
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteExpired removes every expired entry.
func (c *Cache) DeleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFn()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
