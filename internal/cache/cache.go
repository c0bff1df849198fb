// Package cache provides the process-local TTL cache backing the dashboard
// aggregator. Entries self-expire lazily on read; nothing is persisted.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value   interface{}
	expires time.Time
}

type Cache struct {
	mu    sync.RWMutex
	store map[string]entry
	now   func() time.Time
}

// New returns an empty cache. The clock is injected so expiry can be tested
// deterministically; pass time.Now in production wiring.
func New(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store: make(map[string]entry),
		now:   now,
	}
}

// Get returns the stored value while it is fresh. An expired entry is
// deleted on the spot and reported as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock: a Set may have raced in between.
		if cur, ok := c.store[key]; ok && !c.now().Before(cur.expires) {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set inserts or overwrites. Last write wins.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.store[key] = entry{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// ClearUser removes every entry belonging to the user. Keys are namespaced
// "<userID>:..." so a prefix match is sufficient.
func (c *Cache) ClearUser(userID string) {
	prefix := userID + ":"
	c.mu.Lock()
	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
		}
	}
	c.mu.Unlock()
}

// Prune sweeps out expired entries. Optional housekeeping; Get self-evicts,
// so correctness never depends on this being called.
func (c *Cache) Prune() {
	now := c.now()
	c.mu.Lock()
	for key, e := range c.store {
		if !now.Before(e.expires) {
			delete(c.store, key)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
