// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a small in-memory result cache with per-entry TTL
// and a capacity cap. It is constructed explicitly and injected into the
// component that needs it; there is no package-level instance.
package cache

import (
	"sync"
	"time"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

type entry struct {
	sources []types.CandidateSource
	added   time.Time
}

// Cache stores aggregation results keyed by an arbitrary string. When the
// capacity cap is reached the oldest-inserted entry is evicted (insertion
// order, not recency of use).
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string
	capacity int
	ttl      time.Duration

	// now is the clock; tests substitute it.
	now func() time.Time
}

// New returns a cache holding at most capacity entries, each fresh for ttl.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached sources for key, or false when the key is absent
// or the entry has expired. Expired entries are removed on access.
func (c *Cache) Get(key string) ([]types.CandidateSource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.added) > c.ttl {
		c.removeLocked(key)
		return nil, false
	}
	return e.sources, true
}

// Put stores sources under key, evicting the oldest-inserted entry when the
// cache is at capacity. Re-putting an existing key refreshes its value and
// timestamp but keeps its original insertion position.
func (c *Cache) Put(key string, sources []types.CandidateSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if c.capacity > 0 && len(c.order) >= c.capacity {
			c.removeLocked(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{sources: sources, added: c.now()}
}

// Len returns the number of entries currently stored, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
