// Package cache provides the bounded TTL+LRU store used to memoize
// computed analyses. Process-scoped, injected explicitly; nothing reads
// it as a global.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLCache is a size-bounded cache with per-entry expiry and LRU
// eviction.
type TTLCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration

	hits   int64
	misses int64
}

type entry struct {
	key     string
	value   interface{}
	expires time.Time
}

// New creates a cache bounded to maxEntries with the given TTL.
func New(maxEntries int, ttl time.Duration) *TTLCache {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TTLCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get returns the value for key if present and unexpired.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e := elem.Value.(*entry)
	if time.Now().After(e.expires) {
		c.order.Remove(elem)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry at
// capacity.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
	for len(c.entries) >= c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
	elem := c.order.PushFront(&entry{key: key, value: value, expires: time.Now().Add(c.ttl)})
	c.entries[key] = elem
}

// Len reports the live entry count, expired entries included until
// their next lookup.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counts.
func (c *TTLCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
