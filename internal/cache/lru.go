// Package cache implements the in-process LRU cache backing the query bus.
// Entries carry a per-entry TTL; expired entries are dropped lazily on read
// and the least recently used entry is evicted when the cache is full.  The
// HTTP response cache is a separate concern and lives in Redis (see
// internal/middleware).
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// entry is a single cached value with its expiry.
type entry struct {
	key     string
	value   any
	expires time.Time
}

// LRU is a bounded, TTL-aware, last-recently-used cache.  All methods are
// safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List               // front = most recently used
	items    map[string]*list.Element // key -> element whose Value is *entry
	now      func() time.Time         // overridable for tests
}

// NewLRU returns an LRU holding at most capacity entries.  A capacity below
// one is raised to one.
func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

// Get returns the cached value for key.  Expired entries are removed and
// reported as absent.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	en := el.Value.(*entry)
	if c.now().After(en.expires) {
		c.ll.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.ll.MoveToFront(el)
	return en.value, true
}

// Set stores value under key for ttl.  An existing entry is replaced and its
// TTL reset.  When the cache is full the least recently used entry is
// evicted.  A non-positive ttl stores nothing.
func (c *LRU) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		en := el.Value.(*entry)
		en.value = value
		en.expires = c.now().Add(ttl)
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
	el := c.ll.PushFront(&entry{key: key, value: value, expires: c.now().Add(ttl)})
	c.items[key] = el
}

// Delete removes the entry for key if present.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// DeletePrefix removes every entry whose key starts with prefix.  Commands
// use this to invalidate all cached queries for a domain (e.g. "shows:").
func (c *LRU) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.ll.Remove(el)
			delete(c.items, key)
		}
	}
}

// Len reports the number of stored entries, including any not yet reaped
// expired ones.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
