package analysis

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a concurrency-safe LRU of snapshots keyed by dataset generation and filter fingerprint
type Cache struct {
	entries *lru.Cache[string, *Snapshot]
}

// NewCache creates a cache holding at most capacity snapshots (minimum 1)
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	// lru.New only fails for a non-positive size
	entries, _ := lru.New[string, *Snapshot](capacity)
	return &Cache{entries: entries}
}

// Get returns the cached snapshot and marks it recently used
func (c *Cache) Get(key string) (*Snapshot, bool) {
	return c.entries.Get(key)
}

// Put stores a snapshot, evicting the least recently used entry when full
func (c *Cache) Put(key string, snapshot *Snapshot) {
	c.entries.Add(key, snapshot)
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached snapshots
func (c *Cache) Len() int {
	return c.entries.Len()
}
