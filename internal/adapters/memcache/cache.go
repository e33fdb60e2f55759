// Package memcache is the in-process feed cache backend.
package memcache

import (
	"sync"

	"github.com/avelar-labs/mixfeed/internal/core/domain"
	"github.com/avelar-labs/mixfeed/internal/core/ports"
)

// Cache maps user ids to their last assembled feed entry. Entries are
// treated as read-only after Set; the generator builds a fresh entry per
// regeneration. There is no eviction beyond overwrite-on-regeneration.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]domain.FeedEntry
}

var _ ports.FeedCache = (*Cache)(nil)

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[int64]domain.FeedEntry)}
}

// Get returns the stored entry for the user, expired or not. TTL policy is
// the generator's concern.
func (c *Cache) Get(userID int64) (domain.FeedEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[userID]
	return entry, ok
}

// Set overwrites the user's entry. Concurrent regenerations for the same
// user are last-write-wins.
func (c *Cache) Set(userID int64, entry domain.FeedEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry
}

// Len reports the number of cached users.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
