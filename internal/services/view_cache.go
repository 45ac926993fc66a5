package services

import (
	"sync"
	"sync/atomic"

	"todo-list/backend/internal/models"
)

const defaultViewCacheSize = 64

type viewKey struct {
	filter  FilterKey
	keyword string
	order   SortOrder
}

// ViewCache memoises derived views for one store version. Any lookup with
// a newer version drops every entry.
type ViewCache struct {
	mu         sync.Mutex
	version    uint64
	entries    map[viewKey][]models.Task
	maxEntries int

	hits   int64
	misses int64
}

func NewViewCache(maxEntries int) *ViewCache {
	if maxEntries <= 0 {
		maxEntries = defaultViewCacheSize
	}
	return &ViewCache{
		entries:    make(map[viewKey][]models.Task),
		maxEntries: maxEntries,
	}
}

func (c *ViewCache) Get(version uint64, filter FilterKey, keyword string, order SortOrder) ([]models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version > c.version {
		c.reset(version)
	}
	view, ok := c.entries[viewKey{filter, keyword, order}]
	if !ok || version != c.version {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return append([]models.Task(nil), view...), true
}

func (c *ViewCache) Put(version uint64, filter FilterKey, keyword string, order SortOrder, view []models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version < c.version {
		return
	}
	if version != c.version || len(c.entries) >= c.maxEntries {
		c.reset(version)
	}
	c.entries[viewKey{filter, keyword, order}] = append([]models.Task(nil), view...)
}

func (c *ViewCache) reset(version uint64) {
	c.version = version
	c.entries = make(map[viewKey][]models.Task)
}

func (c *ViewCache) Stats() map[string]interface{} {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	return map[string]interface{}{
		"entries": size,
		"hits":    atomic.LoadInt64(&c.hits),
		"misses":  atomic.LoadInt64(&c.misses),
	}
}
