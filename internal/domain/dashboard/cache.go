package dashboard

import (
	"sync"
	"time"
)

type cacheEntry struct {
	summary   *Summary
	expiresAt time.Time
}

// cache holds one summary per user until it expires or is invalidated.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

func (c *cache) get(userID string) (*Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.summary, true
}

func (c *cache) put(userID string, s *Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cacheEntry{summary: s, expiresAt: c.now().Add(c.ttl)}
}

func (c *cache) delete(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
