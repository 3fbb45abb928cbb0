// Package profile resolves user ids to display names, caching results so
// the messaging platform's API is not hit for every rendered message.
package profile

import (
	"context"
	"sync"
	"time"
)

// Fetcher retrieves a display name from the messaging platform.
type Fetcher func(ctx context.Context, userID string) (string, error)

const defaultTTL = 10 * time.Minute

type entry struct {
	name    string
	expires time.Time
}

// Cache is a TTL cache in front of a Fetcher. Safe for concurrent use.
type Cache struct {
	fetch Fetcher
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// NewCache wraps fetch with a 10 minute cache.
func NewCache(fetch Fetcher) *Cache {
	return &Cache{
		fetch:   fetch,
		ttl:     defaultTTL,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// DisplayName returns the cached name or fetches a fresh one. Errors are not
// cached; the next call retries.
func (c *Cache) DisplayName(ctx context.Context, userID string) (string, error) {
	c.mu.Lock()
	ent, ok := c.entries[userID]
	c.mu.Unlock()
	if ok && c.now().Before(ent.expires) {
		return ent.name, nil
	}

	name, err := c.fetch(ctx, userID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[userID] = entry{name: name, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return name, nil
}
