package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry is a resolved display name and when it was fetched.
type cacheEntry struct {
	name  string
	built time.Time
}

// CachedResolver memoises display names for a TTL.
// Concurrent lookups of the same key share a single call to the wrapped resolver.
// Failures are never cached.
type CachedResolver struct {
	next Resolver
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	sf      singleflight.Group
}

// NewCachedResolver wraps next. A ttl of zero disables caching and returns next unchanged.
func NewCachedResolver(next Resolver, ttl time.Duration) Resolver {
	if ttl <= 0 {
		return next
	}
	return &CachedResolver{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedResolver) lookup(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.built) > c.ttl {
		return "", false
	}
	return entry.name, true
}

// Resolve returns the cached name for key or asks the wrapped resolver.
func (c *CachedResolver) Resolve(ctx context.Context, key string) (string, error) {
	if name, ok := c.lookup(key); ok {
		return name, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have filled the entry while we waited
		if name, ok := c.lookup(key); ok {
			return name, nil
		}

		name, err := c.next.Resolve(ctx, key)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{name: name, built: c.now()}
		c.mu.Unlock()

		return name, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// Invalidate drops every cached name.
func (c *CachedResolver) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of cached names, including expired ones.
func (c *CachedResolver) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
