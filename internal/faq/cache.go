package faq

import (
	"slices"
	"sync"
	"time"
)

// tagKey identifies one cached AllTags projection.
type tagKey struct {
	limit  int
	offset int
}

type cachedTags struct {
	tags    []string
	expires time.Time
}

// tagCache caches AllTags projections per (limit, offset) key with a fixed
// TTL. Invalidation is expiry-based only: writes do not clear the cache, so
// a freshly mutated store may serve a stale tag list for up to one TTL.
// That staleness window is an accepted, documented trade-off; set the TTL
// to zero to disable caching entirely.
type tagCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	entries map[tagKey]cachedTags
}

func newTagCache(ttl time.Duration) *tagCache {
	return &tagCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[tagKey]cachedTags),
	}
}

// get returns the cached projection for key, or false if absent or expired.
func (c *tagCache) get(key tagKey) ([]string, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	// Callers may hold the result across mutations; never hand out the
	// cached backing array.
	return slices.Clone(e.tags), true
}

// put stores a projection under key with a fresh expiry.
func (c *tagCache) put(key tagKey, tags []string) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedTags{tags: slices.Clone(tags), expires: c.now().Add(c.ttl)}
}
