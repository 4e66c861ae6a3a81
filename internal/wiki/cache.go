package wiki

import "sync"

// defaultCacheUsers bounds how many users' latest search results are
// retained for detail lookups.
const defaultCacheUsers = 3

// ResultCache remembers each user's most recent search results so a
// follow-up details command can reference them by position. Capacity is
// counted in users; when full, the user whose slot was created first is
// evicted, regardless of how recently their results were read.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	results  map[string][]Result
}

// NewResultCache creates a ResultCache holding results for up to capacity
// users. Capacity below 1 falls back to the default of 3.
func NewResultCache(capacity int) *ResultCache {
	if capacity < 1 {
		capacity = defaultCacheUsers
	}
	return &ResultCache{
		capacity: capacity,
		results:  make(map[string][]Result),
	}
}

// Put replaces the user's cached results. Re-storing for a known user
// keeps their original eviction position.
func (c *ResultCache) Put(user string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, known := c.results[user]; !known {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.results, oldest)
		}
		c.order = append(c.order, user)
	}
	c.results[user] = results
}

// Get returns the user's cached results, or false if they have none.
func (c *ResultCache) Get(user string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	results, ok := c.results[user]
	return results, ok
}

// At returns the user's n-th cached result (1-based), or false when the
// user has no results or n is out of range.
func (c *ResultCache) At(user string, n int) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	results, ok := c.results[user]
	if !ok || n < 1 || n > len(results) {
		return Result{}, false
	}
	return results[n-1], true
}
