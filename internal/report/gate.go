package report

import (
	"sync"
	"time"
)

// Gate rate-limits submissions per user: one per cooldown window. The
// window length can change at runtime via the management commands.
type Gate struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewGate creates a Gate with the given cooldown window.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{
		cooldown: cooldown,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether the user may submit now, and if so records the
// submission time. A cooldown of zero or less lets everything through.
func (g *Gate) Allow(user string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.cooldown > 0 {
		if last, ok := g.last[user]; ok && now.Sub(last) < g.cooldown {
			return false
		}
	}
	g.last[user] = now
	return true
}

// Remaining returns how long until the user may submit again. Zero means
// they may submit now.
func (g *Gate) Remaining(user string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cooldown <= 0 {
		return 0
	}
	last, ok := g.last[user]
	if !ok {
		return 0
	}
	if remaining := g.cooldown - g.now().Sub(last); remaining > 0 {
		return remaining
	}
	return 0
}

// SetCooldown changes the window length. Existing timestamps keep their
// meaning under the new window.
func (g *Gate) SetCooldown(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cooldown = d
}

// Cooldown returns the current window length.
func (g *Gate) Cooldown() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cooldown
}

// Prune drops timestamps older than the cooldown window so the map does
// not grow with every user the bot has ever seen. Returns the number of
// entries removed.
func (g *Gate) Prune() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for user, last := range g.last {
		if g.cooldown <= 0 || now.Sub(last) >= g.cooldown {
			delete(g.last, user)
			removed++
		}
	}
	return removed
}
