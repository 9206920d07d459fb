// Package cache holds disposable read-through caches. The store is always
// the source of truth; every entry here may be dropped at any time.
package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lifexp-app/lifexp/internal/domain"
)

// ProfileCache caches derived profiles by user ID.
type ProfileCache interface {
	// Get returns the cached profile, if present and fresh.
	Get(userID string) (domain.Profile, bool)

	// Generation returns the user's invalidation counter. Read it before
	// loading a profile from the store and hand it back to Put.
	Generation(userID string) uint64

	// Put stores a profile read from the store, unless the user was
	// invalidated since gen was taken. It reports whether the entry was kept.
	Put(p domain.Profile, gen uint64) bool

	// Invalidate drops a user's entry and advances its generation. Called
	// after every write to that user.
	Invalidate(userID string)

	// Purge drops everything.
	Purge()
}

type profileEntry struct {
	profile  domain.Profile
	storedAt time.Time
}

// InMemoryProfileCache is a TTL-bounded, mutex-guarded ProfileCache.
type InMemoryProfileCache struct {
	mu      sync.RWMutex
	entries map[string]profileEntry
	gens    map[string]uint64
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

var _ ProfileCache = (*InMemoryProfileCache)(nil)

// NewInMemoryProfileCache creates an empty cache. A ttl <= 0 keeps entries
// until they are invalidated.
func NewInMemoryProfileCache(ttl time.Duration, logger *slog.Logger) *InMemoryProfileCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryProfileCache{
		entries: make(map[string]profileEntry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

func (c *InMemoryProfileCache) Get(userID string) (domain.Profile, bool) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return domain.Profile{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		if cur, ok := c.entries[userID]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		return domain.Profile{}, false
	}
	return e.profile, true
}

func (c *InMemoryProfileCache) Generation(userID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[userID]
}

func (c *InMemoryProfileCache) Put(p domain.Profile, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[p.ID] != gen {
		c.logger.Debug("dropping stale profile", "user", p.ID, "gen", gen, "current", c.gens[p.ID])
		return false
	}
	c.entries[p.ID] = profileEntry{profile: p, storedAt: c.now()}
	return true
}

func (c *InMemoryProfileCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.gens[userID]++
	c.mu.Unlock()
}

func (c *InMemoryProfileCache) Purge() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]profileEntry)
	c.mu.Unlock()
	c.logger.Debug("profile cache purged", "entries", n)
}

// Len reports the number of cached profiles.
func (c *InMemoryProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
