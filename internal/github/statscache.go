package github

import (
	"sync"
	"time"

	"github.com/contribhub/contrib-insights/internal/models"
)

type cacheEntry struct {
	stats     models.CommitStats
	expiresAt time.Time
}

// StatsCache is a bounded TTL cache for per-commit diff stats, keyed by
// repository and SHA. Diff stats are immutable upstream, so the TTL exists
// only to bound memory over long uptimes.
type StatsCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]cacheEntry
	order      []string
	now        func() time.Time
}

// NewStatsCache creates a cache holding at most maxEntries results for ttl.
func NewStatsCache(maxEntries int, ttl time.Duration) *StatsCache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &StatsCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
	}
}

func cacheKey(fullName, sha string) string {
	return fullName + "@" + sha
}

// Get returns the cached stats for a commit, if present and not expired.
func (c *StatsCache) Get(fullName, sha string) (models.CommitStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(fullName, sha)]
	if !ok || c.now().After(entry.expiresAt) {
		return models.CommitStats{}, false
	}
	return entry.stats, true
}

// Put stores the stats for a commit, evicting expired entries first and then
// the oldest insertions once the capacity bound is reached.
func (c *StatsCache) Put(fullName, sha string, stats models.CommitStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(fullName, sha)
	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxEntries {
			c.evictLocked()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{stats: stats, expiresAt: c.now().Add(c.ttl)}
}

// Len reports the number of live entries.
func (c *StatsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *StatsCache) evictLocked() {
	now := c.now()
	kept := c.order[:0]
	evicted := 0
	for _, key := range c.order {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept

	// Still full: drop the oldest insertion.
	if evicted == 0 && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}
