package github

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contribhub/contrib-insights/internal/models"
)

func TestStatsCacheGetPut(t *testing.T) {
	cache := NewStatsCache(10, time.Hour)

	_, ok := cache.Get("acme/rocket", "s1")
	assert.False(t, ok)

	cache.Put("acme/rocket", "s1", models.CommitStats{Additions: 1, Deletions: 2})

	stats, ok := cache.Get("acme/rocket", "s1")
	require.True(t, ok)
	assert.Equal(t, models.CommitStats{Additions: 1, Deletions: 2}, stats)

	// Same SHA in another repository is a different entry.
	_, ok = cache.Get("acme/other", "s1")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())
}

func TestStatsCacheExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewStatsCache(10, time.Hour)
	cache.now = func() time.Time { return now }

	cache.Put("acme/rocket", "s1", models.CommitStats{Additions: 1})

	_, ok := cache.Get("acme/rocket", "s1")
	assert.True(t, ok)

	now = now.Add(time.Hour + time.Second)
	_, ok = cache.Get("acme/rocket", "s1")
	assert.False(t, ok)
}

func TestStatsCacheCapacityEviction(t *testing.T) {
	cache := NewStatsCache(3, time.Hour)

	for i := 0; i < 3; i++ {
		cache.Put("acme/rocket", fmt.Sprintf("s%d", i), models.CommitStats{Additions: i})
	}
	require.Equal(t, 3, cache.Len())

	// A fourth insert evicts the oldest entry.
	cache.Put("acme/rocket", "s3", models.CommitStats{Additions: 3})

	assert.Equal(t, 3, cache.Len())
	_, ok := cache.Get("acme/rocket", "s0")
	assert.False(t, ok, "oldest insertion evicted")
	_, ok = cache.Get("acme/rocket", "s3")
	assert.True(t, ok)
}

func TestStatsCachePrefersEvictingExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewStatsCache(2, time.Hour)
	cache.now = func() time.Time { return now }

	cache.Put("acme/rocket", "old", models.CommitStats{})
	now = now.Add(2 * time.Hour)
	cache.Put("acme/rocket", "fresh", models.CommitStats{})

	// Capacity is reached, but the expired entry goes first and the live one
	// survives.
	cache.Put("acme/rocket", "newest", models.CommitStats{})

	_, ok := cache.Get("acme/rocket", "fresh")
	assert.True(t, ok)
	_, ok = cache.Get("acme/rocket", "newest")
	assert.True(t, ok)
	_, ok = cache.Get("acme/rocket", "old")
	assert.False(t, ok)
}

func TestStatsCachePutOverwritesExisting(t *testing.T) {
	cache := NewStatsCache(10, time.Hour)

	cache.Put("acme/rocket", "s1", models.CommitStats{Additions: 1})
	cache.Put("acme/rocket", "s1", models.CommitStats{Additions: 9})

	stats, ok := cache.Get("acme/rocket", "s1")
	require.True(t, ok)
	assert.Equal(t, 9, stats.Additions)
	assert.Equal(t, 1, cache.Len())
}
