package config

import "time"

// GitHubConfig holds GitHub-specific configuration
type GitHubConfig struct {
	APIBaseURL string
	APIVersion string
	// Pagination ceilings bound worst-case latency per list call.
	CommitPageSize      int
	CommitPageLimit     int
	UserCommitPageLimit int
	BranchPageSize      int
	BranchPageLimit     int
	// Diff-stat fetching.
	StatsWorkers       int
	MaxDetailedCommits int
	RequestTimeout     time.Duration
	StatsCache         StatsCacheConfig
}

// StatsCacheConfig bounds the in-process commit diff-stat cache.
type StatsCacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

// DefaultGitHubConfig returns the default GitHub configuration
func DefaultGitHubConfig() *GitHubConfig {
	return &GitHubConfig{
		APIBaseURL:          "https://api.github.com",
		APIVersion:          "2022-11-28",
		CommitPageSize:      100,
		CommitPageLimit:     10,
		UserCommitPageLimit: 30,
		BranchPageSize:      100,
		BranchPageLimit:     5,
		StatsWorkers:        6,
		MaxDetailedCommits:  250,
		RequestTimeout:      30 * time.Second,
		StatsCache: StatsCacheConfig{
			MaxEntries: 10000,
			TTL:        12 * time.Hour,
		},
	}
}
