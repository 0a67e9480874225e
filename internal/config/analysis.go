package config

// AnalysisConfig holds analysis pipeline configuration
type AnalysisConfig struct {
	// FallbackLookbackDays is the window used when no usable baseline
	// snapshot exists.
	FallbackLookbackDays int
	MaxSampleCommits     int
	RecentCommitLimit    int
	MyCommitsPageSize    int
}

// DefaultAnalysisConfig returns the default analysis configuration
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		FallbackLookbackDays: 90,
		MaxSampleCommits:     200,
		RecentCommitLimit:    10,
		MyCommitsPageSize:    30,
	}
}
