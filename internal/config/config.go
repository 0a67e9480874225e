package config

import (
	"os"
	"strconv"
)

// Config holds the top-level service configuration, loaded from environment
// variables.
type Config struct {
	Port               string
	DBConnectionString string
	GitHub             *GitHubConfig
	Analysis           *AnalysisConfig
	OAuthClientID      string
	OAuthClientSecret  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		GitHub:             DefaultGitHubConfig(),
		Analysis:           DefaultAnalysisConfig(),
		OAuthClientID:      getEnv("GITHUB_OAUTH_CLIENT_ID", ""),
		OAuthClientSecret:  getEnv("GITHUB_OAUTH_CLIENT_SECRET", ""),
	}

	if base := getEnv("GITHUB_API_BASE_URL", ""); base != "" {
		cfg.GitHub.APIBaseURL = base
	}
	if days, err := strconv.Atoi(getEnv("ANALYSIS_LOOKBACK_DAYS", "")); err == nil && days > 0 {
		cfg.Analysis.FallbackLookbackDays = days
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
