package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/contribhub/contrib-insights/internal/analysis"
	"github.com/contribhub/contrib-insights/internal/api"
	"github.com/contribhub/contrib-insights/internal/config"
	"github.com/contribhub/contrib-insights/internal/db"
	"github.com/contribhub/contrib-insights/internal/github"
	"github.com/contribhub/contrib-insights/internal/live"
	"github.com/contribhub/contrib-insights/internal/token"

	_ "github.com/contribhub/contrib-insights/docs"
)

// @title Contribution Insights API
// @version 1.0
// @description GitHub contribution analysis for project repository links
// @host localhost:8080
// @BasePath /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DBConnectionString == "" {
		logger.Fatal("Missing required configuration (DB_CONNECTION_STRING must be set)")
	}

	store, err := db.NewPostgresStore(cfg.DBConnectionString)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	if err := retry(3, 5*time.Second, store.Migrate); err != nil {
		logger.Fatalf("Failed to run migrations after retries: %v", err)
	}

	tokens, err := token.NewOAuthProvider(cfg.OAuthClientID, cfg.OAuthClientSecret, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize token provider: %v", err)
	}

	// One process-wide diff-stat cache shared by every per-request client.
	statsCache := github.NewStatsCache(cfg.GitHub.StatsCache.MaxEntries, cfg.GitHub.StatsCache.TTL)
	newClient := func(accessToken, fullName string) *github.Client {
		return github.NewClient(accessToken, fullName, logger, cfg.GitHub, github.WithStatsCache(statsCache))
	}

	analysisService := analysis.NewService(store, tokens,
		func(accessToken, fullName string) analysis.RepoFetcher { return newClient(accessToken, fullName) },
		logger, cfg.Analysis, cfg.GitHub)
	liveService := live.NewService(store, tokens,
		func(accessToken, fullName string) live.Fetcher { return newClient(accessToken, fullName) },
		logger, cfg.Analysis, cfg.GitHub)

	handler := api.NewHandler(analysisService, liveService, store, logger)
	router := api.SetupRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server exited properly")
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
