// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Addr         string
	DatabasePath string

	CatalogBaseURL      string
	CatalogClientID     string
	CatalogClientSecret string
	CatalogTokenURL     string
	CatalogTimeout      time.Duration

	FeedCacheTTL    time.Duration
	RefreshInterval time.Duration
	RefreshWorkers  int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	baseURL := os.Getenv("CATALOG_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("CATALOG_BASE_URL is required")
	}

	cfg := &Config{
		Addr:                ":8080",
		DatabasePath:        "./data/mixfeed.db",
		CatalogBaseURL:      baseURL,
		CatalogClientID:     os.Getenv("CATALOG_CLIENT_ID"),
		CatalogClientSecret: os.Getenv("CATALOG_CLIENT_SECRET"),
		CatalogTokenURL:     os.Getenv("CATALOG_TOKEN_URL"),
		CatalogTimeout:      8 * time.Second,
		FeedCacheTTL:        2 * time.Minute,
		RefreshInterval:     time.Minute,
		RefreshWorkers:      2,
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		cfg.DatabasePath = path
	}

	var err error
	if cfg.CatalogTimeout, err = durationEnv("CATALOG_TIMEOUT", cfg.CatalogTimeout); err != nil {
		return nil, err
	}
	if cfg.FeedCacheTTL, err = durationEnv("FEED_CACHE_TTL", cfg.FeedCacheTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = durationEnv("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return nil, err
	}

	if raw := os.Getenv("REFRESH_WORKERS"); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil || workers < 1 {
			return nil, fmt.Errorf("invalid REFRESH_WORKERS %q", raw)
		}
		cfg.RefreshWorkers = workers
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return d, nil
}
