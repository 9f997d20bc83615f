// Package config centralizes the tuning constants used across the
// ingestion core so that no component reaches for an environment variable
// or a magic number directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is injected into every component that needs tuning. Defaults match
// the congress.gov ingestion design: 750ms between requests, 3 retries with
// a 10s initial backoff, a 5-failure circuit breaker, batches of 50.
type Config struct {
	CongressAPIKey string
	DatabaseURL    string
	SyncAuthToken  string // optional shared secret for manual trigger endpoints

	BatchSize            int
	InterRequestDelay    time.Duration
	MaxRetries           int
	InitialBackoff       time.Duration
	ConsecutiveFailLimit int

	IncrementalLookbackHours int
	FullLookbackDays         int
	IncrementalStaggerMs     int
	FullStaggerMs            int

	RepairPageSize   int
	BackfillPageSize int
	TopN             int

	NextPageDelay time.Duration // gap before scheduling the next page of a chain
	RepairDelay   time.Duration
	BackfillDelay time.Duration

	DailyStatsRecomputeHour int // UTC hour the scheduler recomputes stats for every congress with data

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// Default returns the canonical tuning values from the ingestion design.
func Default() Config {
	return Config{
		BatchSize:            50,
		InterRequestDelay:    750 * time.Millisecond,
		MaxRetries:           3,
		InitialBackoff:       10 * time.Second,
		ConsecutiveFailLimit: 5,

		IncrementalLookbackHours: 26,
		FullLookbackDays:         7,
		IncrementalStaggerMs:     2 * 60 * 1000,
		FullStaggerMs:            10 * 60 * 1000,

		RepairPageSize:   20,
		BackfillPageSize: 200,
		TopN:             10,

		NextPageDelay: 5 * time.Second,
		RepairDelay:   10 * time.Second,
		BackfillDelay: 2 * time.Second,

		DailyStatsRecomputeHour: 4,

		DBMaxOpenConns:    25,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 5 * time.Minute,
	}
}

// FromEnv loads configuration from the environment on top of Default,
// following the teacher's pattern of os.Getenv with fallback defaults.
// CONGRESS_API_KEY and DATABASE_URL are required; everything else is
// optional.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.CongressAPIKey = os.Getenv("CONGRESS_API_KEY")
	if cfg.CongressAPIKey == "" {
		return cfg, fmt.Errorf("config: CONGRESS_API_KEY environment variable is required")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("config: DATABASE_URL environment variable is required")
	}

	cfg.SyncAuthToken = os.Getenv("SYNC_AUTH_TOKEN")

	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("INTER_REQUEST_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.InterRequestDelay = d
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	return cfg, nil
}
