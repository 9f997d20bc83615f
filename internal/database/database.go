// Package database wires up the Postgres-backed GORM connection the Store
// Writer and job queue sit on top of. Pool sizing is driven by the
// ingestion core's own internal/config.Config rather than a second,
// parallel set of env-tunable knobs.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/models"
)

// Config is what gorm.Open and the pool setters actually consume: a
// connection string plus pool limits. It is intentionally narrower than
// internal/config.Config, which also carries unrelated tuning (batch
// sizes, backoff, stagger) this package has no business seeing.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// DefaultConfig returns a Config with hardcoded pool defaults, used by
// tests and other call sites that don't carry a full app config.Config.
func DefaultConfig(url string) *Config {
	return &Config{
		URL:             url,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        logger.Warn,
	}
}

// ConfigFromApp derives a Config from the app's own tuning surface, so
// production entry points (cmd/ingestor, cmd/api) size the pool the same
// way they size everything else: through internal/config.Config.
func ConfigFromApp(url string, appCfg config.Config) *Config {
	return &Config{
		URL:             url,
		MaxOpenConns:    appCfg.DBMaxOpenConns,
		MaxIdleConns:    appCfg.DBMaxIdleConns,
		ConnMaxLifetime: appCfg.DBConnMaxLifetime,
		LogLevel:        logger.Warn,
	}
}

// Connect opens a GORM connection over cfg.URL and applies the pool
// limits to the underlying *sql.DB.
func Connect(cfg *Config) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database: DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database: failed to connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// Migrate runs auto-migration for all models and creates custom indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Bill{},
		&models.BillAction{},
		&models.BillSubject{},
		&models.BillSummary{},
		&models.BillText{},
		&models.SyncSnapshot{},
		&models.CongressStats{},
		&models.SummaryRevision{},
		&models.ScheduledJob{},
	); err != nil {
		return fmt.Errorf("database: auto-migration failed: %w", err)
	}

	// Create GIN indexes on the JSONB columns used for stats querying, plus
	// the job queue's (status, run_after) due-lookup index.
	// IF NOT EXISTS keeps this idempotent across restarts.
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_congress_stats_top_policy_areas_gin
			ON congress_stats USING GIN (top_policy_areas jsonb_path_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_congress_stats_top_sponsors_gin
			ON congress_stats USING GIN (top_sponsors jsonb_path_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_jobs_due
			ON scheduled_jobs (status, run_after)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("database: failed to create index: %w", err)
		}
	}

	return nil
}

// Close releases the pooled connections, for use in a deferred shutdown.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
