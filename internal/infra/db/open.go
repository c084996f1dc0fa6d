// Package db opens the PostgreSQL pool behind the analysis store and
// manages its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/resilience/retry"
	"literary-analysis/pkg/config"
)

var ErrMissingDSN = errors.New("DATABASE_URL not set")

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// LoadPoolConfig reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Values that are not
// positive keep the default.
func LoadPoolConfig() PoolConfig {
	cfg := DefaultPoolConfig()
	if n := config.GetEnvInt("DB_MAX_OPEN_CONNS", 0); n > 0 {
		cfg.MaxOpenConns = n
	}
	if n := config.GetEnvInt("DB_MAX_IDLE_CONNS", 0); n > 0 {
		cfg.MaxIdleConns = n
	}
	if d := config.GetEnvDuration("DB_CONN_MAX_LIFETIME", 0); d > 0 {
		cfg.ConnMaxLifetime = d
	}
	if d := config.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 0); d > 0 {
		cfg.ConnMaxIdleTime = d
	}
	return cfg
}

// startupRetry covers a database container that is still starting.
var startupRetry = retry.Config{
	MaxAttempts:    5,
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       5 * time.Second,
	Multiplier:     2,
	JitterFraction: 0.1,
}

// Open connects to DATABASE_URL with LoadPoolConfig applied.
func Open(ctx context.Context) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	return OpenDSN(ctx, dsn, LoadPoolConfig())
}

// OpenDSN opens a pgx pool and pings it, retrying refused connections.
func OpenDSN(ctx context.Context, dsn string, cfg PoolConfig) (*sql.DB, error) {
	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	err = retry.WithBackoff(ctx, startupRetry, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pool.PingContext(pingCtx)
	})
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "database connected",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime))
	return pool, nil
}

// ReportPoolStats publishes the pool's in-use and idle connection counts.
func ReportPoolStats(pool *sql.DB) {
	s := pool.Stats()
	metrics.UpdateDBConnections(s.InUse, s.Idle)
}
