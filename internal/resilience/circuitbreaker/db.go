package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBConfig returns the breaker configuration for the analysis database.
// Only failures to reach the server count: statement errors reported by
// PostgreSQL and cancelled requests leave the breaker alone.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
		IsSuccessful:     dbCallSucceeded,
	}
}

func dbCallSucceeded(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

// DBCircuitBreaker fronts a connection pool. Exec and Query calls fail fast
// with gobreaker.ErrOpenState while the database is unreachable.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// NewDBCircuitBreaker wraps db with the DBConfig breaker.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db with a breaker built from cfg.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(sql.Result), nil
}

func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(*sql.Rows), nil
}

// QueryRowContext goes straight to the pool: *sql.Row defers its error to
// Scan, so the breaker cannot observe the outcome.
func (d *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// StateName reports the breaker state as "closed", "half-open" or "open".
func (d *DBCircuitBreaker) StateName() string {
	return d.cb.State().String()
}

// IsOpen reports whether calls are currently rejected.
func (d *DBCircuitBreaker) IsOpen() bool {
	return d.cb.IsOpen()
}
