package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Migration is one schema step. Its statements run in a single
// transaction and the version is recorded in schema_migrations, so a step
// runs at most once per database.
type Migration struct {
	Version int
	Name    string
	Stmts   []string
}

// CoreVersion is the schema version the API and the worker need.
const CoreVersion = 2

// Keys pg_advisory_xact_lock; every migrating process uses the same one.
const migrationLock = 0x6c6974

var coreMigrations = []Migration{
	{
		Version: 1,
		Name:    "analyses",
		Stmts: []string{
			`CREATE TABLE IF NOT EXISTS analyses (
    id              UUID PRIMARY KEY,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    source_type     VARCHAR(10) NOT NULL,
    raw_input_hash  CHAR(64),
    url             TEXT,
    filename        TEXT,
    extracted_text  TEXT,
    mode            VARCHAR(10) NOT NULL DEFAULT 'fast',
    model_version   TEXT,
    keywords        TEXT[] NOT NULL DEFAULT '{}',
    result          JSONB NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_analyses_source_type ON analyses (source_type)`,
			`CREATE INDEX IF NOT EXISTS idx_analyses_keywords_gin ON analyses USING gin (keywords)`,
		},
	},
	{
		Version: 2,
		Name:    "analyses source_type check",
		Stmts: []string{
			`ALTER TABLE analyses ADD CONSTRAINT chk_analyses_source_type
    CHECK (source_type IN ('text', 'url', 'image'))`,
		},
	},
}

// embeddingsVersion is kept apart from the core range: the step exists only
// where embeddings are enabled.
const embeddingsVersion = 100

// EmbeddingsMigration creates the pgvector table. The vector width is fixed
// by the first run; a later change of dimension needs a new migration.
func EmbeddingsMigration(dimension int) (Migration, error) {
	if dimension <= 0 {
		return Migration{}, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}
	return Migration{
		Version: embeddingsVersion,
		Name:    fmt.Sprintf("analysis_embeddings vector(%d)", dimension),
		Stmts: []string{
			`CREATE EXTENSION IF NOT EXISTS vector`,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS analysis_embeddings (
    id           BIGSERIAL PRIMARY KEY,
    analysis_id  UUID NOT NULL REFERENCES analyses (id) ON DELETE CASCADE,
    model        VARCHAR(100) NOT NULL,
    dimension    INT NOT NULL,
    embedding    vector(%d) NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (analysis_id, model)
)`, dimension),
			`CREATE INDEX IF NOT EXISTS idx_analysis_embeddings_vector
    ON analysis_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		},
	}, nil
}

const createSchemaTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version     INT PRIMARY KEY,
    name        TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// MigrateUp applies the core migrations.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	return Migrate(ctx, db, coreMigrations...)
}

// MigrateEmbeddings applies the pgvector migration for dimension.
func MigrateEmbeddings(ctx context.Context, db *sql.DB, dimension int) error {
	m, err := EmbeddingsMigration(dimension)
	if err != nil {
		return err
	}
	return Migrate(ctx, db, m)
}

// Migrate applies the migrations not yet recorded, in the order given.
// Concurrent callers serialize on an advisory lock.
func Migrate(ctx context.Context, db *sql.DB, migrations ...Migration) error {
	if _, err := db.ExecContext(ctx, createSchemaTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range migrations {
		applied, err := apply(ctx, db, m)
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if applied {
			slog.InfoContext(ctx, "migration applied",
				slog.Int("version", m.Version),
				slog.String("name", m.Name))
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) (applied bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLock); err != nil {
		return false, err
	}
	var done bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&done)
	if err != nil {
		return false, err
	}
	if done {
		return false, tx.Commit()
	}

	for _, stmt := range m.Stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return false, err
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// SchemaVersion returns the highest core version applied, or 0 on a fresh
// database.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations WHERE version < $1`, embeddingsVersion).Scan(&v)
	return v, err
}

// ErrSchemaNotReady is returned by WaitForSchema when the wanted version
// did not appear in time.
var ErrSchemaNotReady = errors.New("database schema not ready")

// WaitForSchema polls until the core schema reaches want. Processes that do
// not migrate use it to start after the API has.
func WaitForSchema(ctx context.Context, db *sql.DB, want int, every time.Duration, attempts int) error {
	for i := 1; ; i++ {
		v, err := SchemaVersion(ctx, db)
		if err == nil && v >= want {
			return nil
		}
		if i >= attempts {
			return fmt.Errorf("%w: have %d, want %d", ErrSchemaNotReady, v, want)
		}
		slog.InfoContext(ctx, "waiting for database schema",
			slog.Int("have", v),
			slog.Int("want", want),
			slog.Int("attempt", i))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(every):
		}
	}
}
