package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/repository"

	"github.com/lib/pq"
)

const analysisColumns = `id, created_at, source_type, raw_input_hash, url, filename,
       extracted_text, mode, model_version, result`

// Querier is the subset of *sql.DB the repositories use. The API passes a
// circuit breaker wrapped connection; the worker passes the pool directly.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AnalysisRepo is the PostgreSQL AnalysisRepository.
type AnalysisRepo struct {
	db           Querier
	queryBuilder *AnalysisQueryBuilder
}

func NewAnalysisRepo(db Querier) repository.AnalysisRepository {
	return &AnalysisRepo{
		db:           db,
		queryBuilder: NewAnalysisQueryBuilder(),
	}
}

func (repo *AnalysisRepo) Create(ctx context.Context, a *entity.Analysis) error {
	if a == nil {
		return fmt.Errorf("Create: analysis is nil")
	}
	result, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("Create: marshal result: %w", err)
	}

	keywords := make([]string, 0, len(a.Result.Keywords))
	for _, k := range a.Result.Keywords {
		keywords = append(keywords, strings.ToLower(k))
	}

	const query = `
INSERT INTO analyses (id, created_at, source_type, raw_input_hash, url, filename,
                      extracted_text, mode, model_version, keywords, result)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	start := time.Now()
	_, err = repo.db.ExecContext(ctx, query,
		a.ID, a.CreatedAt, string(a.SourceType),
		nullString(a.RawInputHash), nullString(a.URL), nullString(a.Filename),
		nullString(a.ExtractedText), string(a.Mode), nullString(a.ModelVersion),
		pq.Array(keywords), result,
	)
	metrics.RecordDBQuery("analyses_insert", time.Since(start))
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *AnalysisRepo) Get(ctx context.Context, id string) (*entity.Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE id = $1
LIMIT 1`

	start := time.Now()
	a, err := scanAnalysis(repo.db.QueryRowContext(ctx, query, id))
	metrics.RecordDBQuery("analyses_get", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *AnalysisRepo) List(ctx context.Context, filters repository.AnalysisFilters, limit, offset int) ([]*entity.Analysis, error) {
	where, args := repo.queryBuilder.BuildWhereClause(filters, "")
	next := len(args) + 1

	query := fmt.Sprintf(`
SELECT %s
FROM analyses
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, analysisColumns, where, next, next+1)
	args = append(args, limit, offset)

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	analyses := make([]*entity.Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		analyses = append(analyses, a)
	}
	metrics.RecordDBQuery("analyses_list", time.Since(start))
	return analyses, rows.Err()
}

func (repo *AnalysisRepo) Count(ctx context.Context, filters repository.AnalysisFilters) (int64, error) {
	where, args := repo.queryBuilder.BuildWhereClause(filters, "")
	query := "SELECT COUNT(*) FROM analyses " + where

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *AnalysisRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM analyses WHERE created_at < $1`

	start := time.Now()
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	metrics.RecordDBQuery("analyses_purge", time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: RowsAffected: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*entity.Analysis, error) {
	var (
		a                                       entity.Analysis
		sourceType, mode                        string
		hash, url, filename, text, modelVersion sql.NullString
		result                                  []byte
	)
	if err := row.Scan(&a.ID, &a.CreatedAt, &sourceType, &hash, &url, &filename,
		&text, &mode, &modelVersion, &result); err != nil {
		return nil, err
	}
	a.SourceType = entity.SourceType(sourceType)
	a.Mode = entity.Mode(mode)
	a.RawInputHash = hash.String
	a.URL = url.String
	a.Filename = filename.String
	a.ExtractedText = text.String
	a.ModelVersion = modelVersion.String
	if len(result) > 0 {
		if err := json.Unmarshal(result, &a.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
