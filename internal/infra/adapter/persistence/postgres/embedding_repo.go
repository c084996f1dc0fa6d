package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/repository"
)

const (
	searchTimeout      = 5 * time.Second
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

const (
	upsertEmbeddingSQL = `
INSERT INTO analysis_embeddings (analysis_id, model, dimension, embedding, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (analysis_id, model) DO UPDATE
   SET dimension = EXCLUDED.dimension,
       embedding = EXCLUDED.embedding,
       updated_at = NOW()
RETURNING id, created_at, updated_at`

	findEmbeddingSQL = `
SELECT id, analysis_id, model, dimension, embedding, created_at, updated_at
FROM analysis_embeddings
WHERE analysis_id = $1 AND model = $2`

	// Cosine distance (<=>) so the ivfflat vector_cosine_ops index applies.
	nearestSQL = `
SELECT analysis_id, 1 - (embedding <=> $1) AS similarity
FROM analysis_embeddings
WHERE model = $2 AND analysis_id <> $3
ORDER BY embedding <=> $1
LIMIT $4`
)

// EmbeddingRepo stores analysis vectors in the pgvector backed
// analysis_embeddings table.
type EmbeddingRepo struct {
	db Querier
}

var _ repository.AnalysisEmbeddingRepository = (*EmbeddingRepo)(nil)

func NewEmbeddingRepo(db Querier) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

func (r *EmbeddingRepo) Upsert(ctx context.Context, e *entity.AnalysisEmbedding) error {
	if e == nil {
		return errors.New("upsert embedding: nil embedding")
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}

	start := time.Now()
	err := r.db.QueryRowContext(ctx, upsertEmbeddingSQL,
		e.AnalysisID, e.Model, e.Dimension, pgvector.NewVector(e.Embedding),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	metrics.RecordDBQuery("embeddings_upsert", time.Since(start))
	if err != nil {
		return fmt.Errorf("upsert embedding %s: %w", e.AnalysisID, err)
	}
	return nil
}

// FindByAnalysisID returns (nil, nil) when the analysis has no vector for
// model yet.
func (r *EmbeddingRepo) FindByAnalysisID(ctx context.Context, analysisID, model string) (*entity.AnalysisEmbedding, error) {
	var (
		e   entity.AnalysisEmbedding
		vec pgvector.Vector
	)
	start := time.Now()
	err := r.db.QueryRowContext(ctx, findEmbeddingSQL, analysisID, model).
		Scan(&e.ID, &e.AnalysisID, &e.Model, &e.Dimension, &vec, &e.CreatedAt, &e.UpdatedAt)
	metrics.RecordDBQuery("embeddings_get", time.Since(start))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("find embedding %s: %w", analysisID, err)
	}
	e.Embedding = vec.Slice()
	return &e, nil
}

// SearchSimilar ranks the other analyses embedded with model by cosine
// similarity to vec. limit <= 0 means 10; larger values are capped at 100.
func (r *EmbeddingRepo) SearchSimilar(ctx context.Context, vec []float32, model, excludeID string, limit int) ([]repository.SimilarAnalysis, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("embeddings_search", time.Since(start)) }()

	rows, err := r.db.QueryContext(ctx, nearestSQL, pgvector.NewVector(vec), model, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []repository.SimilarAnalysis
	for rows.Next() {
		var s repository.SimilarAnalysis
		if err := rows.Scan(&s.AnalysisID, &s.Similarity); err != nil {
			return nil, fmt.Errorf("search similar: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	return out, nil
}
