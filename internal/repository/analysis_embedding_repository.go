package repository

import (
	"context"

	"literary-analysis/internal/domain/entity"
)

// SimilarAnalysis represents the result of a similarity search.
// It contains the analysis ID and the similarity score (0.0 to 1.0).
type SimilarAnalysis struct {
	AnalysisID string
	Similarity float64
}

// AnalysisEmbeddingRepository defines the interface for managing analysis embeddings.
type AnalysisEmbeddingRepository interface {
	// Upsert creates a new embedding or updates an existing one.
	// It uses (analysis_id, model) as the unique key.
	Upsert(ctx context.Context, embedding *entity.AnalysisEmbedding) error

	// FindByAnalysisID retrieves the embedding of an analysis for a model,
	// or (nil, nil) when none exists.
	FindByAnalysisID(ctx context.Context, analysisID, model string) (*entity.AnalysisEmbedding, error)

	// SearchSimilar finds analyses whose embeddings are closest to embedding
	// by cosine similarity, excluding excludeID. Results are ordered by
	// similarity (highest first). limit defaults to 10 and is capped at 100.
	SearchSimilar(ctx context.Context, embedding []float32, model, excludeID string, limit int) ([]SimilarAnalysis, error)
}
