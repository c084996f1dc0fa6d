package entity

import (
	"fmt"
	"time"
)

// MaxEmbeddingDimension bounds vector size accepted by the store.
const MaxEmbeddingDimension = 4096

// AnalysisEmbedding is the vector representation of an analysis' text.
// (analysis_id, model) is unique.
type AnalysisEmbedding struct {
	ID         int64
	AnalysisID string
	Model      string
	Dimension  int
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the embedding before it is written.
func (e *AnalysisEmbedding) Validate() error {
	if e.AnalysisID == "" {
		return &ValidationError{Field: "analysis_id", Message: "analysis_id is required"}
	}
	if e.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if len(e.Embedding) == 0 {
		return &ValidationError{Field: "embedding", Message: "embedding is required"}
	}
	if len(e.Embedding) > MaxEmbeddingDimension {
		return &ValidationError{
			Field:   "embedding",
			Message: fmt.Sprintf("embedding dimension must be at most %d", MaxEmbeddingDimension),
		}
	}
	if e.Dimension != len(e.Embedding) {
		return &ValidationError{
			Field:   "dimension",
			Message: fmt.Sprintf("dimension must be %d, got %d", len(e.Embedding), e.Dimension),
		}
	}
	return nil
}
