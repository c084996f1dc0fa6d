package repository

import (
	"context"
	"time"

	"literary-analysis/internal/domain/entity"
)

// AnalysisFilters contains optional filters for listing analyses.
type AnalysisFilters struct {
	SourceType *entity.SourceType // Optional: only this source type
	Mode       *entity.Mode       // Optional: only this mode
	Keyword    *string            // Optional: exact match against the extracted keywords
}

// IsEmpty reports whether no filter is set.
func (f AnalysisFilters) IsEmpty() bool {
	return f.SourceType == nil && f.Mode == nil && f.Keyword == nil
}

// AnalysisRepository is the storage contract for analysis records.
// Writes are append-only; records are never updated in place.
type AnalysisRepository interface {
	// Create inserts a new record. ID and CreatedAt must already be set.
	Create(ctx context.Context, analysis *entity.Analysis) error
	// Get returns the record with id, or (nil, nil) when it does not exist.
	Get(ctx context.Context, id string) (*entity.Analysis, error)
	// List returns records matching filters ordered by created_at DESC.
	// Parameters:
	//   - limit: Maximum number of rows to return
	//   - offset: Number of rows to skip
	List(ctx context.Context, filters AnalysisFilters, limit, offset int) ([]*entity.Analysis, error)
	// Count returns the number of records matching filters.
	Count(ctx context.Context, filters AnalysisFilters) (int64, error)
	// DeleteOlderThan removes records created before cutoff and returns how
	// many were deleted. Used by the retention job only.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
