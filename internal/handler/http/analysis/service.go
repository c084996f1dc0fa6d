package analysis

import (
	"context"

	"literary-analysis/internal/domain/entity"
	analysisUC "literary-analysis/internal/usecase/analysis"
)

// Analyzer is the part of the analysis use case the handlers call.
// *analysisUC.Service implements it.
type Analyzer interface {
	AnalyzeText(ctx context.Context, in analysisUC.TextInput) (*entity.Analysis, error)
	AnalyzeURL(ctx context.Context, in analysisUC.URLInput) (*entity.Analysis, error)
	AnalyzeImage(ctx context.Context, in analysisUC.ImageInput) (*entity.Analysis, error)
	AnalyzeLiterary(ctx context.Context, in analysisUC.LiteraryInput) (*entity.Analysis, error)
	Get(ctx context.Context, id string) (*entity.Analysis, error)
	List(ctx context.Context, in analysisUC.ListInput) (*analysisUC.ListResult, error)
	Similar(ctx context.Context, id string, limit int) ([]analysisUC.SimilarResult, error)
}

var _ Analyzer = (*analysisUC.Service)(nil)
