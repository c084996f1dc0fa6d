package analysis

import (
	"context"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/infra/sentiment"
	"literary-analysis/internal/usecase/fetch"
)

// SentimentAnalyzer scores text for a mode.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string, mode entity.Mode) (sentiment.Result, error)
}

// KeywordExtractor returns the salient terms of a text, most relevant first.
type KeywordExtractor interface {
	Extract(text string) []string
}

// LiteraryAnalyzer annotates a text with literary insights.
//
// Errors:
//   - entity.ErrEmptyText: text is blank
//   - entity.ErrTextTooShort: text is below the literary minimum
type LiteraryAnalyzer interface {
	Analyze(text, language, summaryLength string) (*entity.LiteraryInsights, error)
}

// URLFetcher runs the gate, fetch and extract sequence for one URL.
type URLFetcher interface {
	FetchText(ctx context.Context, rawURL string) (*fetch.Document, error)
}

// TextRecognizer reads the text of an image (or a scanned document).
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) (string, error)
}

// UploadStore archives uploaded bytes.
type UploadStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// EventPublisher announces stored analyses.
type EventPublisher interface {
	PublishAnalysisCreated(ctx context.Context, a *entity.Analysis) error
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}
