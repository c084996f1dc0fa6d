// Package analysis implements the analysis use cases: score text from a
// request body, a URL or an uploaded file, annotate literary text, and read
// stored analyses back, including similarity search over their embeddings.
package analysis

import "errors"

// Sentinel errors for analysis use case operations.
var (
	// ErrAnalysisNotFound indicates no analysis exists for the id. Malformed
	// ids are reported the same way.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrEmptyUpload indicates the upload carried no bytes.
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrUploadTooLarge indicates the upload exceeds the configured limit.
	ErrUploadTooLarge = errors.New("uploaded file is too large")

	// ErrUnsupportedUpload indicates the upload is neither a decodable image
	// nor a readable PDF.
	ErrUnsupportedUpload = errors.New("unsupported file type")

	// ErrOCRUnavailable indicates the upload needs OCR and the OCR service is
	// disabled, unreachable or shedding load.
	ErrOCRUnavailable = errors.New("text recognition is unavailable")

	// ErrSimilarityDisabled indicates embeddings are not configured.
	ErrSimilarityDisabled = errors.New("similarity search is disabled")

	// ErrEmbeddingNotReady indicates the analysis has no embedding yet.
	ErrEmbeddingNotReady = errors.New("analysis has no embedding")
)
