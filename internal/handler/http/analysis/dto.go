// Package analysis provides the HTTP handlers of the /v1 analysis API: text,
// URL, upload and literary analysis plus reading stored analyses back.
package analysis

import (
	"time"

	"literary-analysis/internal/domain/entity"
)

// TextRequest is the body of POST /v1/analyze/text.
type TextRequest struct {
	Text string `json:"text" example:"The harbour was quiet and the evening light was beautiful."`
	Mode string `json:"mode,omitempty" example:"fast" enums:"fast,smart"`
}

// URLRequest is the body of POST /v1/analyze/url.
type URLRequest struct {
	URL  string `json:"url" example:"https://example.com/essay"`
	Mode string `json:"mode,omitempty" example:"fast" enums:"fast,smart"`
}

// LiteraryRequest is the body of POST /v1/analyze/literary.
type LiteraryRequest struct {
	Text          string `json:"text"`
	Language      string `json:"language,omitempty" example:"english" enums:"english,spanish"`
	SummaryLength string `json:"summary_length,omitempty" example:"medium" enums:"short,medium"`
}

// DTO is the JSON form of a stored analysis.
type DTO struct {
	AnalysisID   string                `json:"analysis_id" example:"6f1c2a9e-8b1d-4c55-9d59-1c0f7a4b2e10"`
	CreatedAt    time.Time             `json:"created_at" example:"2026-03-02T10:00:00Z"`
	SourceType   entity.SourceType     `json:"source_type" example:"text"`
	Mode         entity.Mode           `json:"mode" example:"fast"`
	ModelVersion string                `json:"model_version,omitempty" example:"lexicon-1"`
	URL          *string               `json:"url"`
	Filename     *string               `json:"filename"`
	Result       entity.AnalysisResult `json:"result"`
}

// LiteraryResponse is the body returned by POST /v1/analyze/literary.
type LiteraryResponse struct {
	AnalysisID string                   `json:"analysis_id"`
	CreatedAt  time.Time                `json:"created_at"`
	SourceType entity.SourceType        `json:"source_type" example:"text"`
	Language   string                   `json:"language" example:"english"`
	Insights   *entity.LiteraryInsights `json:"insights"`
}

// ListResponse is one page of GET /v1/analyses.
type ListResponse struct {
	Total    int64 `json:"total"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
	Analyses []DTO `json:"analyses"`
}

// SimilarDTO is one neighbour returned by GET /v1/analyses/{id}/similar.
type SimilarDTO struct {
	DTO
	Similarity float64 `json:"similarity" example:"0.91"`
}

// SimilarResponse is the body of GET /v1/analyses/{id}/similar.
type SimilarResponse struct {
	AnalysisID string       `json:"analysis_id"`
	Similar    []SimilarDTO `json:"similar"`
}

func toDTO(a *entity.Analysis) DTO {
	return DTO{
		AnalysisID:   a.ID,
		CreatedAt:    a.CreatedAt,
		SourceType:   a.SourceType,
		Mode:         a.Mode,
		ModelVersion: a.ModelVersion,
		URL:          optional(a.URL),
		Filename:     optional(a.Filename),
		Result:       a.Result,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
