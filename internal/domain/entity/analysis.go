// Package entity defines the core domain entities and validation logic for the
// analysis service: the persisted Analysis record, its result payload and the
// embedding attached to it for similarity search.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SourceType identifies where the analysed text came from.
type SourceType string

const (
	SourceTypeText  SourceType = "text"
	SourceTypeURL   SourceType = "url"
	SourceTypeImage SourceType = "image"
)

// IsValid reports whether s is a known source type.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeText, SourceTypeURL, SourceTypeImage:
		return true
	default:
		return false
	}
}

// Mode selects the sentiment scorer.
type Mode string

const (
	// ModeFast uses the built-in lexicon scorer.
	ModeFast Mode = "fast"
	// ModeSmart uses the LLM scorer when one is configured, falling back to
	// the lexicon scorer otherwise.
	ModeSmart Mode = "smart"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeFast || m == ModeSmart
}

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Analysis is one persisted analysis run. Records are append-only; the only
// removal path is the retention job.
type Analysis struct {
	ID            string
	CreatedAt     time.Time
	SourceType    SourceType
	RawInputHash  string
	URL           string
	Filename      string
	ExtractedText string
	Mode          Mode
	ModelVersion  string
	Result        AnalysisResult
}

// AnalysisResult is the JSON document stored with every analysis.
type AnalysisResult struct {
	WordCount int               `json:"word_count"`
	Sentiment Sentiment         `json:"sentiment"`
	Keywords  []string          `json:"keywords"`
	TopWords  []WordFrequency   `json:"top_words,omitempty"`
	Language  string            `json:"language,omitempty"`
	Literary  *LiteraryInsights `json:"literary,omitempty"`
	Image     *ImageMetadata    `json:"image,omitempty"`
}

// Sentiment is the scorer output. Optional fields are nil when the scorer
// does not produce them (the LLM scorer has no pos/neg/neu split).
type Sentiment struct {
	PolarityLabel string   `json:"polarity_label"`
	PolarityScore float64  `json:"polarity_score"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Compound      *float64 `json:"compound,omitempty"`
	Positive      *float64 `json:"positive,omitempty"`
	Negative      *float64 `json:"negative,omitempty"`
	Neutral       *float64 `json:"neutral,omitempty"`
}

// WordFrequency is one entry of the top words table.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// LiteraryInsights is the heuristic literary annotation of a text.
type LiteraryInsights struct {
	SummaryShort       *string          `json:"summary_short"`
	SummaryMedium      *string          `json:"summary_medium"`
	MovementOrTendency string           `json:"movement_or_tendency"`
	Influences         []Influence      `json:"influences"`
	AestheticStyles    []AestheticStyle `json:"aesthetic_styles"`
	Disclaimer         string           `json:"disclaimer"`
}

// Influence is a detected author or philosophical influence.
type Influence struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Rationale string `json:"rationale"`
}

// AestheticStyle is a movement with a coarse confidence bucket.
type AestheticStyle struct {
	Style      string `json:"style"`
	Confidence string `json:"confidence"`
}

// ImageMetadata describes an uploaded image or document.
type ImageMetadata struct {
	Format     string     `json:"format"`
	Width      int        `json:"width,omitempty"`
	Height     int        `json:"height,omitempty"`
	Pages      int        `json:"pages,omitempty"`
	Camera     string     `json:"camera,omitempty"`
	TakenAt    *time.Time `json:"taken_at,omitempty"`
	TextSource string     `json:"text_source"` // pdf_text or ocr
	StorageKey string     `json:"storage_key,omitempty"`
}

// HashInput returns the hex sha256 of raw input, stored as RawInputHash and
// used as the upload archive key.
func HashInput(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
