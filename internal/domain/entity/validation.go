package entity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
	maxURLLength = 2048

	// MaxTextLength is the largest text accepted for analysis, in bytes.
	MaxTextLength = 1 << 20

	// MinLiteraryTextLength is the shortest text accepted by literary analysis, in characters.
	MinLiteraryTextLength = 200
)

// Output languages and summary lengths of literary analysis.
const (
	LanguageEnglish = "english"
	LanguageSpanish = "spanish"

	SummaryShort  = "short"
	SummaryMedium = "medium"
)

// ValidateURL checks the shape of a URL field. Network safety is not decided
// here; that is the URL gate's job, which runs before any fetch.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}
	return nil
}

// ValidateText checks a text field for analysis.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if len(text) > MaxTextLength {
		return &ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("text is too long (max %d bytes)", MaxTextLength),
		}
	}
	return nil
}

// ValidateLiteraryText applies ValidateText plus the literary minimum length.
func ValidateLiteraryText(text string) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	if utf8.RuneCountInString(text) < MinLiteraryTextLength {
		return fmt.Errorf("%w: please provide at least %d characters", ErrTextTooShort, MinLiteraryTextLength)
	}
	return nil
}

// ParseMode returns the mode for raw, defaulting to fast when empty.
func ParseMode(raw string) (Mode, error) {
	if raw == "" {
		return ModeFast, nil
	}
	m := Mode(strings.ToLower(raw))
	if !m.IsValid() {
		return "", &ValidationError{Field: "mode", Message: "mode must be fast or smart"}
	}
	return m, nil
}

// ParseSourceType parses an optional source_type filter. Empty means no filter.
func ParseSourceType(raw string) (*SourceType, error) {
	if raw == "" {
		return nil, nil
	}
	st := SourceType(strings.ToLower(raw))
	if !st.IsValid() {
		return nil, &ValidationError{Field: "source_type", Message: "source_type must be text, url or image"}
	}
	return &st, nil
}

// ParseLanguage returns the literary output language, defaulting to english.
func ParseLanguage(raw string) (string, error) {
	switch strings.ToLower(raw) {
	case "", LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageSpanish:
		return LanguageSpanish, nil
	default:
		return "", &ValidationError{Field: "language", Message: "language must be english or spanish"}
	}
}

// ParseSummaryLength returns the summary length, defaulting to medium.
func ParseSummaryLength(raw string) (string, error) {
	switch strings.ToLower(raw) {
	case "", SummaryMedium:
		return SummaryMedium, nil
	case SummaryShort:
		return SummaryShort, nil
	default:
		return "", &ValidationError{Field: "summary_length", Message: "summary_length must be short or medium"}
	}
}

// ValidateAnalysisID checks that id is a UUID.
func ValidateAnalysisID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "id", Message: "invalid analysis id"}
	}
	return nil
}
