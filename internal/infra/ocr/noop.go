package ocr

import "context"

// NoopRecognizer is used when OCR is disabled. Every call fails with
// ErrOCRDisabled.
type NoopRecognizer struct{}

// NewNoopRecognizer creates a new no-op recognizer.
func NewNoopRecognizer() *NoopRecognizer {
	return &NoopRecognizer{}
}

// Recognize returns ErrOCRDisabled.
func (NoopRecognizer) Recognize(context.Context, []byte, string) (string, error) {
	return "", ErrOCRDisabled
}

// State always reports "disabled".
func (NoopRecognizer) State() string { return "disabled" }
