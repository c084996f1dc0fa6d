package entity

import "errors"

var (
	// ErrValidationFailed matches every *ValidationError via errors.Is.
	ErrValidationFailed = errors.New("validation failed")

	// ErrEmptyText means there is no text to analyse, either because the
	// request carried none or because extraction produced none.
	ErrEmptyText = errors.New("text is required")

	ErrTextTooShort = errors.New("text is too short for literary analysis")
)

// ValidationError reports a rejected input field. Message is written for
// the client and is returned verbatim in 400 responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
