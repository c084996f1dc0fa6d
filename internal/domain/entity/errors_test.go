package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create analysis: %w", &ValidationError{Field: "mode", Message: "mode must be fast or smart"})

	assert.EqualError(t, err, "create analysis: mode: mode must be fast or smart")
	assert.ErrorIs(t, err, ErrValidationFailed)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "mode", ve.Field)
	assert.Equal(t, "mode must be fast or smart", ve.Message)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{ErrValidationFailed, ErrEmptyText, ErrTextTooShort}
	for i, a := range sentinels {
		for j, b := range sentinels {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
	assert.NotErrorIs(t, ErrEmptyText, ErrValidationFailed)
}
