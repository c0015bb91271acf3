package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeAndMatches(t *testing.T) {
	cloned := Clone(ErrValidation, "select at least one absent teacher")

	assert.Equal(t, "VALIDATION_ERROR", cloned.Code)
	assert.Equal(t, http.StatusBadRequest, cloned.Status)
	assert.Equal(t, "select at least one absent teacher", cloned.Message)
	assert.ErrorIs(t, cloned, ErrValidation)
	assert.NotErrorIs(t, cloned, ErrNotFound)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))

	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err.Unwrap(), "boom")
}

func TestFromErrorUnwrapsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", Clone(ErrNotFound, "day not found"))

	err := FromError(wrapped)

	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, "day not found", err.Message)
	assert.Nil(t, FromError(nil))
}
