package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs-lzh/movie-review/internal/model"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	verr := NewValidationError("Rating must be between 1 and 5", model.Violations{"rating": "out_of_range"})
	wrapped := fmt.Errorf("add review: %w", verr)

	assert.ErrorIs(t, wrapped, ErrValidation)
	var target *ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "out_of_range", target.Fields["rating"])

	assert.ErrorIs(t, &NotFoundError{Message: "Movie not found"}, ErrNotFound)
	assert.ErrorIs(t, &ConflictError{Message: "Movie already in watchlist."}, ErrConflict)
	assert.NotErrorIs(t, &ConflictError{}, ErrNotFound)
}
