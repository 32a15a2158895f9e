package service

import (
	"errors"

	"github.com/qs-lzh/movie-review/internal/model"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBusy               = errors.New("resource busy, try again")
)

// ValidationError carries a user facing message and the offending fields.
type ValidationError struct {
	Message string
	Fields  model.Violations
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(message string, fields model.Violations) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError names what was missing, e.g. "Movie not found".
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError names what already existed.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }
