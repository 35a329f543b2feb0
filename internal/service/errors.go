// Package service implements folio's account and content operations.
package service

import (
	"errors"
	"fmt"

	"github.com/foliocms/folio/internal/repository"
)

// Auth errors.
var (
	ErrEmailNotFound  = errors.New("email not found")
	ErrBadPassword    = errors.New("wrong password")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Content errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrMissingField = errors.New("missing required field")
	ErrMissingFile  = errors.New("missing required file")
	ErrInvalidField = errors.New("invalid field")
	ErrConstraint   = errors.New("rejected by a table constraint")
)

// ValidationError names the input that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &ValidationError{Field: field, Err: ErrMissingField}
}

func invalid(field string) error {
	return &ValidationError{Field: field, Err: ErrInvalidField}
}

// mapStoreError turns repository failures the caller can act on into
// service errors.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case repository.IsConstraintViolation(err):
		return &ValidationError{Field: "record", Err: fmt.Errorf("%w: %v", ErrConstraint, err)}
	}
	return err
}
