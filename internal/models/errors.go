package models

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrPersistence    = errors.New("persistence failure")
	ErrReconciliation = errors.New("reconciliation failure")
)

// ValidationError is a rejected input. Fields, when set, holds the
// validator.ValidationErrors behind it so callers can report per-field details.
type ValidationError struct {
	Message string
	Fields  error
}

func NewValidationError(message string, fields error) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Fields != nil {
		return e.Message + ": " + e.Fields.Error()
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}
