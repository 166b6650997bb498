package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable is returned when the engine is short-circuited or cannot be reached in time.
	ErrEngineUnavailable = errors.New("risk engine unavailable")

	ErrMissingCredentials = errors.New("Authorization header is missing")
	ErrInvalidCredentials = errors.New("Invalid Authorization header")
	ErrForbidden          = errors.New("Invalid token")
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
