package mcp

import (
	"errors"
	"fmt"
)

// ValidationError reports arguments that fail an operation's input
// checks, or an envelope with no resolvable operation name. It is
// always converted to an in-band error response at the dispatch
// boundary, never propagated as a fault.
type ValidationError struct {
	// Field names the offending argument when one is identifiable.
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// NotFoundError reports an operation name that resolves to no registry
// entry after alias translation.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "unknown tool: " + e.Name
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}
