package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the signalflow library

var (
	// ErrType indicates that an argument had the wrong kind, such as a nil
	// function where a callable was required
	ErrType = errors.New("type error")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ValidationError describes a configuration parameter that failed validation.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// TypeError reports an argument whose kind does not match what an API requires.
type TypeError struct {
	Module string
	Field  string
	Got    string
	Want   string
}

// NewTypeError creates a TypeError.
func NewTypeError(module, field, got, want string) *TypeError {
	return &TypeError{
		Module: module,
		Field:  field,
		Got:    got,
		Want:   want,
	}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s must be %s, got %s", e.Module, e.Field, e.Want, e.Got)
}

// Unwrap returns ErrType.
func (e *TypeError) Unwrap() error {
	return ErrType
}

// OperationError wraps a failure of a named operation inside a module.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError for the given cause.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches extra detail and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsValidationError returns true if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsTypeError returns true if err is or wraps a TypeError
func IsTypeError(err error) bool {
	var terr *TypeError
	return errors.As(err, &terr)
}
