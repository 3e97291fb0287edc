// Package validation provides common validation utilities for the signalflow library.
package validation

import (
	"reflect"
	"time"

	gferrors "github.com/vnykmshr/signalflow/pkg/common/errors"
)

// ValidateFunc validates that value holds a non-nil function.
// Returns a TypeError if value is nil, a nil function, or not a function at all.
func ValidateFunc(module, field string, value interface{}) error {
	if value == nil {
		return gferrors.NewTypeError(module, field, "nil", "a non-nil function")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Func {
		return gferrors.NewTypeError(module, field, rv.Type().String(), "a function")
	}
	if rv.IsNil() {
		return gferrors.NewTypeError(module, field, "nil "+rv.Type().String(), "a non-nil function")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil, including
// typed nil pointers, maps, channels and functions stored in the interface.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return gferrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice:
		if rv.IsNil() {
			return gferrors.NewValidationError(module, field, nil, "cannot be nil").
				WithHint("provide a valid " + field)
		}
	}
	return nil
}

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return gferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is positive (> 0).
// Returns a ValidationError if the duration is zero or negative.
func ValidatePositiveDuration(module, field string, value time.Duration) error {
	if value <= 0 {
		return gferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("use a duration greater than 0")
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return gferrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}
