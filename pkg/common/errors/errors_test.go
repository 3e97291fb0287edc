package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrType", ErrType, "type error"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "signal",
				Field:  "delay",
				Value:  -1,
				Reason: "cannot be negative",
			},
			want: "signal: invalid delay=-1 (cannot be negative)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "ticker",
				Field:  "expr",
				Value:  "",
				Reason: "cannot be empty",
				Hint:   "use a cron expression such as @every 1s",
			},
			want: "ticker: invalid expr= (cannot be empty) - use a cron expression such as @every 1s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test")

	if verr.Unwrap() != ErrInvalidConfiguration {
		t.Errorf("Unwrap() = %v, want ErrInvalidConfiguration", verr.Unwrap())
	}
	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should wrap ErrInvalidConfiguration")
	}
	if errors.Is(verr, ErrType) {
		t.Error("ValidationError should not match ErrType")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid").
		WithHint("try using a positive value")

	if err.Hint != "try using a positive value" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try using a positive value")
	}
	if result := err.WithHint("new hint"); result != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestTypeError(t *testing.T) {
	err := NewTypeError("signal", "mount", "nil", "a non-nil function")

	want := "signal: mount must be a non-nil function, got nil"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrType) {
		t.Error("TypeError should wrap ErrType")
	}
	if !IsTypeError(err) {
		t.Error("IsTypeError should report true")
	}
	if IsTypeError(errors.New("other")) {
		t.Error("IsTypeError should report false for plain errors")
	}
}

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "without context",
			err: &OperationError{
				Module:    "pubsub",
				Operation: "Publish",
				Cause:     errors.New("connection refused"),
			},
			want: "pubsub.Publish failed: connection refused",
		},
		{
			name: "with context",
			err: &OperationError{
				Module:    "pubsub",
				Operation: "Decode",
				Cause:     errors.New("bad payload"),
				Context:   "channel events",
			},
			want: "pubsub.Decode failed: bad payload (channel events)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	opErr := NewOperationError("test", "test", cause).WithContext("ctx")

	if opErr.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", opErr.Unwrap(), cause)
	}
	if !errors.Is(opErr, cause) {
		t.Error("OperationError should wrap the cause error")
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", NewValidationError("test", "field", 0, "test"), true},
		{"wrapped validation error", &OperationError{Cause: NewValidationError("test", "field", 0, "test")}, true},
		{"type error", NewTypeError("test", "field", "nil", "func"), false},
		{"standard error", errors.New("test"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.want {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := NewOperationError("mymodule", "MyOp", errors.New("connection refused")).
		WithContext("server unreachable")

	msg := err.Error()
	for _, part := range []string{"mymodule", "MyOp", "connection refused", "server unreachable"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error message should contain %q, got %q", part, msg)
		}
	}
}
