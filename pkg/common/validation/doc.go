// Package validation provides common validation utilities for configuration
// parameters and constructor arguments across the signalflow library.
//
// Misconfigured values produce a *errors.ValidationError that unwraps to
// errors.ErrInvalidConfiguration. Arguments of the wrong kind, such as a nil
// function where a callable is required, produce a *errors.TypeError that
// unwraps to errors.ErrType.
package validation
