// Package apperrors defines the error categories shared by the forecasting
// services. Callers classify failures with errors.Is against the sentinels
// and recover details with errors.As.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrComputation     = errors.New("computation error")
	ErrUnknownScenario = errors.New("unknown scenario")
)

// ConfigError reports an input that failed validation before any work ran.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrInvalidConfig and any wrapped cause.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError for the named field
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ComputationError reports a numerically undefined result (division by zero,
// non-positive base for a root) that would otherwise surface as NaN or Inf.
type ComputationError struct {
	Op     string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// NewComputationError creates a ComputationError for the named operation
func NewComputationError(op, format string, args ...any) *ComputationError {
	return &ComputationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsRetryable reports whether the failure came from cancellation or a
// deadline rather than from the inputs.
func IsRetryable(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
