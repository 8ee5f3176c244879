package core

import "fmt"

// ValidationError marks request input that fails a domain rule before any
// state is consulted: unknown enum values, missing parameters, malformed
// line items.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a reference to an entity that does not exist or is
// disabled.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func newNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks a request that is well-formed but collides with the
// current state: capacity exceeded, insufficient stock or funds, a terminal
// contract status, a reservation still outstanding.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func newConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError marks a missing deployment prerequisite, such as an
// unset signing key. It is raised before any mutation.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}
