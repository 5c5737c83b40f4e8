package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrExternalService      = errors.New("external service error")
)

// InvalidInputError names the rejected field. It matches ErrInvalidInput.
type InvalidInputError struct {
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s is empty", e.Field)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ExternalServiceError wraps any failure of a generative API call.
// Transient and permanent failures are not distinguished.
type ExternalServiceError struct {
	Service string // "image" | "chat"
	Err     error
}

func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return e.Service + " service failed"
	}
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool { return target == ErrExternalService }

// MissingConfigError names the missing setting and where it is expected.
type MissingConfigError struct {
	Key  string
	Hint string
}

func (e *MissingConfigError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s is required", e.Key)
	}
	return fmt.Sprintf("%s is required (%s)", e.Key, e.Hint)
}

func (e *MissingConfigError) Is(target error) bool { return target == ErrMissingConfiguration }
