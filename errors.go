package assetgate

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	// ErrNoCredential is returned when a request carries no credential for the selected scheme.
	ErrNoCredential = fmt.Errorf("no credential: %w", ErrUnauthorized)
	// ErrMissingCredential is returned when an API key header is present but blank.
	ErrMissingCredential = fmt.Errorf("missing credential: %w", ErrUnauthorized)
	// ErrInvalidCredential is returned when an API key does not match any enabled record.
	ErrInvalidCredential = fmt.Errorf("invalid credential: %w", ErrUnauthorized)
	// ErrInvalidToken is returned for every bearer token failure.
	ErrInvalidToken = fmt.Errorf("invalid token: %w", ErrUnauthorized)
)

// SanitizeError reports which filename rule was violated.
type SanitizeError struct {
	Reason string
}

func (e *SanitizeError) Error() string {
	return "invalid filename: " + e.Reason
}

func (e *SanitizeError) Unwrap() error {
	return ErrInvalidInput
}
