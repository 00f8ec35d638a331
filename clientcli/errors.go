package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrCredentialRequired = errors.New("api key or token is required")
	ErrConfigRequired     = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrEmptyPath = errors.New("file name is required")
)
