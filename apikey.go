package assetgate

import (
	"strings"
)

// APIKeyValidator authenticates raw API keys against a KeyDirectory.
type APIKeyValidator struct {
	directory KeyDirectory
}

// NewAPIKeyValidator creates a validator backed by directory.
func NewAPIKeyValidator(directory KeyDirectory) *APIKeyValidator {
	return &APIKeyValidator{directory: directory}
}

// Validate resolves rawKey to a principal.
//
// A blank key yields ErrMissingCredential. Otherwise the trimmed key is
// digested and looked up; no enabled match yields ErrInvalidCredential.
func (v *APIKeyValidator) Validate(rawKey string) (Principal, error) {
	trimmed := strings.TrimSpace(rawKey)
	if trimmed == "" {
		return Principal{}, ErrMissingCredential
	}

	rec, found := v.directory.FindByDigest(Digest(trimmed))
	if !found {
		return Principal{}, ErrInvalidCredential
	}

	return Principal{
		SubjectID:   rec.KeyID,
		DisplayName: rec.Owner,
		AuthMethod:  AuthMethodAPIKey,
	}, nil
}
