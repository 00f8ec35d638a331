package assetgate

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultAPIKeyHeader is the header that selects API key authentication.
const DefaultAPIKeyHeader = "X-API-Key"

// AssetSettings controls asset resolution and caching.
type AssetSettings struct {
	RootPath     string
	CacheSeconds int
}

// APIKeySettings controls API key authentication.
type APIKeySettings struct {
	HeaderName string
	Keys       []APIKeyRecord
}

// JWTSettings controls bearer token verification.
type JWTSettings struct {
	SigningKey       string
	Issuer           string
	Audience         string
	ValidateIssuer   bool
	ValidateAudience bool
	ClockSkew        time.Duration
}

// Settings is an immutable configuration snapshot. A reload produces a new
// Settings value; an existing one is never modified after it is published.
type Settings struct {
	Assets  AssetSettings
	APIKeys APIKeySettings
	JWT     JWTSettings
}

// Validate checks the snapshot for problems that would make request
// handling ambiguous, including enabled API keys sharing a digest.
func (s *Settings) Validate() error {
	if s.Assets.RootPath == "" {
		return errors.New("validate settings: asset root path cannot be empty")
	}

	if strings.TrimSpace(s.APIKeys.HeaderName) == "" {
		return errors.New("validate settings: api key header name cannot be empty")
	}

	seen := make(map[string]string, len(s.APIKeys.Keys))
	for _, k := range s.APIKeys.Keys {
		if !k.Enabled {
			continue
		}

		digest := strings.ToLower(k.KeyHash)
		if _, err := hex.DecodeString(digest); err != nil || len(digest) != DigestHexLength {
			return fmt.Errorf("validate settings: key %q: key hash must be %d hex characters", k.KeyID, DigestHexLength)
		}

		if other, dup := seen[digest]; dup {
			return fmt.Errorf("validate settings: keys %q and %q share the same key hash", other, k.KeyID)
		}
		seen[digest] = k.KeyID
	}

	if s.JWT.ClockSkew < 0 {
		return errors.New("validate settings: jwt clock skew cannot be negative")
	}

	return nil
}

// CacheMaxAge returns the configured cache lifetime floored at zero.
func (s *Settings) CacheMaxAge() int {
	return max(0, s.Assets.CacheSeconds)
}

// SettingsProvider returns the current configuration snapshot.
type SettingsProvider interface {
	Current() *Settings
}

// SettingsStore publishes Settings snapshots to concurrent readers.
// Readers never take a lock; Replace swaps the whole snapshot.
type SettingsStore struct {
	current atomic.Pointer[Settings]
}

// NewSettingsStore creates a store holding initial, which must be non-nil.
func NewSettingsStore(initial *Settings) *SettingsStore {
	s := &SettingsStore{}
	s.current.Store(initial)
	return s
}

// Current returns the active snapshot.
func (s *SettingsStore) Current() *Settings {
	return s.current.Load()
}

// Replace validates next and makes it the active snapshot.
// The previous snapshot stays active if validation fails.
func (s *SettingsStore) Replace(next *Settings) error {
	if next == nil {
		return errors.New("replace settings: nil snapshot")
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	s.current.Store(next)
	return nil
}
