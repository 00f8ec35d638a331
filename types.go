package assetgate

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// AssetMetadata describes a downloadable file. It is derived from the
// filesystem on every request and never persisted.
type AssetMetadata struct {
	FileName        string    `json:"file_name"`
	ContentType     string    `json:"content_type"`
	SizeBytes       int64     `json:"size_bytes"`
	LastModifiedUTC time.Time `json:"last_modified_utc"`
	ETag            string    `json:"etag"`
}

// AuthMethod identifies the scheme that authenticated a request.
type AuthMethod string

const (
	AuthMethodAPIKey AuthMethod = "api_key"
	AuthMethodJWT    AuthMethod = "jwt"
)

// Principal is the identity resolved for an authenticated request.
type Principal struct {
	SubjectID   string     `json:"subject_id"`
	DisplayName string     `json:"display_name"`
	AuthMethod  AuthMethod `json:"auth_method"`
}

// APIKeyRecord is a configured API key. Only the digest of the raw key is kept.
type APIKeyRecord struct {
	KeyID   string `json:"key_id" yaml:"key_id" mapstructure:"key_id"`
	Owner   string `json:"owner" yaml:"owner" mapstructure:"owner"`
	KeyHash string `json:"key_hash" yaml:"key_hash" mapstructure:"key_hash"`
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// DownloadEvent is the audit record emitted for every served download.
type DownloadEvent struct {
	ID            uuid.UUID  `json:"id"`
	Subject       string     `json:"subject"`
	AuthMethod    AuthMethod `json:"auth_method"`
	ClientIP      string     `json:"client_ip"`
	FileName      string     `json:"file_name"`
	ContentType   string     `json:"content_type"`
	SizeBytes     int64      `json:"size_bytes"`
	CorrelationID string     `json:"correlation_id"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// Bounds applied to AuditQuery.Limit.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 1000
)

// AuditQuery selects recent download events. Empty filters match everything.
type AuditQuery struct {
	Subject  string
	FileName string
	Limit    int
}

// EffectiveLimit returns Limit clamped to (0, MaxAuditLimit], using
// DefaultAuditLimit when Limit is not positive.
func (q AuditQuery) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultAuditLimit
	case q.Limit > MaxAuditLimit:
		return MaxAuditLimit
	default:
		return q.Limit
	}
}

// Tables holds configurable table names for audit storage.
type Tables struct {
	Audit string `mapstructure:"audit"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Audit == "" {
		return errors.New("validate tables: audit table name cannot be empty")
	}

	if !IsValidTableName(t.Audit) {
		return fmt.Errorf("validate tables: invalid audit table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Audit)
	}

	return nil
}
