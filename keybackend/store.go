// Package keybackend loads API key records from configuration and serves
// digest lookups against the current settings snapshot.
package keybackend

import (
	"strings"

	"github.com/sagarc03/assetgate"
)

// KeysConfig holds configuration for loading API key records.
type KeysConfig struct {
	Inline []assetgate.APIKeyRecord `mapstructure:"inline"` // Inline records from config
	File   string                   `mapstructure:"file"`   // Path to a JSON or YAML file of records
}

// LoadRecords merges inline records with those from the key file, if one is
// configured. A file record replaces an inline record with the same key_id.
// Digests are normalized to lowercase. Duplicate digests are left for
// assetgate.Settings.Validate to reject.
func LoadRecords(cfg KeysConfig) ([]assetgate.APIKeyRecord, error) {
	var records []assetgate.APIKeyRecord
	index := make(map[string]int)

	add := func(r assetgate.APIKeyRecord) {
		r.KeyHash = strings.ToLower(strings.TrimSpace(r.KeyHash))
		if i, ok := index[r.KeyID]; ok {
			records[i] = r
			return
		}
		index[r.KeyID] = len(records)
		records = append(records, r)
	}

	for _, r := range cfg.Inline {
		if r.KeyID != "" && r.KeyHash != "" {
			add(r)
		}
	}

	if cfg.File != "" {
		fileRecords, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for _, r := range fileRecords {
			add(r)
		}
	}

	return records, nil
}

// Directory implements assetgate.KeyDirectory over the key records of the
// current settings snapshot.
type Directory struct {
	settings assetgate.SettingsProvider
}

// NewDirectory creates a Directory reading from settings.
func NewDirectory(settings assetgate.SettingsProvider) *Directory {
	return &Directory{settings: settings}
}

// FindByDigest returns the enabled record whose digest matches, ignoring case.
func (d *Directory) FindByDigest(digest string) (assetgate.APIKeyRecord, bool) {
	for _, r := range d.settings.Current().APIKeys.Keys {
		if r.Enabled && strings.EqualFold(r.KeyHash, digest) {
			return r, true
		}
	}
	return assetgate.APIKeyRecord{}, false
}
