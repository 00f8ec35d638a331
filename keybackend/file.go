package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagarc03/assetgate"
	"gopkg.in/yaml.v3"
)

// LoadKeysFromFile loads API key records from a JSON or YAML file. Files
// ending in .yaml or .yml are read as YAML, anything else as JSON. The file
// should contain a list of records:
//
//	- key_id: reporting-service
//	  owner: Reporting
//	  key_hash: 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
//	  enabled: true
//
// Records without a key_id or key_hash are skipped.
func LoadKeysFromFile(path string) ([]assetgate.APIKeyRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var records []assetgate.APIKeyRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	valid := records[:0]
	for _, r := range records {
		if r.KeyID != "" && r.KeyHash != "" {
			valid = append(valid, r)
		}
	}

	return valid, nil
}
