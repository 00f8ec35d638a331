package keybackend

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/sagarc03/assetgate"
)

// rawKeyBytes is the entropy of a generated key.
const rawKeyBytes = 32

// GenerateKey creates a random raw API key and the enabled record that
// matches it. The raw key is returned once and never stored.
func GenerateKey(keyID, owner string) (string, assetgate.APIKeyRecord, error) {
	buf := make([]byte, rawKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", assetgate.APIKeyRecord{}, fmt.Errorf("generate key: %w", err)
	}

	raw := "agk_" + base64.RawURLEncoding.EncodeToString(buf)

	return raw, assetgate.APIKeyRecord{
		KeyID:   keyID,
		Owner:   owner,
		KeyHash: assetgate.Digest(raw),
		Enabled: true,
	}, nil
}
