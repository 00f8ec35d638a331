package assetgate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/assetgate"
	"github.com/stretchr/testify/require"
)

const (
	testRawKey     = "super-secret-test-key"
	testSigningKey = "TEST_SIGNING_KEY_32+_CHARS_LONG____"
)

// sliceDirectory is a KeyDirectory over a fixed record list.
type sliceDirectory []assetgate.APIKeyRecord

func (d sliceDirectory) FindByDigest(digest string) (assetgate.APIKeyRecord, bool) {
	for _, r := range d {
		if r.Enabled && strings.EqualFold(r.KeyHash, digest) {
			return r, true
		}
	}
	return assetgate.APIKeyRecord{}, false
}

func testSettings() *assetgate.Settings {
	return &assetgate.Settings{
		Assets: assetgate.AssetSettings{RootPath: "/srv/assets", CacheSeconds: 300},
		APIKeys: assetgate.APIKeySettings{
			HeaderName: assetgate.DefaultAPIKeyHeader,
			Keys: []assetgate.APIKeyRecord{
				{KeyID: "test-key-1", Owner: "Integration Tests", KeyHash: assetgate.Digest(testRawKey), Enabled: true},
			},
		},
		JWT: assetgate.JWTSettings{
			SigningKey: testSigningKey,
			Issuer:     "assetgate",
			Audience:   "assetgate.assets",
			ClockSkew:  30 * time.Second,
		},
	}
}

func signToken(t *testing.T, key string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func validClaims(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "test",
		Audience:  jwt.ClaimStrings{"test"},
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
	}
}
