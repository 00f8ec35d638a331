package assetgate_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/assetgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func TestTokenVerifier_Verify_Valid(t *testing.T) {
	verifier := assetgate.NewTokenVerifier(assetgate.NewSettingsStore(testSettings()))

	t.Run("subject becomes principal", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.SigningMethodHS256, validClaims("user-123"))

		p, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, assetgate.Principal{
			SubjectID:   "user-123",
			DisplayName: "user-123",
			AuthMethod:  assetgate.AuthMethodJWT,
		}, p)
	})

	t.Run("name claim becomes display name", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.SigningMethodHS512, namedClaims{
			Name:             "Ada Lovelace",
			RegisteredClaims: validClaims("user-7"),
		})

		p, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-7", p.SubjectID)
		assert.Equal(t, "Ada Lovelace", p.DisplayName)
	})

	t.Run("expired within clock skew", func(t *testing.T) {
		claims := validClaims("user-123")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))

		_, err := verifier.Verify(signToken(t, testSigningKey, jwt.SigningMethodHS256, claims))
		assert.NoError(t, err)
	})

	t.Run("issuer and audience ignored when not validated", func(t *testing.T) {
		claims := validClaims("user-123")
		claims.Issuer = "someone-else"
		claims.Audience = jwt.ClaimStrings{"elsewhere"}

		_, err := verifier.Verify(signToken(t, testSigningKey, jwt.SigningMethodHS256, claims))
		assert.NoError(t, err)
	})
}

func TestTokenVerifier_Verify_Rejected(t *testing.T) {
	settings := testSettings()
	verifier := assetgate.NewTokenVerifier(assetgate.NewSettingsStore(settings))

	expired := validClaims("user-123")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-5 * time.Minute))

	notYetValid := validClaims("user-123")
	notYetValid.NotBefore = jwt.NewNumericDate(time.Now().Add(5 * time.Minute))

	noExpiry := validClaims("user-123")
	noExpiry.ExpiresAt = nil

	noSubject := validClaims("")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: signToken(t, testSigningKey, jwt.SigningMethodHS256, expired)},
		{name: "not yet valid", token: signToken(t, testSigningKey, jwt.SigningMethodHS256, notYetValid)},
		{name: "missing expiry", token: signToken(t, testSigningKey, jwt.SigningMethodHS256, noExpiry)},
		{name: "missing subject", token: signToken(t, testSigningKey, jwt.SigningMethodHS256, noSubject)},
		{name: "wrong key", token: signToken(t, "another-signing-key-of-enough-length", jwt.SigningMethodHS256, validClaims("user-123"))},
		{name: "unsigned", token: unsignedToken(t, validClaims("user-123"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := verifier.Verify(tt.token)
			assert.Equal(t, assetgate.Principal{}, p)
			assert.Equal(t, assetgate.ErrInvalidToken, err, "every failure is reported identically")
		})
	}
}

func TestTokenVerifier_Verify_IssuerAudience(t *testing.T) {
	settings := testSettings()
	settings.JWT.ValidateIssuer = true
	settings.JWT.ValidateAudience = true
	verifier := assetgate.NewTokenVerifier(assetgate.NewSettingsStore(settings))

	good := validClaims("user-123")
	good.Issuer = "assetgate"
	good.Audience = jwt.ClaimStrings{"assetgate.assets"}

	wrongIssuer := good
	wrongIssuer.Issuer = "test"

	wrongAudience := good
	wrongAudience.Audience = jwt.ClaimStrings{"test"}

	_, err := verifier.Verify(signToken(t, testSigningKey, jwt.SigningMethodHS256, good))
	assert.NoError(t, err)

	_, err = verifier.Verify(signToken(t, testSigningKey, jwt.SigningMethodHS256, wrongIssuer))
	assert.ErrorIs(t, err, assetgate.ErrInvalidToken)

	_, err = verifier.Verify(signToken(t, testSigningKey, jwt.SigningMethodHS256, wrongAudience))
	assert.ErrorIs(t, err, assetgate.ErrInvalidToken)
}

func TestTokenVerifier_Verify_ReadsCurrentSnapshot(t *testing.T) {
	store := assetgate.NewSettingsStore(testSettings())
	verifier := assetgate.NewTokenVerifier(store)
	token := signToken(t, testSigningKey, jwt.SigningMethodHS256, validClaims("user-123"))

	_, err := verifier.Verify(token)
	require.NoError(t, err)

	rotated := testSettings()
	rotated.JWT.SigningKey = "rotated-signing-key-rotated-signing-key"
	require.NoError(t, store.Replace(rotated))

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, assetgate.ErrInvalidToken)
}

func TestTokenVerifier_Verify_NoSigningKey(t *testing.T) {
	settings := testSettings()
	settings.JWT.SigningKey = ""
	verifier := assetgate.NewTokenVerifier(assetgate.NewSettingsStore(settings))

	_, err := verifier.Verify(signToken(t, testSigningKey, jwt.SigningMethodHS256, validClaims("user-123")))
	assert.ErrorIs(t, err, assetgate.ErrInvalidToken)
}

func unsignedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}
