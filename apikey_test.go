package assetgate_test

import (
	"strings"
	"testing"

	"github.com/sagarc03/assetgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory() sliceDirectory {
	return sliceDirectory{
		{KeyID: "test-key-1", Owner: "Integration Tests", KeyHash: assetgate.Digest(testRawKey), Enabled: true},
		{KeyID: "upper-key", Owner: "Upper Case", KeyHash: strings.ToUpper(assetgate.Digest("upper")), Enabled: true},
		{KeyID: "disabled-key", Owner: "Nobody", KeyHash: assetgate.Digest("disabled"), Enabled: false},
	}
}

func TestAPIKeyValidator_Validate(t *testing.T) {
	validator := assetgate.NewAPIKeyValidator(newTestDirectory())

	t.Run("matching key", func(t *testing.T) {
		p, err := validator.Validate(testRawKey)
		require.NoError(t, err)
		assert.Equal(t, assetgate.Principal{
			SubjectID:   "test-key-1",
			DisplayName: "Integration Tests",
			AuthMethod:  assetgate.AuthMethodAPIKey,
		}, p)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		p, err := validator.Validate("  " + testRawKey + "\t")
		require.NoError(t, err)
		assert.Equal(t, "test-key-1", p.SubjectID)
	})

	t.Run("stored digest case is ignored", func(t *testing.T) {
		p, err := validator.Validate("upper")
		require.NoError(t, err)
		assert.Equal(t, "upper-key", p.SubjectID)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := validator.Validate("")
		assert.ErrorIs(t, err, assetgate.ErrMissingCredential)
		assert.ErrorIs(t, err, assetgate.ErrUnauthorized)
	})

	t.Run("whitespace key", func(t *testing.T) {
		_, err := validator.Validate("   ")
		assert.ErrorIs(t, err, assetgate.ErrMissingCredential)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := validator.Validate("wrong-key")
		assert.ErrorIs(t, err, assetgate.ErrInvalidCredential)
		assert.NotErrorIs(t, err, assetgate.ErrMissingCredential)
		assert.ErrorIs(t, err, assetgate.ErrUnauthorized)
	})

	t.Run("disabled key", func(t *testing.T) {
		_, err := validator.Validate("disabled")
		assert.ErrorIs(t, err, assetgate.ErrInvalidCredential)
	})

	t.Run("raw digest is not a key", func(t *testing.T) {
		_, err := validator.Validate(assetgate.Digest(testRawKey))
		assert.ErrorIs(t, err, assetgate.ErrInvalidCredential)
	})
}
