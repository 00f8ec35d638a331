package assetgate_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/sagarc03/assetgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *assetgate.Settings)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(s *assetgate.Settings) {},
		},
		{
			name:    "empty root path",
			mutate:  func(s *assetgate.Settings) { s.Assets.RootPath = "" },
			wantErr: "asset root path",
		},
		{
			name:    "blank header name",
			mutate:  func(s *assetgate.Settings) { s.APIKeys.HeaderName = " " },
			wantErr: "header name",
		},
		{
			name: "short key hash",
			mutate: func(s *assetgate.Settings) {
				s.APIKeys.Keys[0].KeyHash = "abc"
			},
			wantErr: "64 hex characters",
		},
		{
			name: "non hex key hash",
			mutate: func(s *assetgate.Settings) {
				s.APIKeys.Keys[0].KeyHash = strings.Repeat("z", 64)
			},
			wantErr: "64 hex characters",
		},
		{
			name: "duplicate enabled digests",
			mutate: func(s *assetgate.Settings) {
				dup := s.APIKeys.Keys[0]
				dup.KeyID = "test-key-2"
				dup.KeyHash = strings.ToUpper(dup.KeyHash)
				s.APIKeys.Keys = append(s.APIKeys.Keys, dup)
			},
			wantErr: "share the same key hash",
		},
		{
			name: "duplicate digest on disabled key is ignored",
			mutate: func(s *assetgate.Settings) {
				dup := s.APIKeys.Keys[0]
				dup.KeyID = "test-key-2"
				dup.Enabled = false
				s.APIKeys.Keys = append(s.APIKeys.Keys, dup)
			},
		},
		{
			name: "invalid hash on disabled key is ignored",
			mutate: func(s *assetgate.Settings) {
				s.APIKeys.Keys[0].Enabled = false
				s.APIKeys.Keys[0].KeyHash = ""
			},
		},
		{
			name:    "negative clock skew",
			mutate:  func(s *assetgate.Settings) { s.JWT.ClockSkew = -1 },
			wantErr: "clock skew",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.mutate(s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings_CacheMaxAge(t *testing.T) {
	s := testSettings()
	assert.Equal(t, 300, s.CacheMaxAge())

	s.Assets.CacheSeconds = -10
	assert.Equal(t, 0, s.CacheMaxAge())
}

func TestSettingsStore_Replace(t *testing.T) {
	initial := testSettings()
	store := assetgate.NewSettingsStore(initial)
	assert.Same(t, initial, store.Current())

	next := testSettings()
	next.Assets.CacheSeconds = 60
	require.NoError(t, store.Replace(next))
	assert.Same(t, next, store.Current())

	invalid := testSettings()
	invalid.Assets.RootPath = ""
	assert.Error(t, store.Replace(invalid))
	assert.Same(t, next, store.Current(), "failed replace keeps previous snapshot")

	assert.Error(t, store.Replace(nil))
}

func TestSettingsStore_ConcurrentReaders(t *testing.T) {
	store := assetgate.NewSettingsStore(testSettings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s := store.Current()
				assert.NotNil(t, s)
				assert.NotEmpty(t, s.Assets.RootPath)
			}
		}()
	}

	for i := 0; i < 100; i++ {
		next := testSettings()
		next.Assets.CacheSeconds = i
		require.NoError(t, store.Replace(next))
	}

	wg.Wait()
}
