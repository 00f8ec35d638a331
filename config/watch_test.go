package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/config"
)

const digestFoo = "2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae"

func newStoreFromFile(t *testing.T, path string) (*config.Config, *assetgate.SettingsStore) {
	t.Helper()
	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)
	s, err := cfg.Settings()
	require.NoError(t, err)
	return cfg, assetgate.NewSettingsStore(s)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 10\n")
	_, store := newStoreFromFile(t, path)

	writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 20\n")

	cfg, err := config.Reload([]string{path}, nil, store)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Assets.DefaultCacheSeconds)
	assert.Equal(t, 20, store.Current().Assets.CacheSeconds)
}

func TestReload_InvalidKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 10\n")
	_, store := newStoreFromFile(t, path)
	before := store.Current()

	tests := map[string]string{
		"unparsable":       "assets: [\n",
		"invalid value":    "log:\n  level: loud\n",
		"duplicate digest": "auth:\n  api_keys:\n    keys:\n      inline:\n        - {key_id: a, key_hash: " + digestFoo + ", enabled: true}\n        - {key_id: b, key_hash: " + digestFoo + ", enabled: true}\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			writeConfig(t, dir, "config.yaml", content)

			_, err := config.Reload([]string{path}, nil, store)
			require.Error(t, err)
			assert.Same(t, before, store.Current())
		})
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 10\n")
	cfg, store := newStoreFromFile(t, path)

	w, err := config.Watch(cfg, []string{path}, nil, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 99\n")

	assert.Eventually(t, func() bool {
		return store.Current().Assets.CacheSeconds == 99
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_ReloadsOnKeysFileChange(t *testing.T) {
	dir := t.TempDir()
	keysFile := writeConfig(t, dir, "keys.yaml", "[]\n")
	path := writeConfig(t, dir, "config.yaml", "auth:\n  api_keys:\n    keys:\n      file: "+keysFile+"\n")
	cfg, store := newStoreFromFile(t, path)
	require.Empty(t, store.Current().APIKeys.Keys)

	w, err := config.Watch(cfg, []string{path}, nil, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	writeConfig(t, dir, "keys.yaml", "- key_id: new\n  key_hash: "+digestFoo+"\n  enabled: true\n")

	assert.Eventually(t, func() bool {
		return len(store.Current().APIKeys.Keys) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_InvalidChangeKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 10\n")
	cfg, store := newStoreFromFile(t, path)
	before := store.Current()

	w, err := config.Watch(cfg, []string{path}, nil, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	writeConfig(t, dir, "config.yaml", "log:\n  level: loud\n")
	time.Sleep(600 * time.Millisecond)
	assert.Same(t, before, store.Current())

	writeConfig(t, dir, "config.yaml", "assets:\n  default_cache_seconds: 11\n")
	assert.Eventually(t, func() bool {
		return store.Current().Assets.CacheSeconds == 11
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_NoFiles(t *testing.T) {
	store := assetgate.NewSettingsStore(&assetgate.Settings{})
	_, err := config.Watch(nil, nil, nil, store)
	assert.Error(t, err)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "{}\n")
	cfg, store := newStoreFromFile(t, path)

	w, err := config.Watch(cfg, []string{path}, nil, store)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
