package clientcli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CacheEntry remembers the validator of a file previously downloaded to
// LocalPath.
type CacheEntry struct {
	ETag      string `yaml:"etag"`
	LocalPath string `yaml:"local_path"`
}

// ETagCache persists ETags of downloaded files so that a later download of
// the same file can be sent as a conditional request.
type ETagCache struct {
	path    string
	Entries map[string]CacheEntry `yaml:"entries"`
}

// LoadETagCache reads the cache at path. A missing file yields an empty cache.
func LoadETagCache(path string) (*ETagCache, error) {
	cache := &ETagCache{path: filepath.Clean(path), Entries: make(map[string]CacheEntry)}

	data, err := os.ReadFile(cache.path) //#nosec G304 -- path is user-provided config file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cache, nil
		}
		return nil, fmt.Errorf("read etag cache: %w", err)
	}

	if err := yaml.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("parse etag cache: %w", err)
	}
	if cache.Entries == nil {
		cache.Entries = make(map[string]CacheEntry)
	}

	return cache, nil
}

func cacheKey(endpoint, name string) string {
	return endpoint + "/resources/" + name
}

// Lookup returns the cached ETag for name on endpoint if it was downloaded
// to localPath and that file still exists.
func (c *ETagCache) Lookup(endpoint, name, localPath string) (string, bool) {
	entry, ok := c.Entries[cacheKey(endpoint, name)]
	if !ok || entry.ETag == "" {
		return "", false
	}

	abs, err := filepath.Abs(localPath)
	if err != nil || abs != entry.LocalPath {
		return "", false
	}

	if _, err := os.Stat(abs); err != nil {
		return "", false
	}

	return entry.ETag, true
}

// Store records etag for name on endpoint as downloaded to localPath.
func (c *ETagCache) Store(endpoint, name, localPath, etag string) error {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return fmt.Errorf("resolve local path: %w", err)
	}

	c.Entries[cacheKey(endpoint, name)] = CacheEntry{ETag: etag, LocalPath: abs}
	return nil
}

// Save writes the cache back to its file.
func (c *ETagCache) Save() error {
	return writeYAML(c.path, c)
}
