package clientcli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:5708"

// DefaultAPIKeyHeader is the header API keys are sent in unless a profile
// names another.
const DefaultAPIKeyHeader = "X-API-Key"

// Profile holds configuration for a single server profile. A profile carries
// an API key, a bearer token, or both; the API key wins when both are set.
type Profile struct {
	Name         string `yaml:"name"`
	Endpoint     string `yaml:"endpoint"`
	APIKey       string `yaml:"api_key,omitempty"`
	APIKeyHeader string `yaml:"api_key_header,omitempty"`
	Token        string `yaml:"token,omitempty"`
	Default      bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// index returns the position of the profile called name, or -1.
func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

// GetProfile returns the named profile, or the default profile when name
// is empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	i := c.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &c.Profiles[i], nil
}

// GetDefaultProfile returns the profile marked default, falling back to the
// first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if i := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Default }); i >= 0 {
		return &c.Profiles[i], nil
	}
	return &c.Profiles[0], nil
}

// AddProfile appends p. A profile with the same name must not exist yet;
// use UpdateProfile to change one.
func (c *ConfigFile) AddProfile(p Profile) error {
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile with p's name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	i := c.index(p.Name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
	}
	c.Profiles[i] = p
	return nil
}

// RemoveProfile deletes the named profile.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks the named profile as the only default.
func (c *ConfigFile) SetDefault(name string) error {
	target := c.index(name)
	if target < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = i == target
	}
	return nil
}

// ProfileNames returns profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the file to path with owner-only permissions, creating the
// directory if needed. Profiles carry secrets.
func (c *ConfigFile) Save(path string) error {
	return writeYAML(path, c)
}

// LoadConfigFile reads a profile file.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &ConfigFile{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func writeYAML(path string, v any) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func stateFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".assetgate", name)
}

// DefaultConfigPath returns ~/.assetgate/config.yaml, or "" without a home
// directory.
func DefaultConfigPath() string { return stateFile("config.yaml") }

// DefaultETagCachePath returns ~/.assetgate/etags.yaml.
func DefaultETagCachePath() string { return stateFile("etags.yaml") }

// Config holds resolved client configuration for a single server.
// This is what the Client uses after profile resolution.
type Config struct {
	Endpoint     string
	APIKey       string
	APIKeyHeader string
	Token        string
}

// WithDefaults returns a copy of the config with default values applied.
// An empty Endpoint becomes DefaultEndpoint and an empty APIKeyHeader
// becomes DefaultAPIKeyHeader.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}
	return &cfg
}

// ValidateWithAuth checks that a credential is set.
func (c *Config) ValidateWithAuth() error {
	if c.APIKey == "" && c.Token == "" {
		return ErrCredentialRequired
	}
	return nil
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint:     p.Endpoint,
		APIKey:       p.APIKey,
		APIKeyHeader: p.APIKeyHeader,
		Token:        p.Token,
	}
}

// ConfigFromEnv loads config from environment variables.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv("ASSETGATE_ENDPOINT"),
		APIKey:   os.Getenv("ASSETGATE_API_KEY"),
		Token:    os.Getenv("ASSETGATE_TOKEN"),
	}
}

// ProfileFromEnv returns the profile name from ASSETGATE_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("ASSETGATE_PROFILE")
}

// ConfigPathFromEnv returns the config file path from ASSETGATE_CLIENT_CONFIG environment variable.
func ConfigPathFromEnv() string {
	return os.Getenv("ASSETGATE_CLIENT_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty strings in later configs do not override non-empty values in earlier configs.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.APIKey != "" {
			result.APIKey = cfg.APIKey
		}
		if cfg.APIKeyHeader != "" {
			result.APIKeyHeader = cfg.APIKeyHeader
		}
		if cfg.Token != "" {
			result.Token = cfg.Token
		}
	}
	return result
}
