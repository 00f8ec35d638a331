package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database"
	assethttp "github.com/sagarc03/assetgate/http"
	"github.com/sagarc03/assetgate/keybackend"
)

// Audit backends.
const (
	AuditBackendLog      = "log"
	AuditBackendSQLite   = "sqlite"
	AuditBackendPostgres = "postgres"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for assetgate.
type Config struct {
	Env       string                    `mapstructure:"env"`
	Server    ServerConfig              `mapstructure:"server"`
	Assets    AssetsConfig              `mapstructure:"assets"`
	Auth      AuthConfig                `mapstructure:"auth"`
	Audit     AuditConfig               `mapstructure:"audit"`
	RateLimit assethttp.RateLimitConfig `mapstructure:"rate_limit"`
	CORS      assethttp.CORSConfig      `mapstructure:"cors"`
	Health    HealthConfig              `mapstructure:"health"`
	Log       LogConfig                 `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration. Timeouts are in seconds;
// zero disables a timeout.
type ServerConfig struct {
	Port         int  `mapstructure:"port" validate:"required,min=1,max=65535"`
	TrustProxy   bool `mapstructure:"trust_proxy"`
	ReadTimeout  int  `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int  `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int  `mapstructure:"idle_timeout" validate:"min=0"`
}

// AssetsConfig holds asset directory configuration.
type AssetsConfig struct {
	RootPath            string `mapstructure:"root_path" validate:"required"`
	DefaultCacheSeconds int    `mapstructure:"default_cache_seconds" validate:"min=0"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKeys APIKeysConfig `mapstructure:"api_keys"`
	JWT     JWTConfig     `mapstructure:"jwt"`
}

// APIKeysConfig holds API key configuration.
type APIKeysConfig struct {
	HeaderName string                `mapstructure:"header_name" validate:"required"`
	Keys       keybackend.KeysConfig `mapstructure:"keys"`
}

// JWTConfig holds bearer token configuration.
type JWTConfig struct {
	SigningKey       string `mapstructure:"signing_key"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	ValidateIssuer   bool   `mapstructure:"validate_issuer"`
	ValidateAudience bool   `mapstructure:"validate_audience"`
	ClockSkewSeconds int    `mapstructure:"clock_skew_seconds" validate:"min=0"`
}

// AuditConfig selects where download events go. Events are always logged;
// the sqlite and postgres backends also persist them.
type AuditConfig struct {
	Backend              string              `mapstructure:"backend" validate:"required,oneof=log sqlite postgres"`
	Buffer               int                 `mapstructure:"buffer" validate:"min=0"`
	// RecordTimeoutSeconds bounds one delivery to the backend; 0 disables it.
	RecordTimeoutSeconds int                 `mapstructure:"record_timeout_seconds" validate:"min=0"`
	Database             AuditDatabaseConfig `mapstructure:"database"`
}

// AuditDatabaseConfig holds the connection for a database audit backend.
type AuditDatabaseConfig struct {
	DSN    string           `mapstructure:"dsn"`
	Tables assetgate.Tables `mapstructure:"tables"`
}

// HealthConfig holds health endpoint configuration.
type HealthConfig struct {
	AllowAnonymous bool `mapstructure:"allow_anonymous"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProduction reports whether env names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "prod" || env == "production"
}

// Settings builds the immutable request handling snapshot. Key records are
// loaded from inline configuration and the keys file, and the asset root is
// made absolute.
func (c *Config) Settings() (*assetgate.Settings, error) {
	root, err := filepath.Abs(c.Assets.RootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve asset root: %w", err)
	}

	keys, err := keybackend.LoadRecords(c.Auth.APIKeys.Keys)
	if err != nil {
		return nil, fmt.Errorf("load api keys: %w", err)
	}

	s := &assetgate.Settings{
		Assets: assetgate.AssetSettings{
			RootPath:     root,
			CacheSeconds: c.Assets.DefaultCacheSeconds,
		},
		APIKeys: assetgate.APIKeySettings{
			HeaderName: c.Auth.APIKeys.HeaderName,
			Keys:       keys,
		},
		JWT: assetgate.JWTSettings{
			SigningKey:       c.Auth.JWT.SigningKey,
			Issuer:           c.Auth.JWT.Issuer,
			Audience:         c.Auth.JWT.Audience,
			ValidateIssuer:   c.Auth.JWT.ValidateIssuer,
			ValidateAudience: c.Auth.JWT.ValidateAudience,
			ClockSkew:        time.Duration(c.Auth.JWT.ClockSkewSeconds) * time.Second,
		},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// AuditDatabase returns the connection settings for a database audit
// backend. ok is false for the log backend.
func (c *Config) AuditDatabase() (database.Config, bool) {
	if c.Audit.Backend == AuditBackendLog {
		return database.Config{}, false
	}

	return database.Config{
		Type:   c.Audit.Backend,
		DSN:    c.Audit.Database.DSN,
		Tables: c.Audit.Database.Tables,
	}, true
}

// HandlerConfig returns the HTTP handler configuration.
func (c *Config) HandlerConfig(version string, logger *slog.Logger) assethttp.HandlerConfig {
	env := c.Env
	if env == "" {
		env = "development"
	}

	return assethttp.HandlerConfig{
		CORS:      c.CORS,
		RateLimit: c.RateLimit,
		Health: assethttp.HealthConfig{
			AllowAnonymous: c.Health.AllowAnonymous,
			Version:        version,
			Environment:    env,
		},
		TrustProxy: c.Server.TrustProxy,
		Logger:     logger,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":          "server.port",
	"trust-proxy":   "server.trust_proxy",
	"assets-root":   "assets.root_path",
	"keys-file":     "auth.api_keys.keys.file",
	"audit-backend": "audit.backend",
	"audit-dsn":     "audit.database.dsn",
	"log-level":     "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// needs a default so that AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 0) // large downloads
	v.SetDefault("server.idle_timeout", 120)

	v.SetDefault("assets.root_path", "./assets")
	v.SetDefault("assets.default_cache_seconds", 300)

	v.SetDefault("auth.api_keys.header_name", assetgate.DefaultAPIKeyHeader)
	v.SetDefault("auth.api_keys.keys.file", "")
	v.SetDefault("auth.jwt.signing_key", "")
	v.SetDefault("auth.jwt.issuer", "assetgate")
	v.SetDefault("auth.jwt.audience", "assetgate.assets")
	v.SetDefault("auth.jwt.validate_issuer", false)
	v.SetDefault("auth.jwt.validate_audience", false)
	v.SetDefault("auth.jwt.clock_skew_seconds", 30)

	v.SetDefault("audit.backend", AuditBackendLog)
	v.SetDefault("audit.buffer", 1024)
	v.SetDefault("audit.record_timeout_seconds", 5)
	v.SetDefault("audit.database.dsn", "")
	v.SetDefault("audit.database.tables.audit", "asset_downloads")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", assetgate.DefaultAPIKeyHeader, "If-None-Match", "Range"})
	v.SetDefault("cors.exposed_headers", []string{"ETag", "Content-Disposition", "Content-Length", "Content-Range", "X-Correlation-Id"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("health.allow_anonymous", true)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFiles[0], err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merge config file %s: %w", cf, err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("ASSETGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterStructValidation(validateAudit, AuditConfig{})
	validate.RegisterStructValidation(validateRateLimit, assethttp.RateLimitConfig{})
	return validate
}

// validateAudit requires a DSN and a valid table name for database backends.
func validateAudit(sl validator.StructLevel) {
	a := sl.Current().Interface().(AuditConfig)
	if a.Backend == AuditBackendLog {
		return
	}

	if strings.TrimSpace(a.Database.DSN) == "" {
		sl.ReportError(a.Database.DSN, "Database.DSN", "DSN", "required_for_backend", a.Backend)
	}
	if !assetgate.IsValidTableName(a.Database.Tables.Audit) {
		sl.ReportError(a.Database.Tables.Audit, "Database.Tables.Audit", "Audit", "table_name", "")
	}
}

// validateRateLimit requires a positive rate when limiting is enabled.
func validateRateLimit(sl validator.StructLevel) {
	r := sl.Current().Interface().(assethttp.RateLimitConfig)
	if r.Enabled && r.RequestsPerSecond <= 0 {
		sl.ReportError(r.RequestsPerSecond, "RequestsPerSecond", "RequestsPerSecond", "gt_when_enabled", "0")
	}
}
