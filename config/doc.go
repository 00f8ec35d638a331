// Package config provides configuration loading and validation for assetgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (ASSETGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	settings, err := cfg.Settings()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := assetgate.NewSettingsStore(settings)
//
// # Environment Variables
//
// All config keys map to environment variables with ASSETGATE_ prefix:
//   - server.port → ASSETGATE_SERVER_PORT
//   - auth.jwt.signing_key → ASSETGATE_AUTH_JWT_SIGNING_KEY
//   - audit.database.dsn → ASSETGATE_AUDIT_DATABASE_DSN
//
// # Hot Reload
//
// Watch observes the config files and the API keys file. On change it loads
// the configuration again and publishes a new snapshot to the
// assetgate.SettingsStore. A reload that fails to parse or validate is logged
// and the previous snapshot stays in effect. Server settings such as the port
// only take effect on restart.
//
// # Validation
//
// Configuration is validated using struct tags and struct level rules:
//   - Port must be 1-65535
//   - Cache seconds, timeouts and clock skew cannot be negative
//   - Audit backend must be log, sqlite, or postgres; database backends need a DSN
//   - Rate limiting needs a positive rate when enabled
//   - Log level must be debug, info, warn, or error
package config
