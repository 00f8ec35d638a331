package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/assetgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "assetgate",
	Short:   "Authenticated file download server",
	Long: `assetgate serves files from a single directory to clients that
authenticate with an API key or a signed bearer token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

var configFiles []string

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&configFiles, "config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("assets-root", "", "asset directory (default: ./assets, env: ASSETGATE_ASSETS_ROOT_PATH)")
	rootCmd.PersistentFlags().String("keys-file", "", "API key records file (env: ASSETGATE_AUTH_API_KEYS_KEYS_FILE)")
	rootCmd.PersistentFlags().String("audit-backend", "", "audit backend: log, sqlite, postgres (default: log, env: ASSETGATE_AUDIT_BACKEND)")
	rootCmd.PersistentFlags().String("audit-dsn", "", "audit database connection string (env: ASSETGATE_AUDIT_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
