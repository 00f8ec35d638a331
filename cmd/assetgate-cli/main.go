package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sagarc03/assetgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	apiKey      string
	apiKeyHdr   string
	token       string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "assetgate-cli",
	Version: version,
	Short:   "Client for the assetgate download server",
	Long: `assetgate-cli - Client for the assetgate download server

Credentials are resolved from, in increasing precedence:
  1. the selected profile in the config file (--profile, ASSETGATE_PROFILE)
  2. environment variables (ASSETGATE_ENDPOINT, ASSETGATE_API_KEY, ASSETGATE_TOKEN)
  3. command line flags

An API key takes precedence over a bearer token when both are set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.assetgate/config.yaml, env: ASSETGATE_CLIENT_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: ASSETGATE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: ASSETGATE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "k", "", "API key (env: ASSETGATE_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&apiKeyHdr, "api-key-header", "", "header carrying the API key (default: X-API-Key)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token (env: ASSETGATE_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from the flag, the
// environment, or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			switch {
			case profileErr == nil:
				configs = append(configs, clientcli.ConfigFromProfile(p))
			case name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles):
				return nil, profileErr
			}
		case name != "":
			// A named profile needs its file.
			return nil, fmt.Errorf("load config: %w", err)
		case cfgFile != "":
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{
		Endpoint:     endpoint,
		APIKey:       apiKey,
		APIKeyHeader: apiKeyHdr,
		Token:        token,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg)
}
