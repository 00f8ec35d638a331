package main

import (
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file-name>",
	Short: "Show a file's metadata without downloading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		info, err := client.Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return getFormatter().FormatInfo(cmd.OutOrStdout(), info)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Long: `Show server health from /healthz.

Credentials are sent when configured; servers that require authentication
for health checks reject anonymous requests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		health, err := client.Health(cmd.Context())
		if err != nil {
			return err
		}

		return getFormatter().FormatHealth(cmd.OutOrStdout(), health)
	},
}
