package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/config"
	"github.com/sagarc03/assetgate/keybackend"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
	Long: `Generate API keys and compute the digests stored in configuration.

Only the SHA-256 digest of a key is ever configured. The raw key is shown
once by "keys generate" and must be handed to the client.`,
}

var keysHashCmd = &cobra.Command{
	Use:   "hash [raw-key]",
	Short: "Print the digest of a raw API key",
	Long: `Print the lowercase hex SHA-256 digest of a raw API key. Surrounding
whitespace is ignored. Without an argument the key is read from a masked prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeysHash,
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API key",
	Long: `Generate a random API key and print it with the configuration record
to add under auth.api_keys.keys.inline or to the keys file.`,
	Args: cobra.NoArgs,
	RunE: runKeysGenerate,
}

var keysCheckCmd = &cobra.Command{
	Use:   "check [raw-key]",
	Short: "Check a raw API key against the current configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeysCheck,
}

var (
	generateKeyID string
	generateOwner string
)

func init() {
	keysGenerateCmd.Flags().StringVar(&generateKeyID, "id", "", "key id (required)")
	keysGenerateCmd.Flags().StringVar(&generateOwner, "owner", "", "human readable owner")
	_ = keysGenerateCmd.MarkFlagRequired("id")

	keysCmd.AddCommand(keysHashCmd, keysGenerateCmd, keysCheckCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysHash(cmd *cobra.Command, args []string) error {
	raw, err := rawKeyArg(args)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), assetgate.Digest(raw))
	return nil
}

func runKeysGenerate(cmd *cobra.Command, args []string) error {
	raw, record, err := keybackend.GenerateKey(generateKeyID, generateOwner)
	if err != nil {
		return err
	}

	snippet, err := yaml.Marshal([]assetgate.APIKeyRecord{record})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "API key (shown once): %s\n\n", raw)
	_, _ = fmt.Fprintf(out, "Configuration record:\n%s", snippet)
	return nil
}

func runKeysCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	raw, err := rawKeyArg(args)
	if err != nil {
		return err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return fmt.Errorf("build settings: %w", err)
	}

	validator := assetgate.NewAPIKeyValidator(keybackend.NewDirectory(assetgate.NewSettingsStore(settings)))
	principal, err := validator.Validate(raw)
	if err != nil {
		return fmt.Errorf("key rejected: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "valid: key_id=%s owner=%q\n", principal.SubjectID, principal.DisplayName)
	return nil
}

// rawKeyArg returns the key given as argument, or prompts for it.
func rawKeyArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	prompt := promptui.Prompt{
		Label: "API key",
		Mask:  '*',
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("key cannot be empty")
			}
			return nil
		},
	}

	raw, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", errors.New("cancelled")
		}
		return "", fmt.Errorf("read key: %w", err)
	}

	return raw, nil
}
