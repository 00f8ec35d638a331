package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sagarc03/assetgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput     string
	downloadStdout     bool
	downloadAttachment bool
	downloadResume     bool
	downloadNoCache    bool
	downloadCachePath  string
)

var downloadCmd = &cobra.Command{
	Use:   "download <file-name> [local-path]",
	Short: "Download a file from the server",
	Long: `Download a file from the server.

The server's ETag for each downloaded file is remembered, and a later
download of the same file to the same place is sent as a conditional
request. An unchanged file is not transferred again.

Examples:
  assetgate-cli download report.csv
  assetgate-cli download report.csv ./reports/latest.csv
  assetgate-cli download --stdout data.json | jq .
  assetgate-cli download --resume backup.tar.gz`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.Flags().BoolVar(&downloadAttachment, "attachment", false, "request Content-Disposition: attachment")
	downloadCmd.Flags().BoolVar(&downloadResume, "resume", false, "continue a partial local file")
	downloadCmd.Flags().BoolVar(&downloadNoCache, "no-cache", false, "always transfer the file, ignoring remembered ETags")
	downloadCmd.Flags().StringVar(&downloadCachePath, "etag-cache", "", "ETag cache file (default: ~/.assetgate/etags.yaml)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	fileName := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}
	if localPath == "" {
		localPath = filepath.Base(fileName)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.DownloadOptions{
		FileName:   fileName,
		LocalPath:  localPath,
		Attachment: downloadAttachment,
		Resume:     downloadResume,
	}

	var cache *clientcli.ETagCache
	if !downloadNoCache && localPath != "-" {
		cachePath := downloadCachePath
		if cachePath == "" {
			cachePath = clientcli.DefaultETagCachePath()
		}
		if cachePath != "" {
			cache, err = clientcli.LoadETagCache(cachePath)
			if err != nil {
				return err
			}
			if etag, ok := cache.Lookup(client.Endpoint(), fileName, localPath); ok && !downloadResume {
				opts.IfNoneMatch = etag
			}
		}
	}

	result, reader, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return err
	}

	formatter := getFormatter()

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(cmd.OutOrStdout(), reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays the file's bytes.
		if jsonOutput {
			return formatter.FormatDownload(cmd.ErrOrStderr(), result)
		}
		return nil
	}

	if cache != nil && !result.NotModified && result.ETag != "" {
		if err := cache.Store(client.Endpoint(), fileName, localPath, result.ETag); err == nil {
			if err := cache.Save(); err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
		}
	}

	return formatter.FormatDownload(cmd.OutOrStdout(), result)
}
