package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter formats results for output.
type Formatter interface {
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatInfo(w io.Writer, info *FileInfo) error
	FormatHealth(w io.Writer, health *HealthInfo) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}

	switch {
	case result.NotModified:
		_, _ = fmt.Fprintf(w, "Not modified: %s (%s is up to date)\n", result.FileName, result.LocalPath)
	case result.Resumed && result.Written == 0:
		_, _ = fmt.Fprintf(w, "Complete: %s -> %s (%s)\n", result.FileName, result.LocalPath, formatSize(result.Size))
	case result.Resumed:
		_, _ = fmt.Fprintf(w, "Resumed: %s -> %s (%s of %s)\n", result.FileName, result.LocalPath, formatSize(result.Written), formatSize(result.Size))
	case result.LocalPath == "-":
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.FileName, formatSize(result.Size))
	default:
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.FileName, result.LocalPath, formatSize(result.Written))
	}
	if result.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

// FormatInfo formats file metadata as human-readable text.
func (f *HumanFormatter) FormatInfo(w io.Writer, info *FileInfo) error {
	_, _ = fmt.Fprintf(w, "File:          %s\n", info.FileName)
	_, _ = fmt.Fprintf(w, "Content-Type:  %s\n", info.ContentType)
	_, _ = fmt.Fprintf(w, "Size:          %s (%d bytes)\n", formatSize(info.Size), info.Size)
	_, _ = fmt.Fprintf(w, "Last-Modified: %s\n", info.LastModified.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "ETag:          %s\n", info.ETag)
	if info.CacheControl != "" {
		_, _ = fmt.Fprintf(w, "Cache-Control: %s\n", info.CacheControl)
	}
	return nil
}

// FormatHealth formats server health as human-readable text.
func (f *HumanFormatter) FormatHealth(w io.Writer, health *HealthInfo) error {
	_, _ = fmt.Fprintf(w, "Status:      %s\n", health.Status)
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Version:     %s\n", health.Version)
	_, _ = fmt.Fprintf(w, "Runtime:     %s\n", health.Runtime)
	_, _ = fmt.Fprintf(w, "Environment: %s\n", health.Environment)
	_, _ = fmt.Fprintf(w, "Timestamp:   %s\n", health.Timestamp.Format(time.RFC3339))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatInfo formats file metadata as JSON.
func (f *JSONFormatter) FormatInfo(w io.Writer, info *FileInfo) error {
	return writeJSON(w, info)
}

// FormatHealth formats server health as JSON.
func (f *JSONFormatter) FormatHealth(w io.Writer, health *HealthInfo) error {
	return writeJSON(w, health)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// credentialSummary describes which credential a profile carries.
func credentialSummary(p *Profile, showSecrets bool) string {
	switch {
	case p.APIKey != "":
		return "api key " + maskSecret(p.APIKey, showSecrets)
	case p.Token != "":
		return "token " + maskSecret(p.Token, showSecrets)
	default:
		return "(none)"
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	// Calculate column widths
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxEndpointLen = max(maxEndpointLen, len(profiles[i].Endpoint))
	}
	maxNameLen = min(maxNameLen, 20)
	maxEndpointLen = min(maxEndpointLen, 50)

	// Print header
	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "CREDENTIAL")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	// Print profiles
	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, credentialSummary(p, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:       %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:   %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "API Key:    %s\n", maskSecret(profile.APIKey, showSecrets))
	if profile.APIKeyHeader != "" {
		_, _ = fmt.Fprintf(w, "Key Header: %s\n", profile.APIKeyHeader)
	}
	_, _ = fmt.Fprintf(w, "Token:      %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

type jsonProfile struct {
	Name         string `json:"name"`
	Endpoint     string `json:"endpoint"`
	APIKey       string `json:"api_key,omitempty"`
	APIKeyHeader string `json:"api_key_header,omitempty"`
	Token        string `json:"token,omitempty"`
	Default      bool   `json:"default"`
}

func toJSONProfile(p *Profile, isDefault, showSecrets bool) jsonProfile {
	jp := jsonProfile{
		Name:         p.Name,
		Endpoint:     p.Endpoint,
		APIKeyHeader: p.APIKeyHeader,
		Default:      isDefault,
	}
	if p.APIKey != "" {
		jp.APIKey = maskSecret(p.APIKey, showSecrets)
	}
	if p.Token != "" {
		jp.Token = maskSecret(p.Token, showSecrets)
	}
	return jp
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = toJSONProfile(&profiles[i], profiles[i].Name == defaultName, showSecrets)
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, toJSONProfile(&profile, isDefault, showSecrets))
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
