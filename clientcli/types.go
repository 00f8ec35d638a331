package clientcli

import "time"

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	FileName string
	// LocalPath is where the file is written. Empty derives it from FileName,
	// "-" returns the body to the caller instead.
	LocalPath string
	// Attachment asks the server for Content-Disposition: attachment.
	Attachment bool
	// IfNoneMatch is sent as If-None-Match. A match yields NotModified.
	IfNoneMatch string
	// Resume continues a partial local file with a Range request.
	Resume bool
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	FileName    string    `json:"file_name"`
	LocalPath   string    `json:"local_path"`
	ETag        string    `json:"etag"`
	ContentType string    `json:"content_type,omitempty"`
	Disposition string    `json:"disposition,omitempty"`
	Size        int64     `json:"size_bytes"`
	Written     int64     `json:"written_bytes"`
	NotModified bool      `json:"not_modified,omitempty"`
	Resumed     bool      `json:"resumed,omitempty"`
	Modified    time.Time `json:"last_modified,omitzero"`
}

// FileInfo is the metadata of a remote file.
type FileInfo struct {
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size_bytes"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
	CacheControl string    `json:"cache_control,omitempty"`
}

// HealthInfo mirrors the server's /healthz response.
type HealthInfo struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Runtime     string    `json:"runtime"`
	Environment string    `json:"environment"`
}
