package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout. Downloads stream, so
// it bounds the whole transfer; raise it with WithTimeout for large files.
const DefaultTimeout = 5 * time.Minute

// Client performs operations against an assetgate server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// newRequest builds a request carrying the configured credential. The API
// key is preferred when both are configured because the server never falls
// back from one scheme to the other.
func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	switch {
	case c.config.APIKey != "":
		req.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
	case c.config.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	return req, nil
}

func (c *Client) resourceURL(name string, attachment bool) string {
	u := c.config.Endpoint + "/resources/" + url.PathEscape(name)
	if attachment {
		u += "?download=true"
	}
	return u
}

// Download fetches a file. When LocalPath is "-" the open body is returned
// and the caller must close it; otherwise the body is written to disk and
// the returned reader is nil.
//
// With Resume set and a partial local file present, only the missing tail
// is requested. If-Range carries the local file's modification time, which
// Download sets to the server's Last-Modified, so a file that changed on
// the server is fetched whole again.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if strings.TrimSpace(opts.FileName) == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}
	if err := c.config.ValidateWithAuth(); err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Base(opts.FileName)
	}

	var offset int64
	var ifRange string
	if opts.Resume && localPath != "-" {
		if info, err := os.Stat(localPath); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
			offset = info.Size()
			ifRange = info.ModTime().UTC().Format(http.TimeFormat)
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(opts.FileName, opts.Attachment))
	if err != nil {
		return nil, nil, err
	}
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
		req.Header.Set("If-Range", ifRange)
	} else if opts.IfNoneMatch != "" {
		req.Header.Set("If-None-Match", opts.IfNoneMatch)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	result := &DownloadResult{
		FileName:    opts.FileName,
		LocalPath:   localPath,
		ETag:        resp.Header.Get("ETag"),
		ContentType: resp.Header.Get("Content-Type"),
		Disposition: resp.Header.Get("Content-Disposition"),
		Size:        resp.ContentLength,
	}
	if t, parseErr := http.ParseTime(resp.Header.Get("Last-Modified")); parseErr == nil {
		result.Modified = t
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		_ = resp.Body.Close()
		result.NotModified = true
		if result.ETag == "" {
			result.ETag = opts.IfNoneMatch
		}
		result.Size = 0
		return result, nil, nil

	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		_ = resp.Body.Close()
		total, ok := parseUnsatisfiedRange(resp.Header.Get("Content-Range"))
		if !ok || total != offset {
			return nil, nil, &APIError{StatusCode: resp.StatusCode, Code: "range_not_satisfiable"}
		}
		// The local file is already complete.
		result.Resumed = true
		result.Size = total
		return result, nil, nil

	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		start, total, ok := parseContentRange(resp.Header.Get("Content-Range"))
		if !ok || start != offset {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("download: unexpected content range %q", resp.Header.Get("Content-Range"))
		}
		result.Resumed = true
		result.Size = total

	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	// If stdout requested, return the body for the caller to handle
	if localPath == "-" {
		return result, resp.Body, nil
	}

	written, err := writeLocal(localPath, resp.Body, result.Resumed, result.Modified)
	_ = resp.Body.Close()
	result.Written = written
	if err != nil {
		return result, nil, err
	}

	return result, nil, nil
}

// writeLocal writes body to path, appending when resume is set. The file's
// modification time is set to modified even when the copy fails so that a
// later resume can send it as If-Range.
func writeLocal(path string, body io.Reader, resume bool, modified time.Time) (int64, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create directory: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resume {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(path, flags, 0o644) //#nosec G304 -- path is user-provided input
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}

	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	if !modified.IsZero() {
		_ = os.Chtimes(path, modified, modified)
	}

	if copyErr != nil {
		return written, fmt.Errorf("write file: %w", copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close file: %w", closeErr)
	}
	return written, nil
}

// Info returns the metadata of a remote file without downloading it.
func (c *Client) Info(ctx context.Context, name string) (*FileInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("info: %w", ErrEmptyPath)
	}
	if err := c.config.ValidateWithAuth(); err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodHead, c.resourceURL(name, false))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	info := &FileInfo{
		FileName:     name,
		ContentType:  resp.Header.Get("Content-Type"),
		Size:         resp.ContentLength,
		ETag:         resp.Header.Get("ETag"),
		CacheControl: resp.Header.Get("Cache-Control"),
	}
	if t, parseErr := http.ParseTime(resp.Header.Get("Last-Modified")); parseErr == nil {
		info.LastModified = t
	}

	return info, nil
}

// Health returns the server's detailed health.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.config.Endpoint+"/healthz")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var health HealthInfo
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &health, nil
}

// parseContentRange parses "bytes start-end/total".
func parseContentRange(v string) (start, total int64, ok bool) {
	rest, found := strings.CutPrefix(v, "bytes ")
	if !found {
		return 0, 0, false
	}
	span, size, found := strings.Cut(rest, "/")
	if !found {
		return 0, 0, false
	}
	first, _, found := strings.Cut(span, "-")
	if !found {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	total, err = strconv.ParseInt(size, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return start, total, true
}

// parseUnsatisfiedRange parses "bytes */total".
func parseUnsatisfiedRange(v string) (int64, bool) {
	size, found := strings.CutPrefix(v, "bytes */")
	if !found {
		return 0, false
	}
	total, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}

// parseServerError extracts the error code from a JSON error response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.Error
		apiErr.Detail = payload.Detail
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	msg := "server error: " + strconv.Itoa(e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested file does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when authentication fails (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrBadRequest is returned for rejected file names or parameters (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrRateLimited is returned when the server throttles the client (429).
	ErrRateLimited = &APIError{StatusCode: http.StatusTooManyRequests}
)
