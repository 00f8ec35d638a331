// Package filesystem provides the read-only asset store for assetgate.
// Every lookup is resolved through an os.Root opened on the configured asset
// directory, so symlinks and names cannot reach files outside it.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sagarc03/assetgate"
)

// Store resolves sanitized file names to metadata and read streams.
type Store struct {
	settings assetgate.SettingsProvider
}

// NewStore creates a Store that reads the asset root path from settings on
// every call, so a reloaded root takes effect for the next request.
func NewStore(settings assetgate.SettingsProvider) *Store {
	return &Store{settings: settings}
}

// GetMetadata returns the metadata of a regular file directly inside the
// asset root. Returns assetgate.ErrNotFound for a missing file, a directory,
// an unresolvable symlink, or a name that would resolve outside the root.
func (s *Store) GetMetadata(ctx context.Context, name string) (assetgate.AssetMetadata, error) {
	if err := ctx.Err(); err != nil {
		return assetgate.AssetMetadata{}, err
	}

	var info fs.FileInfo
	err := s.withRoot(name, func(root *os.Root) error {
		var statErr error
		info, statErr = root.Stat(name)
		return statErr
	})
	if err != nil {
		return assetgate.AssetMetadata{}, err
	}
	if !info.Mode().IsRegular() {
		return assetgate.AssetMetadata{}, assetgate.ErrNotFound
	}

	lastModified := info.ModTime().UTC()

	return assetgate.AssetMetadata{
		FileName:        info.Name(),
		ContentType:     ContentTypeFor(info.Name()),
		SizeBytes:       info.Size(),
		LastModifiedUTC: lastModified,
		ETag:            assetgate.ValidationToken(info.Size(), lastModified),
	}, nil
}

// Open opens a regular file inside the asset root for reading. Reads on the
// returned stream fail once ctx is done. The caller must close it.
func (s *Store) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var f *os.File
	err := s.withRoot(name, func(root *os.Root) error {
		var openErr error
		f, openErr = root.Open(name)
		return openErr
	})
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		closeFile(f, name)
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		closeFile(f, name)
		return nil, assetgate.ErrNotFound
	}

	return &ctxFile{ctx: ctx, f: f}, nil
}

// withRoot opens the configured root, runs fn and closes the root again.
// Handles opened by fn stay valid after the root is closed.
func (s *Store) withRoot(name string, fn func(root *os.Root) error) error {
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return assetgate.ErrNotFound
	}

	root, err := os.OpenRoot(s.settings.Current().Assets.RootPath)
	if err != nil {
		return fmt.Errorf("open asset root: %w", err)
	}
	defer func() {
		if closeErr := root.Close(); closeErr != nil {
			slog.Warn("failed to close asset root", "err", closeErr)
		}
	}()

	if err := fn(root); err != nil {
		if isRootPathError(err) {
			return assetgate.ErrNotFound
		}
		return fmt.Errorf("resolve asset: %w", err)
	}

	return nil
}

// isRootPathError reports whether os.Root refused or failed to resolve the
// name: a missing file, a symlink leaving the root, a symlink loop or a
// component that is not a directory. All of these read as a missing asset.
func isRootPathError(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}

func closeFile(f *os.File, name string) {
	if err := f.Close(); err != nil {
		slog.Warn("failed to close file", "file", name, "err", err)
	}
}

type ctxFile struct {
	ctx context.Context
	f   *os.File
}

func (c *ctxFile) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.f.Read(p)
}

func (c *ctxFile) Seek(offset int64, whence int) (int64, error) {
	return c.f.Seek(offset, whence)
}

func (c *ctxFile) Close() error {
	return c.f.Close()
}
