package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// LocalStore keeps blobs on the local filesystem as <Root>/<container>/<path>.
type LocalStore struct {
	basePath string
}

// NewLocalStore opens a store rooted at the Root key of the connection
// string.
func NewLocalStore(connectionString string) (*LocalStore, error) {
	params, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	root, err := params.Require("Root")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: root}, nil
}

// resolve maps container and path onto the filesystem and refuses anything
// that would escape the container directory.
func (ls *LocalStore) resolve(container, path string) (string, error) {
	if container == "" || strings.ContainsAny(container, `/\`) || container == "." || container == ".." {
		return "", fmt.Errorf("invalid container name %q", container)
	}
	dir := filepath.Join(ls.basePath, container)
	full := filepath.Join(dir, filepath.FromSlash(path))
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return full, nil
}

// Exists stats the file.
func (ls *LocalStore) Exists(ctx context.Context, container, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := ls.resolve(container, path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return !info.IsDir(), nil
}

// Get reads the file.
func (ls *LocalStore) Get(ctx context.Context, container, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := ls.resolve(container, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Put writes through a temporary file and renames it into place so readers
// never observe a partial blob.
func (ls *LocalStore) Put(ctx context.Context, container, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := ls.resolve(container, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := fmt.Sprintf("%s.tmp.%d", full, time.Now().UnixNano())
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, full); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to move file to final location: %w", err)
	}

	log.Debug().
		Str("container", container).
		Str("path", path).
		Str("content_type", contentType).
		Int("bytes_written", len(data)).
		Msg("file stored")
	return nil
}

// Delete removes the file.
func (ls *LocalStore) Delete(ctx context.Context, container, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := ls.resolve(container, path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (ls *LocalStore) Close() error { return nil }
