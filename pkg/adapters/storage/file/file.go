package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aescanero/dagoc/pkg/domain"
	"go.uber.org/zap"
)

const bundleExt = ".bundle"

// BundleStore implements ports.BundleStore with one file per bundle in a
// directory. Put writes a temp file in the same directory, syncs it and
// renames it over the entry, so readers see the old or the new bundle and
// never a partial one.
type BundleStore struct {
	dir    string
	logger *zap.Logger
}

// NewBundleStore creates the cache directory if needed.
func NewBundleStore(dir string, logger *zap.Logger) (*BundleStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &BundleStore{dir: dir, logger: logger}, nil
}

// Get returns the encoded bundle stored under key.
func (s *BundleStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, key)
		}
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return data, nil
}

// Put atomically replaces the entry for key.
func (s *BundleStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace bundle: %w", err)
	}
	committed = true

	s.logger.Debug("bundle saved",
		zap.String("hash", key),
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return nil
}

// Delete removes the entry for key. Missing keys are not an error.
func (s *BundleStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}
	return nil
}

// List returns every stored key, sorted. Staging files are skipped.
func (s *BundleStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, bundleExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, bundleExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// path maps key to its file, rejecting keys that could escape the directory.
func (s *BundleStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid bundle key %q", key)
	}
	return filepath.Join(s.dir, key+bundleExt), nil
}
