// Package storage implements blob store readers.
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/blobs"
)

// Ensure implementation satisfies interface at compile time.
var _ blobs.Store = (*FileStore)(nil)

// FileConfig contains local filesystem configuration.
type FileConfig struct {
	BasePath string
}

// Validate validates file configuration.
func (c FileConfig) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("file base path is required")
	}
	return nil
}

// FileStore implements blobs.Store over a local directory tree. Keys map to
// slash-separated paths below the base path.
type FileStore struct {
	basePath string
	logger   *slog.Logger
	obs      observer
}

// NewFileStore creates a new filesystem blob store.
func NewFileStore(config FileConfig, logger *slog.Logger, metrics MetricsCollector) (*FileStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", config.BasePath)
	}

	logger.Info("filesystem store created", "base_path", config.BasePath)

	return &FileStore{
		basePath: config.BasePath,
		logger:   logger,
		obs:      observer{backend: "file", metrics: metrics},
	}, nil
}

// Get opens the file stored at key.
func (s *FileStore) Get(ctx context.Context, key string) (rc io.ReadCloser, found bool, err error) {
	start := time.Now()
	defer func() { s.obs.done("get", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, false, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.obs.shard(false)
			return nil, false, nil
		}
		return nil, false, &errors.StorageError{Backend: "file", Operation: "get", Key: key, Err: err}
	}

	s.obs.shard(true)
	return file, true, nil
}

// List returns all keys under prefix, sorted ascending.
func (s *FileStore) List(ctx context.Context, prefix string) (keys []string, err error) {
	start := time.Now()
	defer func() { s.obs.done("list", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Walk the deepest directory fully named by the prefix, then filter.
	dir := prefix
	if !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
	}
	searchDir, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(searchDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, &errors.StorageError{Backend: "file", Operation: "list", Key: prefix, Err: err}
	}

	sort.Strings(keys)
	return keys, nil
}

// resolve maps a key to a path inside the base path.
func (s *FileStore) resolve(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned != "/"+strings.TrimSuffix(key, "/") && key != "." && key != "" {
		return "", &errors.MalformedKeyError{Key: key, Reason: "key is not a clean relative path"}
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleaned)), nil
}

// Close closes the store.
func (s *FileStore) Close() error {
	s.logger.Info("closing filesystem store")
	return nil
}
