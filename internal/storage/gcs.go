// Package storage implements Google Cloud Storage blob store reader.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	apperrors "github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/blobs"
)

// Ensure implementation satisfies interface at compile time.
var _ blobs.Store = (*GCSStore)(nil)

// GCSConfig contains Google Cloud Storage configuration.
type GCSConfig struct {
	Bucket               string
	ProjectID            string
	BasePath             string
	CredentialsFile      string
	CredentialsJSON      string
	Endpoint             string
	UseDefaultCredential bool
}

// Validate validates GCS configuration.
func (c GCSConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("gcs bucket is required")
	}
	return nil
}

// GCSStore implements blobs.Store for Google Cloud Storage.
// It supports multiple authentication methods (service account file, JSON, default credentials).
// Object listings are returned in lexicographic order by name.
type GCSStore struct {
	client   *storage.Client
	bucket   string
	basePath string
	logger   *slog.Logger
	obs      observer
}

// NewGCSStore creates a new Google Cloud Storage blob store.
func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *slog.Logger, metrics MetricsCollector) (*GCSStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var clientOpts []option.ClientOption
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}

	if cfg.UseDefaultCredential {
		// GOOGLE_APPLICATION_CREDENTIALS or the attached service account
		logger.Info("using default GCP credentials")
	} else if cfg.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		logger.Info("using GCP credentials from JSON string")
	} else if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Info("using GCP credentials from file", "file", cfg.CredentialsFile)
	} else {
		logger.Info("no explicit credentials provided, using default GCP credentials")
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	logger.Info("GCS store created",
		"bucket", cfg.Bucket,
		"project_id", cfg.ProjectID,
		"base_path", cfg.BasePath,
	)

	return &GCSStore{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: normalizeBasePath(cfg.BasePath),
		logger:   logger,
		obs:      observer{backend: "gcs", metrics: metrics},
	}, nil
}

// Get streams the object stored at key.
func (s *GCSStore) Get(ctx context.Context, key string) (rc io.ReadCloser, found bool, err error) {
	start := time.Now()
	defer func() { s.obs.done("get", start, err) }()

	reader, err := s.client.Bucket(s.bucket).Object(s.basePath + key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			s.obs.shard(false)
			return nil, false, nil
		}
		return nil, false, &apperrors.StorageError{Backend: "gcs", Operation: "get", Key: key, Err: err}
	}

	s.obs.shard(true)
	return reader, true, nil
}

// List returns all object names under prefix.
func (s *GCSStore) List(ctx context.Context, prefix string) (keys []string, err error) {
	start := time.Now()
	defer func() { s.obs.done("list", start, err) }()

	query := &storage.Query{Prefix: s.basePath + prefix}
	if err := query.SetAttrSelection([]string{"Name"}); err != nil {
		return nil, fmt.Errorf("failed to set attribute selection: %w", err)
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &apperrors.StorageError{Backend: "gcs", Operation: "list", Key: prefix, Err: err}
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, s.basePath))
	}

	return keys, nil
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	s.logger.Info("closing GCS store")
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
