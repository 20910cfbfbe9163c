// Package storage implements S3 blob store reader.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/blobs"
)

// Ensure implementation satisfies interface at compile time.
var _ blobs.Store = (*S3Store)(nil)

// S3Config contains AWS S3 configuration.
type S3Config struct {
	Bucket       string
	Region       string
	BasePath     string
	Endpoint     string
	UsePathStyle bool
}

// Validate validates S3 configuration.
func (c S3Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("s3 region is required")
	}
	return nil
}

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Store implements blobs.Store for AWS S3 and S3-compatible endpoints.
// S3 lists keys in ascending UTF-8 binary order, which satisfies the
// ordering contract of blobs.Store.
type S3Store struct {
	client   s3API
	bucket   string
	basePath string
	logger   *slog.Logger
	obs      observer
}

// NewS3Store creates a new S3 blob store.
func NewS3Store(ctx context.Context, cfg S3Config, logger *slog.Logger, metrics MetricsCollector) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info("S3 store created",
		"bucket", cfg.Bucket,
		"region", cfg.Region,
		"base_path", cfg.BasePath,
	)

	return newS3StoreWithClient(s3Client, cfg, logger, metrics), nil
}

func newS3StoreWithClient(client s3API, cfg S3Config, logger *slog.Logger, metrics MetricsCollector) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: normalizeBasePath(cfg.BasePath),
		logger:   logger,
		obs:      observer{backend: "s3", metrics: metrics},
	}
}

// Get streams the object stored at key.
func (s *S3Store) Get(ctx context.Context, key string) (rc io.ReadCloser, found bool, err error) {
	start := time.Now()
	defer func() { s.obs.done("get", start, err) }()

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.basePath + key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			s.obs.shard(false)
			return nil, false, nil
		}
		return nil, false, &apperrors.StorageError{Backend: "s3", Operation: "get", Key: key, Err: err}
	}

	s.obs.shard(true)
	return resp.Body, true, nil
}

// List returns all keys under prefix.
func (s *S3Store) List(ctx context.Context, prefix string) (keys []string, err error) {
	start := time.Now()
	defer func() { s.obs.done("list", start, err) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.basePath + prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &apperrors.StorageError{Backend: "s3", Operation: "list", Key: prefix, Err: err}
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), s.basePath))
		}
	}

	return keys, nil
}

// Close closes the S3 store.
func (s *S3Store) Close() error {
	s.logger.Info("closing S3 store")
	return nil
}

// normalizeBasePath returns "" or a slash-terminated path without a leading slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
