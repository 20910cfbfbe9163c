package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jittakal/podstats/internal/config/dto"
	"github.com/jittakal/podstats/pkg/blobs"
)

// NewStore builds the blob store selected by cfg.Backend.
// Constructor errors never come with a typed-nil store.
func NewStore(ctx context.Context, cfg dto.StorageConfig, logger *slog.Logger, metrics MetricsCollector) (blobs.Store, error) {
	var (
		store blobs.Store
		err   error
	)
	switch cfg.Backend {
	case "file":
		store, err = NewFileStore(FileConfig{BasePath: cfg.File.BasePath}, logger, metrics)
	case "memory":
		store = NewMemoryStore(metrics)
	case "s3":
		store, err = NewS3Store(ctx, S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			BasePath:     cfg.S3.BasePath,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		}, logger, metrics)
	case "gcs":
		store, err = NewGCSStore(ctx, GCSConfig{
			Bucket:               cfg.GCS.Bucket,
			ProjectID:            cfg.GCS.ProjectID,
			BasePath:             cfg.GCS.BasePath,
			CredentialsFile:      cfg.GCS.CredentialsFile,
			CredentialsJSON:      cfg.GCS.CredentialsJSON,
			Endpoint:             cfg.GCS.Endpoint,
			UseDefaultCredential: cfg.GCS.UseDefaultCredential,
		}, logger, metrics)
	case "azure":
		store, err = NewAzureStore(AzureConfig{
			AccountName:        cfg.Azure.AccountName,
			AccountKey:         cfg.Azure.AccountKey,
			ContainerName:      cfg.Azure.Container,
			BasePath:           cfg.Azure.BasePath,
			Endpoint:           cfg.Azure.Endpoint,
			UseManagedIdentity: cfg.Azure.UseManagedIdentity,
		}, logger, metrics)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q (supported: file, memory, s3, gcs, azure)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
