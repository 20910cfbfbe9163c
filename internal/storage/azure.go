// Package storage implements Azure Blob storage reader.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	apperrors "github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/blobs"
)

// Ensure implementation satisfies interface at compile time.
var _ blobs.Store = (*AzureStore)(nil)

// AzureConfig contains Azure Blob Storage configuration.
type AzureConfig struct {
	AccountName        string
	AccountKey         string
	ContainerName      string
	BasePath           string
	Endpoint           string
	UseManagedIdentity bool
}

// Validate validates Azure configuration.
func (c AzureConfig) Validate() error {
	if c.AccountName == "" {
		return fmt.Errorf("azure account name is required")
	}
	if c.ContainerName == "" {
		return fmt.Errorf("azure container is required")
	}
	if !c.UseManagedIdentity && c.AccountKey == "" {
		return fmt.Errorf("azure account key is required unless managed identity is used")
	}
	return nil
}

// AzureStore implements blobs.Store for Azure Blob Storage.
// It supports both managed identity and access key authentication.
// Flat blob listings are returned in lexicographic order by name.
type AzureStore struct {
	client        *azblob.Client
	containerName string
	basePath      string
	logger        *slog.Logger
	obs           observer
}

// NewAzureStore creates a new Azure Blob store.
func NewAzureStore(cfg AzureConfig, logger *slog.Logger, metrics MetricsCollector) (*AzureStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		client *azblob.Client
		err    error
	)
	if cfg.UseManagedIdentity {
		serviceURL := cfg.Endpoint
		if serviceURL == "" {
			serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
		}
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
	} else {
		var connectionString string
		if cfg.Endpoint != "" {
			connectionString = fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;BlobEndpoint=%s",
				cfg.AccountName, cfg.AccountKey, cfg.Endpoint)
		} else {
			connectionString = fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net",
				cfg.AccountName, cfg.AccountKey)
		}
		client, err = azblob.NewClientFromConnectionString(connectionString, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	logger.Info("Azure store created",
		"container", cfg.ContainerName,
		"account", cfg.AccountName,
		"managed_identity", cfg.UseManagedIdentity,
	)

	return &AzureStore{
		client:        client,
		containerName: cfg.ContainerName,
		basePath:      normalizeBasePath(cfg.BasePath),
		logger:        logger,
		obs:           observer{backend: "azure", metrics: metrics},
	}, nil
}

// Get streams the blob stored at key.
func (s *AzureStore) Get(ctx context.Context, key string) (rc io.ReadCloser, found bool, err error) {
	start := time.Now()
	defer func() { s.obs.done("get", start, err) }()

	resp, err := s.client.DownloadStream(ctx, s.containerName, s.basePath+key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			s.obs.shard(false)
			return nil, false, nil
		}
		return nil, false, &apperrors.StorageError{Backend: "azure", Operation: "get", Key: key, Err: err}
	}

	s.obs.shard(true)
	return resp.Body, true, nil
}

// List returns all blob names under prefix.
func (s *AzureStore) List(ctx context.Context, prefix string) (keys []string, err error) {
	start := time.Now()
	defer func() { s.obs.done("list", start, err) }()

	fullPrefix := s.basePath + prefix
	pager := s.client.NewListBlobsFlatPager(s.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &fullPrefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &apperrors.StorageError{Backend: "azure", Operation: "list", Key: prefix, Err: err}
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			keys = append(keys, strings.TrimPrefix(*item.Name, s.basePath))
		}
	}

	return keys, nil
}

// Close closes the Azure store.
func (s *AzureStore) Close() error {
	s.logger.Info("Azure store closed")
	return nil
}
