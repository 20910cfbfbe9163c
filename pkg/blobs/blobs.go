// Package blobs defines the read-side contract of the key-value blob store
// that holds daily download shards.
//
// The query service never writes to the store; ingestion happens elsewhere.
package blobs

import (
	"context"
	"io"
)

// Store reads blobs by key and lists keys by prefix.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get opens a streaming reader for key. The boolean is false when no
	// blob exists at key, in which case the reader is nil and err is nil.
	// Callers must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, bool, error)

	// List returns all keys beginning with prefix in ascending
	// lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}
