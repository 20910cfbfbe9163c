package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jittakal/podstats/pkg/blobs"
)

// Ensure implementation satisfies interface at compile time.
var _ blobs.Store = (*MemoryStore)(nil)

// MemoryStore is an in-process blob store. It backs the "memory" storage
// backend used for local development and is the store of choice in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	obs   observer
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(metrics MetricsCollector) *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
		obs:   observer{backend: "memory", metrics: metrics},
	}
}

// Put stores a copy of data at key.
func (s *MemoryStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = bytes.Clone(data)
}

// Delete removes key if present.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
}

// Get returns a reader over the blob stored at key.
func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, bool, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		s.obs.done("get", start, err)
		return nil, false, err
	}

	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()

	s.obs.done("get", start, nil)
	s.obs.shard(ok)
	if !ok {
		return nil, false, nil
	}
	return io.NopCloser(bytes.NewReader(data)), true, nil
}

// List returns all keys under prefix, sorted ascending.
func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		s.obs.done("list", start, err)
		return nil, err
	}

	s.mu.RLock()
	var keys []string
	for key := range s.blobs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	s.obs.done("list", start, nil)
	return keys, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
