package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jittakal/podstats/internal/config/dto"
)

func TestNewStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := t.TempDir()

	tests := []struct {
		name    string
		cfg     dto.StorageConfig
		want    string
		wantErr bool
	}{
		{name: "file", cfg: dto.StorageConfig{Backend: "file", File: dto.FileConfig{BasePath: base}}, want: "*storage.FileStore"},
		{name: "memory", cfg: dto.StorageConfig{Backend: "memory"}, want: "*storage.MemoryStore"},
		{name: "file missing path", cfg: dto.StorageConfig{Backend: "file"}, wantErr: true},
		{name: "s3 invalid", cfg: dto.StorageConfig{Backend: "s3"}, wantErr: true},
		{name: "gcs invalid", cfg: dto.StorageConfig{Backend: "gcs"}, wantErr: true},
		{name: "azure invalid", cfg: dto.StorageConfig{Backend: "azure"}, wantErr: true},
		{name: "unknown", cfg: dto.StorageConfig{Backend: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(context.Background(), tt.cfg, logger, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			defer store.Close()

			got := ""
			switch store.(type) {
			case *FileStore:
				got = "*storage.FileStore"
			case *MemoryStore:
				got = "*storage.MemoryStore"
			}
			if got != tt.want {
				t.Errorf("store type = %T, want %s", store, tt.want)
			}
		})
	}
}
