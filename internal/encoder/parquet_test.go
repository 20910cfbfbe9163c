package encoder

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/jittakal/podstats/pkg/encoder"
	"github.com/parquet-go/parquet-go"
)

func TestParquetEncoder_FormatAndExtension(t *testing.T) {
	enc := NewParquetEncoder("snappy")
	if enc.Format() != encoder.FormatParquet {
		t.Errorf("Format() = %v, want %v", enc.Format(), encoder.FormatParquet)
	}
	if enc.FileExtension() != ".parquet" {
		t.Errorf("FileExtension() = %q, want .parquet", enc.FileExtension())
	}
}

func TestParquetEncoder_Compressions(t *testing.T) {
	for _, compression := range []string{"snappy", "gzip", "lz4", "zstd", "uncompressed", "unknown"} {
		t.Run(compression, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := NewParquetEncoder(compression).EncodeTo(&buf, sampleEvents())
			if err != nil {
				t.Fatalf("EncodeTo() error = %v", err)
			}
			if n != 2 {
				t.Errorf("EncodeTo() = %d, want 2", n)
			}
			if buf.Len() == 0 {
				t.Error("expected non-empty output")
			}
		})
	}
}

func TestParquetEncoder_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads.parquet")
	events := sampleEvents()

	stats, err := NewParquetEncoder("snappy").Encode(path, events)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if stats.RecordCount != len(events) {
		t.Errorf("RecordCount = %d, want %d", stats.RecordCount, len(events))
	}
	if stats.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d, want > 0", stats.SizeBytes)
	}

	rows, err := parquet.ReadFile[DownloadParquet](path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.EpisodeID != "ep-1" || first.AgentName != "Overcast" || first.MetroCode != "807" {
		t.Errorf("unexpected first row: %+v", first)
	}
	want := time.Date(2024, 3, 5, 14, 7, 9, 123e6, time.UTC)
	if first.EventTime == nil || !first.EventTime.Equal(want) {
		t.Errorf("EventTime = %v, want %v", first.EventTime, want)
	}

	second := rows[1]
	if second.BotType != "crawler" {
		t.Errorf("BotType = %q, want crawler", second.BotType)
	}
	if second.EventTime != nil {
		t.Errorf("EventTime = %v, want nil", second.EventTime)
	}
}

func TestParquetEncoder_EmptyEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if _, err := NewParquetEncoder("snappy").Encode(path, nil); err == nil {
		t.Error("expected error for empty events")
	}
}

func TestParquetEncoder_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.parquet")
	if _, err := NewParquetEncoder("snappy").Encode(path, sampleEvents()); err == nil {
		t.Error("expected error for unwritable path")
	}
}
