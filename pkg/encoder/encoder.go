// Package encoder defines interfaces for encoding download events to archive file formats.
package encoder

import (
	"io"

	"github.com/jittakal/podstats/pkg/download"
)

// FileFormat represents an archive file format.
type FileFormat string

const (
	FormatParquet FileFormat = "parquet"
	FormatAvro    FileFormat = "avro"
)

// FileStats describes a written archive file.
type FileStats struct {
	RecordCount int
	SizeBytes   int64
}

// Encoder encodes download events to a specific file format.
type Encoder interface {
	// Encode writes events to a file and returns file statistics.
	Encode(filePath string, events []download.Event) (*FileStats, error)

	// EncodeTo writes events to w and returns the number of events written.
	EncodeTo(w io.Writer, events []download.Event) (int, error)

	// Format returns the file format this encoder produces.
	Format() FileFormat

	// FileExtension returns the file extension (e.g., ".parquet", ".avro").
	FileExtension() string
}
