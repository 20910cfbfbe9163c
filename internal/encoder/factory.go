package encoder

import (
	"fmt"
	"io"
	"os"

	"github.com/jittakal/podstats/pkg/download"
	"github.com/jittakal/podstats/pkg/encoder"
)

// Factory creates encoders based on format and configuration.
type Factory struct {
	format      encoder.FileFormat
	compression string
}

// NewFactory creates a new encoder factory. An empty compression selects
// DefaultCompression for the format.
func NewFactory(format encoder.FileFormat, compression string) *Factory {
	if compression == "" {
		compression = DefaultCompression(format)
	}
	return &Factory{
		format:      format,
		compression: compression,
	}
}

// CreateEncoder creates an encoder based on the configured format.
func (f *Factory) CreateEncoder() (encoder.Encoder, error) {
	switch f.format {
	case encoder.FormatParquet:
		return NewParquetEncoder(f.compression), nil
	case encoder.FormatAvro:
		return NewAvroEncoder(f.compression)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", f.format)
	}
}

// SupportedFormats returns a list of supported file formats.
func SupportedFormats() []encoder.FileFormat {
	return []encoder.FileFormat{
		encoder.FormatParquet,
		encoder.FormatAvro,
	}
}

// SupportedCompressions returns supported compression codecs for a given format.
func SupportedCompressions(format encoder.FileFormat) []string {
	switch format {
	case encoder.FormatParquet:
		return []string{"uncompressed", "snappy", "gzip", "lz4", "zstd"}
	case encoder.FormatAvro:
		return []string{"null", "gzip", "deflate", "snappy"}
	default:
		return []string{}
	}
}

// DefaultCompression returns the default compression for a format.
func DefaultCompression(format encoder.FileFormat) string {
	switch format {
	case encoder.FormatParquet:
		return "snappy"
	case encoder.FormatAvro:
		return "null"
	default:
		return "uncompressed"
	}
}

// encodeFile creates filePath, streams events into it with encode and
// reports the resulting file size.
func encodeFile(filePath string, events []download.Event, encode func(io.Writer, []download.Event) (int, error)) (*encoder.FileStats, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to encode")
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := encode(file, events)
	if err != nil {
		file.Close()
		return nil, err
	}

	// Close before stat so all data is flushed
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &encoder.FileStats{
		RecordCount: n,
		SizeBytes:   fileInfo.Size(),
	}, nil
}
