package encoder

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jittakal/podstats/pkg/download"
	"github.com/jittakal/podstats/pkg/encoder"
	"github.com/linkedin/goavro/v2"
)

// Ensure implementation satisfies interface at compile time.
var _ encoder.Encoder = (*AvroEncoder)(nil)

// avroEventTimeField carries the parsed event time as epoch milliseconds.
const avroEventTimeField = "eventTimeMillis"

// AvroEncoder implements encoder.Encoder for Avro OCF (Object Container File).
// "gzip" wraps the whole container; "deflate" and "snappy" are applied per
// block by the OCF writer.
type AvroEncoder struct {
	codec       *goavro.Codec
	compression string
	blockCodec  string
}

// NewAvroEncoder creates a new Avro encoder with specified compression.
func NewAvroEncoder(compression string) (*AvroEncoder, error) {
	blockCodec, err := avroBlockCodec(compression)
	if err != nil {
		return nil, err
	}

	schema, err := avroSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build avro schema: %w", err)
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}

	return &AvroEncoder{
		codec:       codec,
		compression: compression,
		blockCodec:  blockCodec,
	}, nil
}

func avroBlockCodec(compression string) (string, error) {
	switch strings.ToLower(compression) {
	case "", "null", "none", "uncompressed", "gzip":
		return goavro.CompressionNullLabel, nil
	case "deflate":
		return goavro.CompressionDeflateLabel, nil
	case "snappy":
		return goavro.CompressionSnappyLabel, nil
	default:
		return "", fmt.Errorf("unsupported avro compression: %s", compression)
	}
}

type avroField struct {
	Name string `json:"name"`
	Type any    `json:"type"`
}

// avroSchema returns the Avro record schema for download events. Column
// fields follow download.FieldNames order.
func avroSchema() (string, error) {
	fields := make([]avroField, 0, download.FieldCount+1)
	for _, name := range download.FieldNames {
		fields = append(fields, avroField{Name: name, Type: "string"})
	}
	fields = append(fields, avroField{Name: avroEventTimeField, Type: []string{"null", "long"}})

	schema, err := json.Marshal(map[string]any{
		"type":      "record",
		"name":      "DownloadEvent",
		"namespace": "com.podstats.download",
		"fields":    fields,
	})
	if err != nil {
		return "", err
	}
	return string(schema), nil
}

// Encode writes events to an Avro file.
func (e *AvroEncoder) Encode(filePath string, events []download.Event) (*encoder.FileStats, error) {
	return encodeFile(filePath, events, e.EncodeTo)
}

// EncodeTo writes events as an OCF stream to w.
func (e *AvroEncoder) EncodeTo(w io.Writer, events []download.Event) (int, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("no events to encode")
	}

	var gzipWriter *gzip.Writer
	if e.gzipped() {
		gzipWriter = gzip.NewWriter(w)
		w = gzipWriter
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           e.codec,
		CompressionName: e.blockCodec,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create OCF writer: %w", err)
	}

	batch := make([]any, len(events))
	for i, ev := range events {
		batch[i] = toAvroMap(ev)
	}
	if err := ocfWriter.Append(batch); err != nil {
		return 0, fmt.Errorf("failed to write events: %w", err)
	}

	if gzipWriter != nil {
		if err := gzipWriter.Close(); err != nil {
			return 0, fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}
	return len(events), nil
}

// toAvroMap converts an Event to its Avro map representation.
func toAvroMap(ev download.Event) map[string]any {
	values := ev.Values()
	m := make(map[string]any, len(values)+1)
	for i, name := range download.FieldNames {
		m[name] = values[i]
	}
	if t, ok := eventTime(ev); ok {
		m[avroEventTimeField] = goavro.Union("long", t.UnixMilli())
	} else {
		m[avroEventTimeField] = nil
	}
	return m
}

func (e *AvroEncoder) gzipped() bool {
	return strings.EqualFold(e.compression, "gzip")
}

// Format returns the file format.
func (e *AvroEncoder) Format() encoder.FileFormat {
	return encoder.FormatAvro
}

// FileExtension returns the file extension.
func (e *AvroEncoder) FileExtension() string {
	if e.gzipped() {
		return ".avro.gz"
	}
	return ".avro"
}
