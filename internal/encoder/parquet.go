// Package encoder implements file format encoders.
package encoder

import (
	"fmt"
	"io"
	"time"

	"github.com/jittakal/podstats/pkg/download"
	"github.com/jittakal/podstats/pkg/encoder"
	"github.com/parquet-go/parquet-go"
)

// Ensure implementation satisfies interface at compile time.
var _ encoder.Encoder = (*ParquetEncoder)(nil)

// DownloadParquet represents the Parquet schema for archived download events.
// Low-cardinality columns are dictionary encoded.
type DownloadParquet struct {
	Time            string `parquet:"time"`
	ServerURL       string `parquet:"serverUrl,dict"`
	AudienceID      string `parquet:"audienceId"`
	ShowUUID        string `parquet:"showUuid,dict"`
	EpisodeID       string `parquet:"episodeId,dict"`
	HashedIPAddress string `parquet:"hashedIpAddress"`
	AgentType       string `parquet:"agentType,dict"`
	AgentName       string `parquet:"agentName,dict"`
	DeviceType      string `parquet:"deviceType,dict"`
	DeviceName      string `parquet:"deviceName,dict"`
	ReferrerType    string `parquet:"referrerType,dict"`
	ReferrerName    string `parquet:"referrerName,dict"`
	BotType         string `parquet:"botType,dict"`
	CountryCode     string `parquet:"countryCode,dict"`
	ContinentCode   string `parquet:"continentCode,dict"`
	RegionCode      string `parquet:"regionCode,dict"`
	RegionName      string `parquet:"regionName,dict"`
	Timezone        string `parquet:"timezone,dict"`
	MetroCode       string `parquet:"metroCode,dict"`

	// Parsed from Time; NULL when Time is not RFC 3339.
	EventTime *time.Time `parquet:"eventTime,timestamp(millisecond),optional"`
}

// ParquetEncoder implements encoder.Encoder for Apache Parquet columnar format.
// Supports multiple compression codecs: SNAPPY (default), GZIP, LZ4, ZSTD.
type ParquetEncoder struct {
	compressionName string
}

// NewParquetEncoder creates a new Parquet encoder with specified compression.
func NewParquetEncoder(compression string) *ParquetEncoder {
	return &ParquetEncoder{
		compressionName: compression,
	}
}

// compressionCodec converts string compression name to parquet WriterOption.
func compressionCodec(compression string) parquet.WriterOption {
	switch compression {
	case "snappy", "SNAPPY":
		return parquet.Compression(&parquet.Snappy)
	case "gzip", "GZIP":
		return parquet.Compression(&parquet.Gzip)
	case "lz4", "LZ4":
		return parquet.Compression(&parquet.Lz4Raw)
	case "zstd", "ZSTD":
		return parquet.Compression(&parquet.Zstd)
	case "uncompressed", "UNCOMPRESSED", "none", "NONE":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Snappy)
	}
}

// Encode writes events to a Parquet file.
func (e *ParquetEncoder) Encode(filePath string, events []download.Event) (*encoder.FileStats, error) {
	return encodeFile(filePath, events, e.EncodeTo)
}

// EncodeTo writes events as a single Parquet file to w.
func (e *ParquetEncoder) EncodeTo(w io.Writer, events []download.Event) (int, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("no events to encode")
	}

	rows := make([]DownloadParquet, len(events))
	for i, ev := range events {
		rows[i] = toParquetRow(ev)
	}

	writer := parquet.NewGenericWriter[DownloadParquet](
		w,
		compressionCodec(e.compressionName),
		parquet.CreatedBy("podstats", "1.0", "0"),
	)

	n, err := writer.Write(rows)
	if err != nil {
		writer.Close()
		return n, fmt.Errorf("failed to write events: %w", err)
	}

	if err := writer.Close(); err != nil {
		return n, fmt.Errorf("failed to close writer: %w", err)
	}
	return n, nil
}

func toParquetRow(ev download.Event) DownloadParquet {
	row := DownloadParquet{
		Time:            ev.Time,
		ServerURL:       ev.ServerURL,
		AudienceID:      ev.AudienceID,
		ShowUUID:        ev.ShowUUID,
		EpisodeID:       ev.EpisodeID,
		HashedIPAddress: ev.HashedIPAddress,
		AgentType:       ev.AgentType,
		AgentName:       ev.AgentName,
		DeviceType:      ev.DeviceType,
		DeviceName:      ev.DeviceName,
		ReferrerType:    ev.ReferrerType,
		ReferrerName:    ev.ReferrerName,
		BotType:         ev.BotType,
		CountryCode:     ev.CountryCode,
		ContinentCode:   ev.ContinentCode,
		RegionCode:      ev.RegionCode,
		RegionName:      ev.RegionName,
		Timezone:        ev.Timezone,
		MetroCode:       ev.MetroCode,
	}
	if t, ok := eventTime(ev); ok {
		row.EventTime = &t
	}
	return row
}

// eventTime parses the event's timestamp column.
func eventTime(ev download.Event) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, ev.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Format returns the file format.
func (e *ParquetEncoder) Format() encoder.FileFormat {
	return encoder.FormatParquet
}

// FileExtension returns the file extension.
func (e *ParquetEncoder) FileExtension() string {
	return ".parquet"
}
