/*
Package encoder provides archive encoders for download events.

# Creating Encoders

Use the factory to pick an encoder by format:

	factory := encoder.NewFactory(pkgencoder.FormatParquet, "snappy")
	enc, err := factory.CreateEncoder()
	if err != nil {
		log.Fatal(err)
	}

Or construct one directly:

	parquetEnc := encoder.NewParquetEncoder("zstd")
	avroEnc, err := encoder.NewAvroEncoder("gzip")

# Encoding Events

	stats, err := enc.Encode(filePath, events)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Encoded %d events, %d bytes\n", stats.RecordCount, stats.SizeBytes)

EncodeTo writes to any io.Writer instead of a file.

# Parquet Encoder

One column per download field, in header order, plus eventTime, a
millisecond timestamp parsed from the time column (NULL when unparseable).
Codecs: "snappy" (default), "gzip", "lz4", "zstd", "uncompressed".

# Avro Encoder

Object Container Files with the schema embedded. Fields mirror the Parquet
layout; eventTimeMillis is a nullable long. Codecs: "null" (default),
"deflate" and "snappy" per OCF block, or "gzip" around the whole file
(extension ".avro.gz").

# Thread Safety

Encoders hold no per-call state and are safe for concurrent use.
*/
package encoder
