// Command export writes one daily shard of download events to a local
// Parquet or Avro archive file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jittakal/podstats/internal/config"
	"github.com/jittakal/podstats/internal/config/dto"
	"github.com/jittakal/podstats/internal/encoder"
	"github.com/jittakal/podstats/internal/observability"
	"github.com/jittakal/podstats/internal/query"
	"github.com/jittakal/podstats/internal/storage"
	"github.com/jittakal/podstats/pkg/blobs"
	"github.com/jittakal/podstats/pkg/download"
	pkgencoder "github.com/jittakal/podstats/pkg/encoder"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("export error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	show := flag.String("show", "", "show UUID (32 lowercase hex characters)")
	date := flag.String("date", "", "shard date YYYY-MM-DD (default: earliest date with data)")
	format := flag.String("format", "", "archive format: parquet or avro (default from config)")
	compression := flag.String("compression", "", "compression codec (default from config)")
	bots := flag.String("bots", string(download.BotsExclude), "bot policy: include or exclude")
	output := flag.String("output", ".", "output directory")
	replica := flag.Bool("ro", false, "read from the read-only replica store")
	flag.Parse()

	if !query.ValidShowUUID(*show) {
		return fmt.Errorf("invalid -show %q", *show)
	}
	if *date != "" && !storage.IsValidDate(*date) {
		return fmt.Errorf("invalid -date %q", *date)
	}
	botsMode := download.BotsMode(*bots)
	if botsMode != download.BotsInclude && botsMode != download.BotsExclude {
		return fmt.Errorf("invalid -bots %q", *bots)
	}

	cfg, err := config.NewLoader().Load(config.ResolvePath(*configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: "stderr",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storageCfg := cfg.Storage
	if *replica {
		if !cfg.ReplicaStorage.Enabled() {
			return fmt.Errorf("replica storage is not configured")
		}
		storageCfg = cfg.ReplicaStorage
	}

	// Metrics are collected but never scraped for a one-shot run.
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	store, err := storage.NewStore(ctx, storageCfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	enc, err := newEncoder(cfg.Export, *format, *compression)
	if err != nil {
		return err
	}

	shardDate, err := resolveDate(ctx, store, *show, *date)
	if err != nil {
		return err
	}
	if shardDate == "" {
		logger.Warn("no shards found for show", "show", *show)
		return nil
	}

	events, found, err := query.ReadShardEvents(ctx, store, *show, shardDate, botsMode)
	if err != nil {
		return err
	}
	if !found || len(events) == 0 {
		logger.Warn("nothing to export", "show", *show, "date", shardDate, "found", found)
		return nil
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(*output, *show+"-"+shardDate+enc.FileExtension())

	stats, err := enc.Encode(path, events)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	logger.Info("exported shard",
		"show", *show,
		"date", shardDate,
		"format", enc.Format(),
		"path", path,
		"events", stats.RecordCount,
		"bytes", stats.SizeBytes,
	)
	return nil
}

// newEncoder applies flag overrides on top of the export config section.
func newEncoder(cfg dto.ExportConfig, format, compression string) (pkgencoder.Encoder, error) {
	if format == "" {
		format = cfg.Format
	}
	fileFormat := pkgencoder.FileFormat(format)
	if compression == "" {
		switch fileFormat {
		case pkgencoder.FormatParquet:
			compression = cfg.Parquet.Compression
		case pkgencoder.FormatAvro:
			compression = cfg.Avro.Codec
		}
	}
	return encoder.NewFactory(fileFormat, compression).CreateEncoder()
}

// resolveDate returns date, or the show's earliest shard date when date is
// empty. An empty result means the show has no shards.
func resolveDate(ctx context.Context, store blobs.Store, show, date string) (string, error) {
	if date != "" {
		return date, nil
	}
	earliest, ok, err := query.EarliestDate(ctx, store, show)
	if err != nil {
		return "", fmt.Errorf("failed to find earliest date: %w", err)
	}
	if !ok {
		return "", nil
	}
	return earliest, nil
}
