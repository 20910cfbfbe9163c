package query

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jittakal/podstats/internal/buffer"
	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/internal/storage"
	"github.com/jittakal/podstats/internal/tsv"
	"github.com/jittakal/podstats/pkg/blobs"
	"github.com/jittakal/podstats/pkg/download"
)

// MetricsCollector defines metrics operations for query execution.
type MetricsCollector interface {
	IncQueries(format string, status string)
	ObserveQueryDuration(format string, duration float64)
	AddRowsReturned(format string, count int)
	AddRowsFiltered(reason string, count int)
}

// Result is the logical response envelope of a download query.
type Result struct {
	StartTime time.Time
	Format    download.Format
	Headers   []string
	// Rows holds string for tsv, []string for json-a and download.Event for json.
	Rows []any

	// Date is the shard that was read; empty when NoData.
	Date   string
	NoData bool
}

// Executor reads and projects daily shards.
type Executor struct {
	logger           *slog.Logger
	metrics          MetricsCollector
	maxResponseBytes int64
}

// NewExecutor creates an executor. A nil metrics collector is allowed.
func NewExecutor(logger *slog.Logger, metrics MetricsCollector, maxResponseBytes int64) *Executor {
	return &Executor{
		logger:           logger,
		metrics:          metrics,
		maxResponseBytes: maxResponseBytes,
	}
}

// Execute runs req against store. Only the single shard for the target date
// is read, even when the requested window spans several days.
func (e *Executor) Execute(ctx context.Context, store blobs.Store, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() {
		e.observe(req.Format, start, result, err)
	}()

	result = &Result{
		StartTime: start,
		Format:    req.Format,
		Headers:   download.FieldNames,
		Rows:      []any{},
	}

	date := targetDate(req)
	if date == "" {
		var ok bool
		date, ok, err = EarliestDate(ctx, store, req.ShowUUID)
		if err != nil {
			return nil, fmt.Errorf("resolve earliest date: %w", err)
		}
		if !ok {
			e.logger.Debug("No shards for show", "show", req.ShowUUID)
			result.NoData = true
			return result, nil
		}
	}
	result.Date = date

	rows, err := e.readShard(ctx, store, req, date)
	if err != nil {
		return nil, err
	}
	result.Rows = rows
	return result, nil
}

func (e *Executor) readShard(ctx context.Context, store blobs.Store, req Request, date string) ([]any, error) {
	key := storage.DailyKey(req.ShowUUID, date)
	rc, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read shard: %w", err)
	}
	if !found {
		e.logger.Debug("Shard not found", "key", key)
		return []any{}, nil
	}
	defer rc.Close()

	buf := buffer.New(req.Limit, e.maxResponseBytes)
	dec := tsv.NewDecoder(rc)
	bots := 0

	for dec.Next() {
		evt := dec.Event()
		if req.Bots == download.BotsExclude && evt.IsBot() {
			bots++
			continue
		}
		if err := buf.Add(project(evt, req.Format)); err != nil {
			return nil, err
		}
		if buf.Full() {
			break
		}
	}
	if err := dec.Err(); err != nil {
		return nil, &errors.StorageError{
			Backend:   "shard",
			Operation: "read",
			Key:       key,
			Err:       err,
		}
	}

	if bots > 0 && e.metrics != nil {
		e.metrics.AddRowsFiltered("bot", bots)
	}
	e.logger.Debug("Shard read",
		"key", key,
		"rows", buf.Stats().Rows,
		"bots_filtered", bots,
	)
	return buf.Drain(), nil
}

func (e *Executor) observe(format download.Format, start time.Time, result *Result, err error) {
	if e.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case err == nil:
		e.metrics.AddRowsReturned(string(format), len(result.Rows))
	case stderrors.Is(err, errors.ErrResponseTooLarge):
		status = "too_large"
	default:
		status = "error"
	}
	e.metrics.IncQueries(string(format), status)
	e.metrics.ObserveQueryDuration(string(format), time.Since(start).Seconds())
}

// targetDate is the calendar date of the explicit start bound, if any.
func targetDate(req Request) string {
	start := req.Start()
	if len(start) < 10 {
		return ""
	}
	return start[:10]
}

func project(evt download.Event, format download.Format) any {
	switch format {
	case download.FormatJSONA:
		return evt.Values()
	case download.FormatJSON:
		return evt
	default:
		return evt.TSV()
	}
}
