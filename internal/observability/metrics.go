package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	RowsReturned  *prometheus.CounterVec
	RowsFiltered  *prometheus.CounterVec

	// Storage metrics
	ShardReads               *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrors            *prometheus.CounterVec

	// Pacing metrics
	PacingSeries prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podstats_queries_total",
				Help: "Total number of download queries by format and outcome",
			},
			[]string{"format", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "podstats_query_duration_seconds",
				Help:    "Duration of download query execution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		RowsReturned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podstats_rows_returned_total",
				Help: "Total number of rows returned to clients",
			},
			[]string{"format"},
		),
		RowsFiltered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podstats_rows_filtered_total",
				Help: "Total number of decoded rows dropped before projection",
			},
			[]string{"reason"},
		),

		ShardReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podstats_shard_reads_total",
				Help: "Total number of daily shard lookups",
			},
			[]string{"backend", "result"},
		),
		StorageOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "podstats_storage_operation_duration_seconds",
				Help:    "Duration of blob store operations",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"backend", "operation"},
		),
		StorageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "podstats_storage_errors_total",
				Help: "Total number of blob store errors",
			},
			[]string{"backend", "operation"},
		),

		PacingSeries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "podstats_pacing_series_total",
				Help: "Total number of episode pacing series computed",
			},
		),
	}
}

// IncQueries increments the query counter.
func (m *Metrics) IncQueries(format string, status string) {
	m.Queries.WithLabelValues(format, status).Inc()
}

// ObserveQueryDuration observes query duration.
func (m *Metrics) ObserveQueryDuration(format string, duration float64) {
	m.QueryDuration.WithLabelValues(format).Observe(duration)
}

// AddRowsReturned adds to the returned rows counter.
func (m *Metrics) AddRowsReturned(format string, count int) {
	m.RowsReturned.WithLabelValues(format).Add(float64(count))
}

// AddRowsFiltered adds to the filtered rows counter.
func (m *Metrics) AddRowsFiltered(reason string, count int) {
	m.RowsFiltered.WithLabelValues(reason).Add(float64(count))
}

// IncShardReads increments the shard lookup counter.
func (m *Metrics) IncShardReads(backend string, result string) {
	m.ShardReads.WithLabelValues(backend, result).Inc()
}

// ObserveStorageOperationDuration observes blob store latency.
func (m *Metrics) ObserveStorageOperationDuration(backend string, operation string, duration float64) {
	m.StorageOperationDuration.WithLabelValues(backend, operation).Observe(duration)
}

// IncStorageErrors increments storage errors counter.
func (m *Metrics) IncStorageErrors(backend string, operation string) {
	m.StorageErrors.WithLabelValues(backend, operation).Inc()
}

// AddPacingSeries adds to the pacing series counter.
func (m *Metrics) AddPacingSeries(count int) {
	m.PacingSeries.Add(float64(count))
}
