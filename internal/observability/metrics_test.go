package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jittakal/podstats/internal/query"
	"github.com/jittakal/podstats/internal/storage"
)

// Metrics must satisfy the collectors consumed by the query path.
var (
	_ query.MetricsCollector   = (*Metrics)(nil)
	_ storage.MetricsCollector = (*Metrics)(nil)
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	if metrics == nil {
		t.Fatal("NewMetrics returned nil")
	}

	// Vectors appear in Gather only once they have a child.
	metrics.IncQueries("tsv", "ok")
	metrics.AddPacingSeries(0)
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"podstats_queries_total", "podstats_pacing_series_total"} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic.
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}

func TestMetrics_Queries(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.IncQueries("tsv", "ok")
	metrics.IncQueries("tsv", "ok")
	metrics.IncQueries("json", "error")
	metrics.ObserveQueryDuration("tsv", 0.05)

	if got := testutil.ToFloat64(metrics.Queries.WithLabelValues("tsv", "ok")); got != 2 {
		t.Errorf("queries{tsv,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.Queries.WithLabelValues("json", "error")); got != 1 {
		t.Errorf("queries{json,error} = %v, want 1", got)
	}
}

func TestMetrics_Rows(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.AddRowsReturned("json-a", 10)
	metrics.AddRowsReturned("json-a", 5)
	metrics.AddRowsFiltered("bot", 3)

	if got := testutil.ToFloat64(metrics.RowsReturned.WithLabelValues("json-a")); got != 15 {
		t.Errorf("rows returned = %v, want 15", got)
	}
	if got := testutil.ToFloat64(metrics.RowsFiltered.WithLabelValues("bot")); got != 3 {
		t.Errorf("rows filtered = %v, want 3", got)
	}
}

func TestMetrics_Storage(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.IncShardReads("s3", "found")
	metrics.IncShardReads("s3", "missing")
	metrics.IncShardReads("s3", "found")
	metrics.ObserveStorageOperationDuration("gcs", "list", 0.2)
	metrics.IncStorageErrors("azure", "get")

	if got := testutil.ToFloat64(metrics.ShardReads.WithLabelValues("s3", "found")); got != 2 {
		t.Errorf("shard reads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.StorageErrors.WithLabelValues("azure", "get")); got != 1 {
		t.Errorf("storage errors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(metrics.StorageOperationDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestMetrics_PacingSeries(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.AddPacingSeries(8)
	metrics.AddPacingSeries(3)

	if got := testutil.ToFloat64(metrics.PacingSeries); got != 11 {
		t.Errorf("pacing series = %v, want 11", got)
	}
}
