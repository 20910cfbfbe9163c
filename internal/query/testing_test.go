package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jittakal/podstats/internal/storage"
	"github.com/jittakal/podstats/pkg/download"
)

const testShow = "00000000000000000000000000000000"

// mockMetricsCollector implements MetricsCollector for testing
type mockMetricsCollector struct {
	queries  map[string]int
	returned map[string]int
	filtered map[string]int
	observed int
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		queries:  make(map[string]int),
		returned: make(map[string]int),
		filtered: make(map[string]int),
	}
}

func (m *mockMetricsCollector) IncQueries(format string, status string) {
	m.queries[format+"/"+status]++
}

func (m *mockMetricsCollector) ObserveQueryDuration(format string, duration float64) {
	m.observed++
}

func (m *mockMetricsCollector) AddRowsReturned(format string, count int) {
	m.returned[format] += count
}

func (m *mockMetricsCollector) AddRowsFiltered(reason string, count int) {
	m.filtered[reason] += count
}

// stubStore returns fixed keys and errors; List order is preserved as given.
type stubStore struct {
	keys    []string
	getErr  error
	listErr error
	body    io.Reader
}

func (s *stubStore) Get(ctx context.Context, key string) (io.ReadCloser, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	if s.body == nil {
		return nil, false, nil
	}
	return io.NopCloser(s.body), true, nil
}

func (s *stubStore) List(ctx context.Context, prefix string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.keys, nil
}

func (s *stubStore) Close() error { return nil }

// failingReader returns data then a transport error.
type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, r.data), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeRow(time, botType string) string {
	values := make([]string, download.FieldCount)
	for i := range values {
		values[i] = download.FieldNames[i]
	}
	values[0] = time
	values[3] = testShow
	values[12] = botType
	return strings.Join(values, "\t")
}

func putShard(t *testing.T, store *storage.MemoryStore, date string, rows ...string) {
	t.Helper()
	store.Put(storage.DailyKey(testShow, date), []byte(strings.Join(rows, "\n")+"\n"))
}
