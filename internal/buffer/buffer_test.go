package buffer

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/download"
)

func TestNew(t *testing.T) {
	buf := New(10, 1024)
	if buf == nil {
		t.Fatal("expected non-nil buffer")
	}
	if buf.maxRows != 10 {
		t.Errorf("maxRows = %d, want 10", buf.maxRows)
	}
	if buf.maxBytes != 1024 {
		t.Errorf("maxBytes = %d, want 1024", buf.maxBytes)
	}
	if !buf.IsEmpty() {
		t.Error("new buffer should be empty")
	}
}

func TestRowBuffer_Add(t *testing.T) {
	buf := New(0, 0)

	if err := buf.Add("a\tb"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	stats := buf.Stats()
	if stats.Rows != 1 {
		t.Errorf("Rows = %d, want 1", stats.Rows)
	}
	if stats.SizeBytes != 4 {
		t.Errorf("SizeBytes = %d, want 4", stats.SizeBytes)
	}
}

func TestRowBuffer_MaxRows(t *testing.T) {
	buf := New(2, 0)

	for i := 0; i < 2; i++ {
		if buf.Full() {
			t.Fatalf("Full() = true after %d rows", i)
		}
		if err := buf.Add("row"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	if !buf.Full() {
		t.Error("Full() = false at limit")
	}
	err := buf.Add("row")
	if !errors.Is(err, apperrors.ErrBufferFull) {
		t.Errorf("Add() error = %v, want ErrBufferFull", err)
	}
	if buf.Stats().Rows != 2 {
		t.Errorf("Rows = %d, want 2", buf.Stats().Rows)
	}
}

func TestRowBuffer_SizeLimit(t *testing.T) {
	buf := New(0, 1000)

	large := strings.Repeat("x", 600)
	if err := buf.Add(large); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}

	err := buf.Add(large)
	if !errors.Is(err, apperrors.ErrResponseTooLarge) {
		t.Errorf("Add() error = %v, want ErrResponseTooLarge", err)
	}
	if buf.Stats().Rows != 1 {
		t.Errorf("Rows = %d, want 1", buf.Stats().Rows)
	}
}

func TestRowBuffer_Drain(t *testing.T) {
	buf := New(100, 0)
	for i := 0; i < 5; i++ {
		if err := buf.Add([]string{"a", "b"}); err != nil {
			t.Fatal(err)
		}
	}

	rows := buf.Drain()
	if len(rows) != 5 {
		t.Errorf("len(rows) = %d, want 5", len(rows))
	}
	if !buf.IsEmpty() {
		t.Error("buffer should be empty after drain")
	}
	if stats := buf.Stats(); stats.Rows != 0 || stats.SizeBytes != 0 {
		t.Errorf("stats after drain = %+v", stats)
	}

	// Drained rows are not affected by later adds.
	if err := buf.Add("new"); err != nil {
		t.Fatal(err)
	}
	if _, ok := rows[0].([]string); !ok {
		t.Errorf("rows[0] = %T, want []string", rows[0])
	}
}

func TestRowBuffer_Reset(t *testing.T) {
	buf := New(3, 0)
	for i := 0; i < 3; i++ {
		_ = buf.Add("x")
	}
	buf.Reset()

	if !buf.IsEmpty() || buf.Full() {
		t.Error("buffer should be empty and not full after reset")
	}
}

func TestEstimateSize(t *testing.T) {
	evt := download.Event{Time: "t", BotType: "bot"}

	tests := []struct {
		name string
		row  any
		want int
	}{
		{"tsv string", "abc", 4},
		{"json-a array", []string{"ab", "c"}, rowOverhead + (2 + valueOverhead) + (1 + valueOverhead)},
		{"unknown type", 42, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateSize(tt.row); got != tt.want {
				t.Errorf("EstimateSize() = %d, want %d", got, tt.want)
			}
		})
	}

	if got := EstimateSize(evt); got <= EstimateSize(evt.Values()) {
		t.Errorf("object estimate %d should exceed array estimate", got)
	}
}
