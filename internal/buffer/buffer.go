// Package buffer collects projected query rows up to a row limit and a byte cap.
package buffer

import (
	"fmt"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/download"
)

// Per-element overhead added by the JSON encodings: quotes and separators.
const (
	valueOverhead = 3
	rowOverhead   = 2
)

// Stats describes the current buffer contents.
type Stats struct {
	Rows      int
	SizeBytes int64
}

// RowBuffer accumulates rows for a single response.
// A zero maxRows or maxBytes disables that limit. RowBuffer is not safe for
// concurrent use; a query owns its buffer.
type RowBuffer struct {
	rows        []any
	maxRows     int
	maxBytes    int64
	currentSize int64
}

// New creates a row buffer.
func New(maxRows int, maxBytes int64) *RowBuffer {
	capacity := maxRows
	if capacity <= 0 || capacity > 1024 {
		capacity = 64
	}
	return &RowBuffer{
		rows:     make([]any, 0, capacity),
		maxRows:  maxRows,
		maxBytes: maxBytes,
	}
}

// Add appends a row. It returns an error wrapping errors.ErrBufferFull when
// the row limit has been reached, or errors.ErrResponseTooLarge when the row
// would push the buffer past its byte cap.
func (b *RowBuffer) Add(row any) error {
	if b.Full() {
		return fmt.Errorf("%w: max rows (%d) reached", errors.ErrBufferFull, b.maxRows)
	}

	rowSize := int64(EstimateSize(row))
	if b.maxBytes > 0 && b.currentSize+rowSize > b.maxBytes {
		return fmt.Errorf("%w: max size (%d bytes) would be exceeded", errors.ErrResponseTooLarge, b.maxBytes)
	}

	b.rows = append(b.rows, row)
	b.currentSize += rowSize
	return nil
}

// Full reports whether the row limit has been reached.
func (b *RowBuffer) Full() bool {
	return b.maxRows > 0 && len(b.rows) >= b.maxRows
}

// Drain removes and returns all rows. The returned slice is owned by the caller.
func (b *RowBuffer) Drain() []any {
	rows := b.rows
	b.reset()
	return rows
}

// Stats returns current buffer statistics.
func (b *RowBuffer) Stats() Stats {
	return Stats{Rows: len(b.rows), SizeBytes: b.currentSize}
}

// IsEmpty returns true if the buffer holds no rows.
func (b *RowBuffer) IsEmpty() bool {
	return len(b.rows) == 0
}

// Reset clears the buffer.
func (b *RowBuffer) Reset() {
	b.reset()
}

func (b *RowBuffer) reset() {
	b.rows = make([]any, 0, cap(b.rows))
	b.currentSize = 0
}

// EstimateSize approximates the encoded size of a projected row in bytes.
func EstimateSize(row any) int {
	switch r := row.(type) {
	case string:
		return len(r) + 1
	case []string:
		size := rowOverhead
		for _, v := range r {
			size += len(v) + valueOverhead
		}
		return size
	case download.Event:
		size := rowOverhead
		for i, v := range r.Values() {
			size += len(download.FieldNames[i]) + len(v) + 2*valueOverhead
		}
		return size
	default:
		return 0
	}
}
