// Package tsv decodes daily shard blobs into download events.
//
// A shard is a stream of tab-separated rows, one event per line, with exactly
// download.FieldCount columns in schema order. An optional header row naming
// the columns may appear first. Decoding is pull-based: each call to Next
// reads one more line from the underlying reader, so memory is bounded by a
// single row regardless of shard size.
package tsv

import (
	"bufio"
	stderrors "errors"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/download"
)

// MaxLineBytes bounds a single row.
const MaxLineBytes = 1024 * 1024

// Decoder reads download events from a tab-separated stream.
// A Decoder is not restartable and must not be used concurrently.
type Decoder struct {
	sc      *bufio.Scanner
	line    int
	rows    int
	started bool
	event   download.Event
	err     error
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return &Decoder{sc: sc}
}

// Next advances to the next event. It returns false at the end of the
// stream or on the first error; the error is then available from Err.
func (d *Decoder) Next() bool {
	if d.err != nil {
		return false
	}
	for d.sc.Scan() {
		d.line++
		text := strings.TrimSuffix(d.sc.Text(), "\r")
		if text == "" {
			continue
		}
		columns := strings.Split(text, "\t")

		first := !d.started
		d.started = true
		if first && slices.Equal(columns, download.FieldNames) {
			continue
		}

		if len(columns) != download.FieldCount {
			d.err = &errors.MalformedRowError{Line: d.line, Columns: len(columns), Want: download.FieldCount}
			return false
		}
		evt, err := download.FromValues(columns)
		if err != nil {
			d.err = err
			return false
		}
		d.event = evt
		d.rows++
		return true
	}
	d.err = d.sc.Err()
	if stderrors.Is(d.err, bufio.ErrTooLong) {
		d.err = &errors.MalformedRowError{
			Line:   d.line + 1,
			Want:   download.FieldCount,
			Reason: "line exceeds " + strconv.Itoa(MaxLineBytes) + " bytes",
		}
	}
	return false
}

// Event returns the event produced by the last successful call to Next.
func (d *Decoder) Event() download.Event {
	return d.event
}

// Err returns the first error encountered, or nil at a clean end of stream.
func (d *Decoder) Err() error {
	return d.err
}

// Rows returns the number of events decoded so far.
func (d *Decoder) Rows() int {
	return d.rows
}

// All returns the remaining events as a single-use sequence. A decode error
// is yielded once as the final element with a zero Event.
func (d *Decoder) All() iter.Seq2[download.Event, error] {
	return func(yield func(download.Event, error) bool) {
		for d.Next() {
			if !yield(d.Event(), nil) {
				return
			}
		}
		if err := d.Err(); err != nil {
			yield(download.Event{}, err)
		}
	}
}

// ReadAll decodes every event in r. On error no events are returned.
func ReadAll(r io.Reader) ([]download.Event, error) {
	var events []download.Event
	for evt, err := range NewDecoder(r).All() {
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}
