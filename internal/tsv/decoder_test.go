package tsv

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/download"
)

func row(time, botType string) string {
	values := make([]string, download.FieldCount)
	for i := range values {
		values[i] = fmt.Sprintf("%s-%d", download.FieldNames[i], i)
	}
	values[0] = time
	values[12] = botType
	return strings.Join(values, "\t")
}

func TestDecoder_DecodesRowsInOrder(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, row(fmt.Sprintf("2024-01-02T00:00:%02d.000Z", i), ""))
	}
	input := strings.Join(lines, "\n") + "\n"

	d := NewDecoder(strings.NewReader(input))
	n := 0
	for d.Next() {
		want := fmt.Sprintf("2024-01-02T00:00:%02d.000Z", n)
		if got := d.Event().Time; got != want {
			t.Errorf("event %d time = %s, want %s", n, got, want)
		}
		n++
	}
	if err := d.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if n != 50 || d.Rows() != 50 {
		t.Errorf("decoded %d rows (Rows() = %d), want 50", n, d.Rows())
	}
}

func TestDecoder_FieldMapping(t *testing.T) {
	d := NewDecoder(strings.NewReader(row("2024-01-02T03:04:05.000Z", "bot") + "\n"))
	if !d.Next() {
		t.Fatalf("Next() = false, err = %v", d.Err())
	}
	evt := d.Event()
	if evt.ServerURL != "serverUrl-1" || evt.ShowUUID != "showUuid-3" || evt.MetroCode != "metroCode-18" {
		t.Errorf("unexpected field mapping: %+v", evt)
	}
	if !evt.IsBot() {
		t.Error("IsBot() = false, want true")
	}
}

func TestDecoder_SkipsHeaderAndBlankLines(t *testing.T) {
	input := strings.Join(download.FieldNames, "\t") + "\n" +
		row("a", "") + "\r\n" +
		"\n" +
		row("b", "") + "\n\n"

	events, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 2 || events[0].Time != "a" || events[1].Time != "b" {
		t.Errorf("events = %+v", events)
	}
}

func TestDecoder_HeaderOnlyOnFirstRow(t *testing.T) {
	// A header-shaped row after data is a real (if odd) event.
	input := row("a", "") + "\n" + strings.Join(download.FieldNames, "\t") + "\n"

	events, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 2 || events[1].Time != "time" {
		t.Errorf("events = %+v", events)
	}
}

func TestDecoder_Empty(t *testing.T) {
	d := NewDecoder(strings.NewReader(""))
	if d.Next() {
		t.Error("Next() on empty input = true")
	}
	if d.Err() != nil {
		t.Errorf("Err() = %v", d.Err())
	}
}

func TestDecoder_MalformedRowStopsStream(t *testing.T) {
	tests := []struct {
		name    string
		bad     string
		columns int
	}{
		{name: "too few columns", bad: "a\tb\tc", columns: 3},
		{name: "too many columns", bad: row("x", "") + "\textra", columns: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := row("first", "") + "\n" + tt.bad + "\n" + row("after", "") + "\n"
			d := NewDecoder(strings.NewReader(input))

			if !d.Next() {
				t.Fatalf("first Next() = false, err = %v", d.Err())
			}
			if d.Next() {
				t.Fatal("Next() over malformed row = true")
			}
			if d.Next() {
				t.Fatal("Next() after error = true")
			}

			err := d.Err()
			if !errors.Is(err, apperrors.ErrMalformedRow) {
				t.Fatalf("Err() = %v, want ErrMalformedRow", err)
			}
			var rowErr *apperrors.MalformedRowError
			if !errors.As(err, &rowErr) {
				t.Fatal("expected MalformedRowError")
			}
			if rowErr.Line != 2 || rowErr.Columns != tt.columns {
				t.Errorf("MalformedRowError = %+v", rowErr)
			}
		})
	}
}

func TestReadAll_ErrorYieldsNoEvents(t *testing.T) {
	input := row("a", "") + "\nbroken\n"
	events, err := ReadAll(strings.NewReader(input))
	if err == nil {
		t.Fatal("ReadAll() expected error")
	}
	if events != nil {
		t.Errorf("events = %v, want nil", events)
	}
}

func TestDecoder_AllStopsEarly(t *testing.T) {
	input := row("a", "") + "\n" + row("b", "") + "\n" + row("c", "") + "\n"
	d := NewDecoder(strings.NewReader(input))

	var seen []string
	for evt, err := range d.All() {
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, evt.Time)
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 {
		t.Fatalf("seen = %v", seen)
	}

	// The sequence is forward-only: the remaining row is still pending.
	if !d.Next() || d.Event().Time != "c" {
		t.Error("expected remaining row c")
	}
}

func TestDecoder_LineTooLong(t *testing.T) {
	long := strings.Repeat("x", MaxLineBytes+1)
	d := NewDecoder(strings.NewReader(long + "\n"))
	if d.Next() {
		t.Fatal("Next() = true for oversized line")
	}
	var rowErr *apperrors.MalformedRowError
	if !errors.As(d.Err(), &rowErr) {
		t.Fatalf("Err() = %v, want MalformedRowError", d.Err())
	}
	if rowErr.Line != 1 || rowErr.Reason == "" {
		t.Errorf("MalformedRowError = %+v", rowErr)
	}
}
