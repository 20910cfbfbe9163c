package pacing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// HourlyCount is the download count for one hour bucket.
type HourlyCount struct {
	Bucket    string
	Downloads int64
}

// HourlySeries is an episode's hourly download counts in chronological order.
// Its JSON form is an object keyed by bucket; decoding keeps key order.
type HourlySeries []HourlyCount

// UnmarshalJSON decodes an object of bucket to count, preserving key order.
func (s *HourlySeries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("hourly series: expected object, got %v", tok)
	}

	series := HourlySeries{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		bucket := tok.(string)

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("hourly series: bucket %q: %w", bucket, err)
		}
		downloads, err := parseCount(n)
		if err != nil {
			return fmt.Errorf("hourly series: bucket %q: %w", bucket, err)
		}
		series = append(series, HourlyCount{Bucket: bucket, Downloads: downloads})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = series
	return nil
}

// parseCount accepts integers and whole-number floats such as 1.0 or 2e3.
func parseCount(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%q is not a whole number", n)
	}
	return int64(f), nil
}

// MarshalJSON encodes the series as an object in series order.
func (s HourlySeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Bucket)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(c.Downloads, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CumulativePoint is the running download total at an hour label.
type CumulativePoint struct {
	Label string
	Total int64
}

// CumulativeSeries is a running total keyed h0001, h0002 and so on.
type CumulativeSeries []CumulativePoint

// MarshalJSON encodes the series as an object keyed by hour label.
func (s CumulativeSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(p.Label)
		buf.WriteString(`":`)
		buf.WriteString(strconv.FormatInt(p.Total, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
