// Package params implements the query-parameter contract shared by the
// read routes: time bounds, result limit and output format.
package params

import (
	"net/url"
	"strconv"
	"time"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/pkg/download"
)

// TimeLayout is the canonical form of a normalized time bound.
const TimeLayout = "2006-01-02T15:04:05.000Z"

const dateLayout = "2006-01-02"

// Parameter names.
const (
	ParamStart      = "start"
	ParamStartAfter = "startAfter"
	ParamEnd        = "end"
	ParamLimit      = "limit"
	ParamFormat     = "format"
)

// DefaultMaxLimit is used when a Contract does not set MaxLimit.
const DefaultMaxLimit = 100000

// Contract holds the route-independent bounds applied while parsing.
type Contract struct {
	MaxLimit int
}

func (c Contract) maxLimit() int {
	if c.MaxLimit <= 0 {
		return DefaultMaxLimit
	}
	return c.MaxLimit
}

// Common is the validated set of shared parameters.
// At most one of StartInclusive and StartExclusive is set.
type Common struct {
	StartInclusive string
	StartExclusive string
	EndExclusive   string
	Limit          int
	Format         download.Format
}

// Start returns whichever start bound is set, or "".
func (c Common) Start() string {
	if c.StartInclusive != "" {
		return c.StartInclusive
	}
	return c.StartExclusive
}

// Parse validates the shared parameters in values. Unknown names are ignored.
func Parse(values url.Values, contract Contract) (Common, error) {
	common := Common{Format: download.FormatTSV}

	start, hasStart := lookup(values, ParamStart)
	startAfter, hasStartAfter := lookup(values, ParamStartAfter)
	if hasStart && hasStartAfter {
		return Common{}, &errors.BadRequestError{
			Param:  ParamStartAfter,
			Reason: "cannot be combined with start",
		}
	}

	var startTime time.Time
	var err error
	if hasStart {
		if common.StartInclusive, startTime, err = normalize(ParamStart, start); err != nil {
			return Common{}, err
		}
	}
	if hasStartAfter {
		if common.StartExclusive, startTime, err = normalize(ParamStartAfter, startAfter); err != nil {
			return Common{}, err
		}
	}

	if end, ok := lookup(values, ParamEnd); ok {
		var endTime time.Time
		if common.EndExclusive, endTime, err = normalize(ParamEnd, end); err != nil {
			return Common{}, err
		}
		if (hasStart || hasStartAfter) && !startTime.Before(endTime) {
			return Common{}, &errors.BadRequestError{
				Param:  ParamEnd,
				Value:  end,
				Reason: "must be after start",
			}
		}
	}

	if raw, ok := lookup(values, ParamLimit); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Common{}, &errors.BadRequestError{Param: ParamLimit, Value: raw, Reason: "is not an integer"}
		}
		if limit < 1 || limit > contract.maxLimit() {
			return Common{}, &errors.BadRequestError{
				Param:  ParamLimit,
				Value:  raw,
				Reason: "must be between 1 and " + strconv.Itoa(contract.maxLimit()),
			}
		}
		common.Limit = limit
	}

	if raw, ok := lookup(values, ParamFormat); ok {
		format, ok := download.ParseFormat(raw)
		if !ok {
			return Common{}, &errors.BadRequestError{
				Param:  ParamFormat,
				Value:  raw,
				Reason: "must be one of tsv, json-a, json",
			}
		}
		common.Format = format
	}

	return common, nil
}

// NormalizeTime converts a date or RFC 3339 timestamp into TimeLayout in UTC.
func NormalizeTime(param, raw string) (string, error) {
	s, _, err := normalize(param, raw)
	return s, err
}

func normalize(param, raw string) (string, time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, raw)
	}
	if err != nil {
		return "", time.Time{}, &errors.BadRequestError{
			Param:  param,
			Value:  raw,
			Reason: "is not a date or RFC 3339 timestamp",
		}
	}
	t = t.UTC()
	return t.Format(TimeLayout), t, nil
}

// lookup returns the first value for name. A present but empty value
// counts as absent.
func lookup(values url.Values, name string) (string, bool) {
	v := values.Get(name)
	return v, v != ""
}
