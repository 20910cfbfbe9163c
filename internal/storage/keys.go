// Package storage implements storage-related functionality.
package storage

import (
	"strings"
	"time"

	"github.com/jittakal/podstats/internal/errors"
)

// Daily shard keys have the form:
//
//	show-daily/<showUuid>/<YYYY-MM-DD>.tsv
//
// For a fixed show every key shares the same prefix and differs only in the
// fixed-width date, so ascending lexicographic key order is ascending
// calendar order. The earliest-date lookup depends on this.
const (
	dailyKeySuffix = ".tsv"
	dateLayout     = "2006-01-02"
)

// DailyKeyRoot prefixes every daily shard key.
const DailyKeyRoot = "show-daily/"

// ReadinessPrefix lies under DailyKeyRoot but matches no shard, since
// show identifiers are hex. Listing it checks store access without paging
// through shard keys.
const ReadinessPrefix = DailyKeyRoot + "_ready/"

// DailyKey returns the key of the shard holding all events for show on date.
func DailyKey(show, date string) string {
	return DailyKeyPrefix(show) + date + dailyKeySuffix
}

// DailyKeyPrefix returns the prefix shared by every daily key of show.
func DailyKeyPrefix(show string) string {
	return DailyKeyRoot + show + "/"
}

// ParseDailyKey is the inverse of DailyKey.
func ParseDailyKey(key string) (show, date string, err error) {
	rest, ok := strings.CutPrefix(key, DailyKeyRoot)
	if !ok {
		return "", "", &errors.MalformedKeyError{Key: key, Reason: "missing " + DailyKeyRoot + " prefix"}
	}
	rest, ok = strings.CutSuffix(rest, dailyKeySuffix)
	if !ok {
		return "", "", &errors.MalformedKeyError{Key: key, Reason: "missing " + dailyKeySuffix + " suffix"}
	}
	show, date, ok = strings.Cut(rest, "/")
	if !ok {
		return "", "", &errors.MalformedKeyError{Key: key, Reason: "missing date segment"}
	}
	if show == "" {
		return "", "", &errors.MalformedKeyError{Key: key, Reason: "empty show segment"}
	}
	if !IsValidDate(date) {
		return "", "", &errors.MalformedKeyError{Key: key, Reason: "invalid date " + date}
	}
	return show, date, nil
}

// IsValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
