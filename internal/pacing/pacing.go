// Package pacing computes cumulative download curves for recent episodes,
// aligned on hours since release.
package pacing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// MaxHours caps each curve at 30 days of hourly buckets.
	MaxHours = 24 * 30
	// MaxEpisodes is the number of episodes charted.
	MaxEpisodes = 8
)

// Palette assigns a color to each charted series, in order.
var Palette = []string{
	"#ffa600",
	"#ff7c43",
	"#f95d6a",
	"#d45087",
	"#a05195",
	"#665191",
	"#2f4b7c",
	"#003f5c",
}

// Episode identifies an episode, most recent first in caller order.
type Episode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Pubdate string `json:"pubdate,omitempty"`
}

// Series is one episode's cumulative curve.
type Series struct {
	EpisodeID string           `json:"episodeId"`
	Label     string           `json:"label"`
	Color     string           `json:"color"`
	Data      CumulativeSeries `json:"data"`
}

// Chart is the aligned set of pacing curves.
type Chart struct {
	Hours  []string `json:"hours"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Aggregate charts the first MaxEpisodes episodes that have hourly data.
func Aggregate(episodes []Episode, hourly map[string]HourlySeries) Chart {
	chart := Chart{
		Hours:  []string{},
		Labels: []string{},
		Series: []Series{},
	}

	seen := make(map[string]struct{})
	for _, ep := range episodes {
		if len(chart.Series) == MaxEpisodes {
			break
		}
		data, ok := hourly[ep.ID]
		if !ok || len(data) == 0 {
			continue
		}
		if _, dup := seen[ep.ID]; dup {
			continue
		}
		seen[ep.ID] = struct{}{}

		cumulative := Cumulative(data)
		chart.Series = append(chart.Series, Series{
			EpisodeID: ep.ID,
			Label:     SeriesLabel(ep),
			Color:     Palette[len(chart.Series)%len(Palette)],
			Data:      cumulative,
		})
		for _, p := range cumulative {
			chart.Hours = append(chart.Hours, p.Label)
		}
	}

	slices.Sort(chart.Hours)
	chart.Hours = slices.Compact(chart.Hours)
	for _, h := range chart.Hours {
		chart.Labels = append(chart.Labels, HourLabel(h))
	}
	return chart
}

// Cumulative returns the running total of series, relabelled by hour of life
// and truncated to MaxHours.
func Cumulative(series HourlySeries) CumulativeSeries {
	n := min(len(series), MaxHours)
	out := make(CumulativeSeries, 0, n)
	var total int64
	for i, c := range series[:n] {
		total += c.Downloads
		out = append(out, CumulativePoint{Label: hourKey(i + 1), Total: total})
	}
	return out
}

// HourLabel formats an hour key such as h0024 for display: whole days read
// "Day N", other hours "Hour N". Unparseable keys are returned unchanged.
func HourLabel(key string) string {
	hour, err := strconv.Atoi(strings.TrimPrefix(key, "h"))
	if err != nil || !strings.HasPrefix(key, "h") {
		return key
	}
	if hour%24 == 0 {
		return fmt.Sprintf("Day %d", hour/24)
	}
	return fmt.Sprintf("Hour %d", hour)
}

// AxisTick returns the x-axis tick text for a zero-based axis index.
// Only day boundaries are labelled.
func AxisTick(index int) string {
	hour := index + 1
	if hour%24 != 0 {
		return ""
	}
	return fmt.Sprintf("Day %d", hour/24)
}

// CompactAxisTick is AxisTick for narrow charts: it keeps Day 1 and every
// fifth day only.
func CompactAxisTick(index int) string {
	tick := AxisTick(index)
	if tick == "" {
		return ""
	}
	hour := index + 1
	if hour != 24 && (hour/24)%5 != 0 {
		return ""
	}
	return tick
}

// SeriesLabel is "<date>: <title>" for episodes with a publication date,
// and empty otherwise.
func SeriesLabel(ep Episode) string {
	if ep.Pubdate == "" {
		return ""
	}
	date := ep.Pubdate
	if len(date) > 10 {
		date = date[:10]
	}
	return date + ": " + ep.Title
}

func hourKey(hour int) string {
	return fmt.Sprintf("h%04d", hour)
}
