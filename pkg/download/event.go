package download

import (
	"fmt"
	"strings"
)

// FieldCount is the number of columns in a download event row.
const FieldCount = 19

// FieldNames is the fixed header list, in schema order.
var FieldNames = []string{
	"time",
	"serverUrl",
	"audienceId",
	"showUuid",
	"episodeId",
	"hashedIpAddress",
	"agentType",
	"agentName",
	"deviceType",
	"deviceName",
	"referrerType",
	"referrerName",
	"botType",
	"countryCode",
	"continentCode",
	"regionCode",
	"regionName",
	"timezone",
	"metroCode",
}

// Event is one logged download request. Field declaration order matches
// FieldNames so JSON objects encode in schema order.
type Event struct {
	Time            string `json:"time"`
	ServerURL       string `json:"serverUrl"`
	AudienceID      string `json:"audienceId"`
	ShowUUID        string `json:"showUuid"`
	EpisodeID       string `json:"episodeId"`
	HashedIPAddress string `json:"hashedIpAddress"`
	AgentType       string `json:"agentType"`
	AgentName       string `json:"agentName"`
	DeviceType      string `json:"deviceType"`
	DeviceName      string `json:"deviceName"`
	ReferrerType    string `json:"referrerType"`
	ReferrerName    string `json:"referrerName"`
	BotType         string `json:"botType"`
	CountryCode     string `json:"countryCode"`
	ContinentCode   string `json:"continentCode"`
	RegionCode      string `json:"regionCode"`
	RegionName      string `json:"regionName"`
	Timezone        string `json:"timezone"`
	MetroCode       string `json:"metroCode"`
}

// FromValues builds an Event from exactly FieldCount positional values.
func FromValues(values []string) (Event, error) {
	if len(values) != FieldCount {
		return Event{}, fmt.Errorf("expected %d values, got %d", FieldCount, len(values))
	}
	return Event{
		Time:            values[0],
		ServerURL:       values[1],
		AudienceID:      values[2],
		ShowUUID:        values[3],
		EpisodeID:       values[4],
		HashedIPAddress: values[5],
		AgentType:       values[6],
		AgentName:       values[7],
		DeviceType:      values[8],
		DeviceName:      values[9],
		ReferrerType:    values[10],
		ReferrerName:    values[11],
		BotType:         values[12],
		CountryCode:     values[13],
		ContinentCode:   values[14],
		RegionCode:      values[15],
		RegionName:      values[16],
		Timezone:        values[17],
		MetroCode:       values[18],
	}, nil
}

// Values returns the event fields in schema order.
func (e Event) Values() []string {
	return []string{
		e.Time,
		e.ServerURL,
		e.AudienceID,
		e.ShowUUID,
		e.EpisodeID,
		e.HashedIPAddress,
		e.AgentType,
		e.AgentName,
		e.DeviceType,
		e.DeviceName,
		e.ReferrerType,
		e.ReferrerName,
		e.BotType,
		e.CountryCode,
		e.ContinentCode,
		e.RegionCode,
		e.RegionName,
		e.Timezone,
		e.MetroCode,
	}
}

// TSV returns the event as a single tab-joined row.
func (e Event) TSV() string {
	return strings.Join(e.Values(), "\t")
}

// IsBot reports whether the event was classified as automated traffic.
func (e Event) IsBot() bool {
	return e.BotType != ""
}

// Format represents the negotiated output encoding of a query.
type Format string

const (
	FormatTSV   Format = "tsv"
	FormatJSONA Format = "json-a"
	FormatJSON  Format = "json"
)

// ParseFormat returns the Format for s, or false if s is not supported.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatTSV, FormatJSONA, FormatJSON:
		return Format(s), true
	default:
		return "", false
	}
}

// BotsMode controls whether bot-classified events are returned.
type BotsMode string

const (
	BotsInclude BotsMode = "include"
	BotsExclude BotsMode = "exclude"
)
