// Package query turns validated download queries into result rows read from
// the daily shard store.
package query

import (
	"encoding/hex"
	"net/url"

	"github.com/google/uuid"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/internal/params"
	"github.com/jittakal/podstats/pkg/download"
)

// ParamBots selects whether bot traffic is returned.
const ParamBots = "bots"

// Request is a fully validated download query.
type Request struct {
	ShowUUID string
	Bots     download.BotsMode
	params.Common
}

// ParseRequest validates the show identifier and query values.
// It never returns a partially valid Request.
func ParseRequest(showUUID string, values url.Values, contract params.Contract) (Request, error) {
	if !ValidShowUUID(showUUID) {
		return Request{}, &errors.BadRequestError{
			Param:  "showUuid",
			Value:  showUUID,
			Reason: "is not a valid UUID",
		}
	}

	bots := download.BotsExclude
	if values.Has(ParamBots) {
		switch raw := values.Get(ParamBots); download.BotsMode(raw) {
		case download.BotsInclude, download.BotsExclude:
			bots = download.BotsMode(raw)
		default:
			return Request{}, &errors.BadRequestError{
				Param:  ParamBots,
				Value:  raw,
				Reason: "must be include or exclude",
			}
		}
	}

	common, err := params.Parse(values, contract)
	if err != nil {
		return Request{}, err
	}

	return Request{ShowUUID: showUUID, Bots: bots, Common: common}, nil
}

// ValidShowUUID reports whether s is a show identifier in key form:
// 32 lowercase hex digits without dashes.
func ValidShowUUID(s string) bool {
	if len(s) != 32 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return hex.EncodeToString(id[:]) == s
}
