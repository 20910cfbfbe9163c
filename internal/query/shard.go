package query

import (
	"context"
	"fmt"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/internal/storage"
	"github.com/jittakal/podstats/internal/tsv"
	"github.com/jittakal/podstats/pkg/blobs"
	"github.com/jittakal/podstats/pkg/download"
)

// ReadShardEvents decodes every event in the shard for show on date,
// dropping bots when bots is BotsExclude. found is false when the shard
// does not exist. Used by offline export, so no row or byte cap applies.
func ReadShardEvents(ctx context.Context, store blobs.Store, show, date string, bots download.BotsMode) (events []download.Event, found bool, err error) {
	key := storage.DailyKey(show, date)
	rc, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read shard: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	defer rc.Close()

	for evt, err := range tsv.NewDecoder(rc).All() {
		if err != nil {
			return nil, true, &errors.StorageError{
				Backend:   "shard",
				Operation: "read",
				Key:       key,
				Err:       err,
			}
		}
		if bots == download.BotsExclude && evt.IsBot() {
			continue
		}
		events = append(events, evt)
	}
	return events, true, nil
}
