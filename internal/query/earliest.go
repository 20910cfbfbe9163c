package query

import (
	"context"
	"slices"

	"github.com/jittakal/podstats/internal/storage"
	"github.com/jittakal/podstats/pkg/blobs"
)

// EarliestDate returns the first date with recorded events for show.
// ok is false when the show has no shards.
func EarliestDate(ctx context.Context, store blobs.Store, show string) (date string, ok bool, err error) {
	keys, err := store.List(ctx, storage.DailyKeyPrefix(show))
	if err != nil {
		return "", false, err
	}
	if len(keys) == 0 {
		return "", false, nil
	}

	// Listing is ascending by contract; min guards against backends that are not.
	_, date, err = storage.ParseDailyKey(slices.Min(keys))
	if err != nil {
		return "", false, err
	}
	return date, true, nil
}
