package engine

import (
	"context"
	"errors"
	"fmt"

	"cardsync/internal/cards"
	"cardsync/internal/services/plex"
)

// lookupAttempt is one named strategy for finding a series remotely.
type lookupAttempt struct {
	name string
	fn   func(ctx context.Context) (*plex.Show, error)
}

// resolveSeries tries series lookups in strict order, stopping at the first
// hit: TVDB GUID, TMDB GUID, short name, full name. A NotFound from Plex is
// a miss for that attempt only; any other failure aborts resolution. When
// every attempt misses the series is absent and the caller skips its pass.
func (e *Engine) resolveSeries(ctx context.Context, library *plex.Library, info cards.SeriesInfo) (*plex.Show, error) {
	attempts := make([]lookupAttempt, 0, 4)
	if info.TVDBID != "" {
		guid := "tvdb://" + info.TVDBID
		attempts = append(attempts, lookupAttempt{
			name: "tvdb_guid",
			fn: func(ctx context.Context) (*plex.Show, error) {
				return e.client.ShowByGUID(ctx, library, guid)
			},
		})
	}
	if info.TMDBID != "" {
		guid := "tmdb://" + info.TMDBID
		attempts = append(attempts, lookupAttempt{
			name: "tmdb_guid",
			fn: func(ctx context.Context) (*plex.Show, error) {
				return e.client.ShowByGUID(ctx, library, guid)
			},
		})
	}
	attempts = append(attempts,
		lookupAttempt{
			name: "name",
			fn: func(ctx context.Context) (*plex.Show, error) {
				return e.client.ShowByTitle(ctx, library, info.Name)
			},
		},
		lookupAttempt{
			name: "full_name",
			fn: func(ctx context.Context) (*plex.Show, error) {
				return e.client.ShowByTitle(ctx, library, info.FullName)
			},
		},
	)

	for _, attempt := range attempts {
		show, err := attempt.fn(ctx)
		if err == nil {
			return show, nil
		}
		if errors.Is(err, plex.ErrNotFound) {
			continue
		}
		return nil, fmt.Errorf("series lookup by %s: %w", attempt.name, err)
	}
	return nil, fmt.Errorf("series %q: %w", info.String(), plex.ErrNotFound)
}
