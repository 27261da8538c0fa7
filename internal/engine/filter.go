package engine

import (
	"context"
	"fmt"

	"cardsync/internal/cards"
	"cardsync/internal/fileutil"
	"cardsync/internal/loaded"
	"cardsync/internal/logging"
)

// filterLoaded selects the episodes whose cards need uploading. An episode is
// included when it has no store entry, or when the file size on disk no
// longer matches the recorded one. A forced entry records size zero, which
// never matches a real artifact. Episodes without a local card are skipped
// outright.
func (e *Engine) filterLoaded(ctx context.Context, library string, s *cards.Series) (map[cards.EpisodeKey]*cards.Episode, error) {
	entries, err := e.store.FindSeries(ctx, library, s.Info.FullName)
	if err != nil {
		return nil, fmt.Errorf("find loaded entries: %w", err)
	}
	recorded := make(map[cards.EpisodeKey]loaded.Entry, len(entries))
	for _, entry := range entries {
		recorded[entry.EpisodeKey()] = entry
	}

	workSet := make(map[cards.EpisodeKey]*cards.Episode)
	for key, ep := range s.Episodes {
		if !ep.HasCard() {
			continue
		}
		entry, ok := recorded[key]
		if !ok {
			workSet[key] = ep
			continue
		}
		size, err := fileutil.FileSize(ep.CardPath)
		if err != nil {
			e.logger.Warn("cannot stat card",
				logging.String("series", s.Info.String()),
				logging.String("episode", key.Code()),
				logging.Error(err))
			continue
		}
		if size != entry.Filesize {
			workSet[key] = ep
		}
	}
	return workSet, nil
}
