package engine

import (
	"context"
	"fmt"

	"cardsync/internal/cards"
	"cardsync/internal/loaded"
	"cardsync/internal/logging"
	"cardsync/internal/services/plex"
)

// requiredClass maps the configured unwatched action and an episode's watch
// state to the class its card must present. Watched episodes are always
// spoiled unless the action applies to every episode.
func (e *Engine) requiredClass(watched bool) cards.Class {
	switch {
	case e.action.AllSpoiler():
		return cards.ClassSpoiled
	case e.action.AllSpoilerFree():
		return e.action.SpoilerFreeClass()
	case watched:
		return cards.ClassSpoiled
	default:
		return e.action.SpoilerFreeClass()
	}
}

// applyWatchStates joins remote watch state onto local episodes and runs the
// spoiler transition for each one. When the required class differs from the
// recorded one the card is re-rendered under the new class, the remote poster
// is deleted, and the store entry is force-invalidated so the change filter
// re-uploads it this pass. An episode with no store entry counts as spoiled,
// so untracked cards transition as soon as a spoiler-free class is required.
//
// A render failure skips the deletion and invalidation for that episode; the
// old card stays visible and the transition retries on the next pass. A
// deletion failure is logged but the entry is still invalidated, so the fresh
// card overwrites the stale poster.
func (e *Engine) applyWatchStates(ctx context.Context, library string, s *cards.Series, remote []plex.Episode) (int, error) {
	invalidated := 0
	for _, re := range remote {
		ep, ok := s.Episodes[cards.EpisodeKey{Season: re.Season, Episode: re.Number}]
		if !ok || !ep.HasCard() {
			continue
		}
		ep.Watched = re.Watched

		key := loaded.Key{
			Library: library,
			Series:  s.Info.FullName,
			Season:  ep.Key.Season,
			Episode: ep.Key.Episode,
		}
		entry, err := e.store.Get(ctx, key)
		if err != nil {
			return invalidated, fmt.Errorf("read loaded entry %s: %w", ep.Key.Code(), err)
		}

		effective := cards.ClassNoRecord
		if entry != nil {
			effective = entry.Spoiler
		}
		required := e.requiredClass(ep.Watched)
		ep.Class = required
		if required == effective || (required == cards.ClassSpoiled && effective == cards.ClassNoRecord) {
			continue
		}

		e.logger.Info("spoil class change",
			logging.String("series", s.Info.String()),
			logging.String("episode", ep.Key.Code()),
			logging.String("from", string(effective)),
			logging.String("to", string(required)))

		if err := e.renderer.Render(ctx, s.Info, ep, required); err != nil {
			e.logger.Error("card render failed",
				logging.String("series", s.Info.String()),
				logging.String("episode", ep.Key.Code()),
				logging.Error(err))
			continue
		}
		if entry == nil {
			continue
		}

		if err := e.client.DeletePoster(ctx, re); err != nil {
			e.logger.Warn("failed to delete remote poster",
				logging.String("series", s.Info.String()),
				logging.String("episode", ep.Key.Code()),
				logging.Error(err))
		}
		if err := e.store.ForceInvalidate(ctx, key); err != nil {
			return invalidated, fmt.Errorf("invalidate %s: %w", ep.Key.Code(), err)
		}
		invalidated++
	}
	return invalidated, nil
}
