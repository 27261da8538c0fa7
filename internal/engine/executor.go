package engine

import (
	"context"
	"fmt"
	"sync"

	"cardsync/internal/cards"
	"cardsync/internal/fileutil"
	"cardsync/internal/loaded"
	"cardsync/internal/logging"
	"cardsync/internal/services/plex"
)

// PushResult is the outcome of one episode upload.
type PushResult struct {
	Key cards.EpisodeKey
	Err error
}

// push uploads every episode in the work set through a bounded worker pool.
// Only episodes the remote server knows are attempted. A successful upload
// records the artifact's current size and class in the store; a failed one
// leaves the store untouched so the episode is retried next pass.
func (e *Engine) push(ctx context.Context, library string, s *cards.Series, remote []plex.Episode, workSet map[cards.EpisodeKey]*cards.Episode) []PushResult {
	remoteByKey := make(map[cards.EpisodeKey]plex.Episode, len(remote))
	for _, re := range remote {
		remoteByKey[cards.EpisodeKey{Season: re.Season, Episode: re.Number}] = re
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []PushResult
		slots   = make(chan struct{}, e.workers)
	)
	for key, ep := range workSet {
		re, ok := remoteByKey[key]
		if !ok {
			e.logger.Debug("episode not on server, skipping upload",
				logging.String("series", s.Info.String()),
				logging.String("episode", key.Code()))
			continue
		}

		wg.Add(1)
		go func(key cards.EpisodeKey, ep *cards.Episode, re plex.Episode) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			err := e.uploadEpisode(ctx, library, s, ep, re)
			mu.Lock()
			results = append(results, PushResult{Key: key, Err: err})
			mu.Unlock()
		}(key, ep, re)
	}
	wg.Wait()
	return results
}

// uploadEpisode runs the retrying upload for one episode and records success
// in the store.
func (e *Engine) uploadEpisode(ctx context.Context, library string, s *cards.Series, ep *cards.Episode, re plex.Episode) error {
	if err := e.uploadWithRetry(ctx, s, ep, re); err != nil {
		e.logger.Error("card upload failed",
			logging.String("series", s.Info.String()),
			logging.String("episode", ep.Key.Code()),
			logging.Error(err))
		return err
	}

	size, err := fileutil.FileSize(ep.CardPath)
	if err != nil {
		return fmt.Errorf("stat uploaded card: %w", err)
	}
	key := loaded.Key{
		Library: library,
		Series:  s.Info.FullName,
		Season:  ep.Key.Season,
		Episode: ep.Key.Episode,
	}
	if err := e.store.Upsert(ctx, key, size, ep.Class); err != nil {
		return fmt.Errorf("record upload %s: %w", ep.Key.Code(), err)
	}

	e.logger.Info("card uploaded",
		logging.String("series", s.Info.String()),
		logging.String("episode", ep.Key.Code()),
		logging.String("class", string(ep.Class)),
		logging.Int64("size", size))
	return nil
}

// uploadWithRetry attempts the poster upload up to the policy's attempt
// budget, waiting the scheduled delay between failures. Context cancellation
// during a wait aborts immediately.
func (e *Engine) uploadWithRetry(ctx context.Context, s *cards.Series, ep *cards.Episode, re plex.Episode) error {
	var lastErr error
	for attempt := 1; attempt <= e.retry.maxAttempts; attempt++ {
		lastErr = e.client.UploadPoster(ctx, re, ep.CardPath)
		if lastErr == nil {
			return nil
		}
		if attempt == e.retry.maxAttempts {
			break
		}
		e.logger.Warn("upload attempt failed, retrying",
			logging.String("series", s.Info.String()),
			logging.String("episode", ep.Key.Code()),
			logging.Int("attempt", attempt),
			logging.Error(lastErr))
		if err := e.sleep(ctx, e.retry.delay(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("upload failed after %d attempts: %w", e.retry.maxAttempts, lastErr)
}
