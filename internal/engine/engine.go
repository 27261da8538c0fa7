package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cardsync/internal/cards"
	"cardsync/internal/config"
	"cardsync/internal/loaded"
	"cardsync/internal/logging"
	"cardsync/internal/services/plex"
)

// Engine drives card synchronization for configured libraries.
type Engine struct {
	store    *loaded.Store
	client   plex.Client
	renderer cards.Renderer
	logger   *slog.Logger

	action  cards.UnwatchedAction
	workers int
	retry   retryPolicy
	sleep   sleeper
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithRetryPolicy overrides the upload retry schedule (used in tests).
func WithRetryPolicy(maxAttempts int, fixed, base, ceiling time.Duration) Option {
	return func(e *Engine) {
		e.retry = retryPolicy{
			maxAttempts: maxAttempts,
			fixed:       fixed,
			base:        base,
			cap:         ceiling,
		}
	}
}

// WithSleeper overrides how retry waits are performed (used in tests).
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// New constructs an Engine. An unrecognized unwatched action in the
// configuration is a fatal error here; it is never silently defaulted.
func New(cfg *config.Config, store *loaded.Store, client plex.Client, renderer cards.Renderer, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if store == nil || client == nil || renderer == nil {
		return nil, errors.New("engine requires store, client, and renderer")
	}
	action, err := cards.ParseUnwatchedAction(cfg.Sync.Unwatched)
	if err != nil {
		return nil, fmt.Errorf("sync.unwatched: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	engine := &Engine{
		store:    store,
		client:   client,
		renderer: renderer,
		logger:   logger,
		action:   action,
		workers:  cfg.Sync.Workers,
		retry:    defaultRetryPolicy(),
		sleep:    timerSleeper,
	}
	if engine.workers < 1 {
		engine.workers = 1
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// SeriesResult summarizes one series' sync pass.
type SeriesResult struct {
	Series      cards.SeriesInfo
	Err         error
	Uploaded    int
	Failed      int
	Invalidated int
}

// LibrarySummary aggregates a full library pass. Err is set only when the
// library itself could not be resolved; per-series failures live in Series.
type LibrarySummary struct {
	Library string
	Err     error
	Series  []SeriesResult
}

// Totals sums uploads and failures across the library.
func (s *LibrarySummary) Totals() (uploaded, failed int) {
	for _, result := range s.Series {
		uploaded += result.Uploaded
		failed += result.Failed
	}
	return uploaded, failed
}

// SyncLibrary runs a full pass for one library. A library resolution miss
// aborts the whole pass; a series miss aborts only that series.
func (e *Engine) SyncLibrary(ctx context.Context, name string, series []*cards.Series) *LibrarySummary {
	summary := &LibrarySummary{Library: name}

	library, err := e.client.Section(ctx, name)
	if err != nil {
		e.logger.Error("library not found in plex",
			logging.String("library", name),
			logging.Error(err))
		summary.Err = err
		return summary
	}

	for _, s := range series {
		result := e.syncSeries(ctx, library, s)
		summary.Series = append(summary.Series, result)
	}
	return summary
}

// syncSeries runs the spoiler pass, the change filter, and the executor for
// one series, in that order.
func (e *Engine) syncSeries(ctx context.Context, library *plex.Library, s *cards.Series) SeriesResult {
	result := SeriesResult{Series: s.Info}

	show, err := e.resolveSeries(ctx, library, s.Info)
	if err != nil {
		e.logger.Warn("series not found in plex",
			logging.String("library", library.Title),
			logging.String("series", s.Info.String()),
			logging.Error(err))
		result.Err = err
		return result
	}

	remote, err := e.client.Episodes(ctx, show)
	if err != nil {
		result.Err = fmt.Errorf("list episodes: %w", err)
		e.logger.Error("failed to list episodes",
			logging.String("series", s.Info.String()),
			logging.Error(err))
		return result
	}

	invalidated, err := e.applyWatchStates(ctx, library.Title, s, remote)
	if err != nil {
		result.Err = err
		return result
	}
	result.Invalidated = invalidated

	workSet, err := e.filterLoaded(ctx, library.Title, s)
	if err != nil {
		result.Err = err
		return result
	}
	if len(workSet) == 0 {
		return result
	}

	for _, push := range e.push(ctx, library.Title, s, remote, workSet) {
		if push.Err != nil {
			result.Failed++
		} else {
			result.Uploaded++
		}
	}
	return result
}
