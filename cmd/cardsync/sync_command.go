package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cardsync/internal/cards"
	"cardsync/internal/config"
	"cardsync/internal/engine"
	"cardsync/internal/loaded"
	"cardsync/internal/logging"
	"cardsync/internal/notifications"
	"cardsync/internal/services/plex"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var libraryFilter string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a full card sync pass across configured libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *loaded.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("initialize logging: %w", err)
				}

				client := plex.NewHTTPClient(cfg)
				renderer := buildRenderer(cfg, logger)
				notify := notifications.NewService(cfg)

				eng, err := engine.New(cfg, store, client, renderer, logger)
				if err != nil {
					return err
				}

				libraries := selectLibraries(cfg, libraryFilter)
				if len(libraries) == 0 {
					return fmt.Errorf("no configured library matches %q", libraryFilter)
				}

				start := time.Now()
				if err := notify.NotifySyncStarted(cmd.Context(), len(libraries)); err != nil {
					logger.Warn("sync start notification failed", logging.Error(err))
				}

				var (
					rows     [][]string
					passErrs []error
					uploaded int
					failed   int
				)
				for _, lib := range libraries {
					series, err := cards.ScanLibrary(lib.CardsDir)
					if err != nil {
						passErrs = append(passErrs, err)
						if nerr := notify.NotifyError(cmd.Context(), err, "card scan"); nerr != nil {
							logger.Warn("error notification failed", logging.Error(nerr))
						}
						rows = append(rows, []string{lib.Name, "-", "-", "-", "scan failed"})
						continue
					}

					summary := eng.SyncLibrary(cmd.Context(), lib.Name, series)
					if summary.Err != nil {
						passErrs = append(passErrs, fmt.Errorf("library %s: %w", lib.Name, summary.Err))
						rows = append(rows, []string{lib.Name, strconv.Itoa(len(series)), "-", "-", "not found"})
						continue
					}

					libUploaded, libFailed := summary.Totals()
					uploaded += libUploaded
					failed += libFailed

					swapped := 0
					for _, result := range summary.Series {
						swapped += result.Invalidated
					}
					if err := notify.NotifySpoilerChanges(cmd.Context(), lib.Name, swapped); err != nil {
						logger.Warn("spoiler notification failed", logging.Error(err))
					}

					rows = append(rows, []string{
						lib.Name,
						strconv.Itoa(len(series)),
						strconv.Itoa(libUploaded),
						strconv.Itoa(libFailed),
						strconv.Itoa(swapped),
					})
				}

				if err := notify.NotifySyncCompleted(cmd.Context(), uploaded, failed, time.Since(start)); err != nil {
					logger.Warn("sync completion notification failed", logging.Error(err))
				}

				out := cmd.OutOrStdout()
				table := renderTable(out,
					[]string{"Library", "Series", "Uploaded", "Failed", "Swapped"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				)
				fmt.Fprintln(out, table)
				fmt.Fprintf(out, "Synced %d cards (%d failed) in %s\n",
					uploaded, failed, time.Since(start).Round(time.Second))

				if len(passErrs) > 0 {
					return errors.Join(passErrs...)
				}
				if failed > 0 {
					return fmt.Errorf("%d cards failed to upload", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&libraryFilter, "library", "l", "", "Sync only the named library")
	return cmd
}

func selectLibraries(cfg *config.Config, filter string) []config.Library {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return cfg.Libraries
	}
	var matched []config.Library
	for _, lib := range cfg.Libraries {
		if strings.EqualFold(lib.Name, filter) {
			matched = append(matched, lib)
		}
	}
	return matched
}

func buildRenderer(cfg *config.Config, logger *slog.Logger) cards.Renderer {
	if strings.TrimSpace(cfg.Render.Command) == "" {
		return cards.NopRenderer{}
	}
	return cards.NewCommandRenderer(cfg.Render.Command, logger)
}
