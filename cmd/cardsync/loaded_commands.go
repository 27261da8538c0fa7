package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cardsync/internal/cards"
	"cardsync/internal/config"
	"cardsync/internal/loaded"
)

func newLoadedCommand(ctx *commandContext) *cobra.Command {
	loadedCmd := &cobra.Command{
		Use:   "loaded",
		Short: "Inspect and manage the loaded-card store",
	}

	loadedCmd.AddCommand(newLoadedStatusCommand(ctx))
	loadedCmd.AddCommand(newLoadedListCommand(ctx))
	loadedCmd.AddCommand(newLoadedClearCommand(ctx))
	loadedCmd.AddCommand(newLoadedInvalidateCommand(ctx))

	return loadedCmd
}

func newLoadedStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show loaded-card store summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *loaded.Store) error {
				stats, err := store.Summarize(cmd.Context())
				if err != nil {
					return err
				}
				if stats.Entries == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Loaded store is empty")
					return nil
				}
				rows := [][]string{
					{"Cards", strconv.Itoa(stats.Entries)},
					{"Series", strconv.Itoa(stats.Series)},
					{"Pending reload", strconv.Itoa(stats.Forced)},
				}
				table := renderTable(cmd.OutOrStdout(), []string{"Metric", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newLoadedListCommand(ctx *commandContext) *cobra.Command {
	var libraryFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *loaded.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if libraryFilter != "" {
					filtered := entries[:0]
					for _, entry := range entries {
						if entry.Library == libraryFilter {
							filtered = append(filtered, entry)
						}
					}
					entries = filtered
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Loaded store is empty")
					return nil
				}

				sortEntries(entries)
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					state := strconv.FormatInt(entry.Filesize, 10)
					if entry.Forced() {
						state = "reload"
					}
					rows = append(rows, []string{
						entry.Library,
						entry.Series,
						entry.EpisodeKey().Code(),
						string(entry.Spoiler),
						state,
					})
				}
				table := renderTable(cmd.OutOrStdout(),
					[]string{"Library", "Series", "Episode", "Class", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&libraryFilter, "library", "l", "", "List only the named library")
	return cmd
}

func newLoadedClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [library series]",
		Short: "Remove loaded-card records, entirely or for one series",
		Args:  matchZeroOrTwoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *loaded.Store) error {
				if len(args) == 2 {
					removed, err := store.DeleteSeries(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d loaded cards for %s / %s\n",
						removed, args[0], args[1])
					return nil
				}
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d loaded cards\n", removed)
				return nil
			})
		},
	}
}

func matchZeroOrTwoArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("accepts no arguments or a library and series pair, received %d", len(args))
	}
	return nil
}

func newLoadedInvalidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <library> <series> [season-episode]",
		Short: "Force cards to reload on the next sync pass",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *loaded.Store) error {
				library, series := args[0], args[1]

				if len(args) == 3 {
					episodeKey, err := cards.ParseEpisodeKey(args[2])
					if err != nil {
						return err
					}
					key := loaded.Key{
						Library: library,
						Series:  series,
						Season:  episodeKey.Season,
						Episode: episodeKey.Episode,
					}
					if err := store.ForceInvalidate(cmd.Context(), key); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Marked %s / %s %s for reload\n",
						library, series, episodeKey.Code())
					return nil
				}

				entries, err := store.FindSeries(cmd.Context(), library, series)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No loaded cards for %s / %s\n", library, series)
					return nil
				}
				for _, entry := range entries {
					if err := store.ForceInvalidate(cmd.Context(), entry.Key); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d cards for reload in %s / %s\n",
					len(entries), library, series)
				return nil
			})
		},
	}
}

// sortEntries orders entries for display using locale-aware series ordering,
// then episode order within a series.
func sortEntries(entries []loaded.Entry) {
	collator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Library != b.Library {
			return collator.CompareString(a.Library, b.Library) < 0
		}
		if a.Series != b.Series {
			return collator.CompareString(a.Series, b.Series) < 0
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Episode < b.Episode
	})
}
