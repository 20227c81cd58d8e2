package cli

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/artpar/feedsync/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var opts history.QueryOptions
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exchanges with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			if since > 0 {
				opts.After = time.Now().Add(-since)
			}
			entries, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if a.opts.JSON {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := "-"
				if e.Status != 0 {
					status = strconv.Itoa(e.Status)
				}
				result := successStyle.Render("ok")
				if e.Failed() {
					result = warnStyle.Render(e.ErrorCode)
				}
				rows = append(rows, []string{
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.Operation,
					e.Method + " " + truncate(e.Route, 40),
					status,
					result,
					fmt.Sprintf("%dms", e.Duration),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"TIME", "OPERATION", "REQUEST", "STATUS", "RESULT", "TOOK"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Operation, "operation", "", "Only this operation, e.g. mark_item")
	cmd.Flags().BoolVar(&opts.FailedOnly, "failed", false, "Only failed exchanges")
	cmd.Flags().DurationVar(&since, "since", 0, "Only exchanges newer than this, e.g. 1h")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of entries")

	cmd.AddCommand(newHistoryStatsCommand(a))
	cmd.AddCommand(newHistoryPruneCommand(a))
	cmd.AddCommand(newHistoryClearCommand(a))
	return cmd
}

func newHistoryStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the exchange history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.opts.JSON {
				return writeJSON(out, stats)
			}

			fmt.Fprintln(out, titleStyle.Render("History"))
			fmt.Fprintf(out, "  Exchanges:  %d (%d failed)\n", stats.TotalEntries, stats.Failures)
			if stats.TotalEntries == 0 {
				return nil
			}
			fmt.Fprintf(out, "  Success:    %.1f%%\n", stats.SuccessRate*100)
			fmt.Fprintf(out, "  Average:    %.0fms\n", stats.AverageTime)
			fmt.Fprintf(out, "  Range:      %s to %s\n",
				stats.OldestEntry.Format("2006-01-02 15:04"), stats.NewestEntry.Format("2006-01-02 15:04"))

			rows := make([][]string, 0, len(stats.OperationCounts))
			for op, n := range stats.OperationCounts {
				rows = append(rows, []string{op, strconv.FormatInt(n, 10)})
			}
			slices.SortFunc(rows, func(a, b []string) int { return cmp.Compare(a[0], b[0]) })
			printTable(out, []string{"OPERATION", "COUNT"}, rows)
			return nil
		},
	}
}

func newHistoryPruneCommand(a *app) *cobra.Command {
	var opts history.PruneOptions

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop old history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.OlderThan <= 0 && opts.KeepLast <= 0 {
				return errors.New("one of --older-than or --keep is required")
			}
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.Prune(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %d entries", result.DeletedCount)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.OlderThan, "older-than", 0, "Delete entries older than this, e.g. 720h")
	cmd.Flags().IntVar(&opts.KeepLast, "keep", 0, "Keep only the newest N entries")
	return cmd
}

func newHistoryClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
}
