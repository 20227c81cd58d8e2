package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/artpar/feedsync/internal/api"
	"github.com/artpar/feedsync/internal/synchronizer"
	"github.com/spf13/cobra"
)

func newSyncCommand(a *app) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Update the local cache from the server",
		Long:  "Fetch folders, feeds and items changed since the last sync. The first sync, or one with --full, fetches all unread and starred items.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if full {
				if err := s.store.SetLastSync(ctx, time.Time{}); err != nil {
					return err
				}
			}

			syncer := synchronizer.New(s.client, s.store,
				synchronizer.WithLogger(a.log.WithField("host", s.account.Host)))
			run, err := syncer.Sync(ctx)
			if err != nil {
				return err
			}
			result, err := run.Wait(ctx)
			if err != nil {
				return err
			}

			if a.opts.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			kind := "Incremental"
			if result.Full {
				kind = "Full"
			}
			printSuccess(cmd.OutOrStdout(), "%s sync: %d folder(s), %d feed(s), %d item(s) in %s",
				kind, result.Folders, result.Feeds, result.Items, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Ignore the last sync time")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and local cache status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			status, err := execute(ctx, s.client.GetStatus().Component)
			if err != nil {
				return err
			}
			counts, err := s.store.Counts(ctx)
			if err != nil {
				return err
			}
			last, err := s.store.LastSync(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.opts.JSON {
				return writeJSON(out, map[string]any{
					"server":    status,
					"local":     counts,
					"last_sync": last,
				})
			}

			fmt.Fprintln(out, titleStyle.Render("Server"))
			fmt.Fprintf(out, "  Host:     %s\n", s.account.Host)
			fmt.Fprintf(out, "  Version:  %s\n", status.Version)
			if status.Warnings.ImproperlyConfiguredCron {
				printWarning(out, "The server cron job is not configured properly; feeds are not updated")
			}
			if status.Warnings.IncorrectDBCharset {
				printWarning(out, "The server database charset is not utf8mb4")
			}

			fmt.Fprintln(out, titleStyle.Render("Local cache"))
			fmt.Fprintf(out, "  Folders:  %d\n", counts.Folders)
			fmt.Fprintf(out, "  Feeds:    %d\n", counts.Feeds)
			fmt.Fprintf(out, "  Items:    %d (%d unread, %d starred)\n", counts.Items, counts.Unread, counts.Starred)
			if last.IsZero() {
				fmt.Fprintf(out, "  Synced:   %s\n", mutedStyle.Render("never"))
			} else {
				fmt.Fprintf(out, "  Synced:   %s\n", last.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	var server bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "feedsync %s (%s/%s)\n", a.version, runtime.GOOS, runtime.GOARCH)
			if !server {
				return nil
			}

			account, err := a.loadAccount()
			if err != nil {
				return err
			}
			version, err := execute(cmd.Context(), api.NewClient(account).GetVersion().Component)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "News app %s on %s\n", version, account.Host)
			return nil
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "Also query the News app version")
	return cmd
}
