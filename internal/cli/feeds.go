package cli

import (
	"fmt"
	"strconv"

	"github.com/artpar/feedsync/internal/news"
	"github.com/spf13/cobra"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q", arg)
	}
	return id, nil
}

func newFeedsCommand(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List and manage feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			var list news.FeedList
			if local {
				list.Feeds, err = s.store.Feeds(cmd.Context())
			} else {
				list, err = execute(cmd.Context(), s.client.GetFeeds().Component)
			}
			if err != nil {
				return err
			}

			if a.opts.JSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			printFeeds(cmd, list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Read from the local cache")

	cmd.AddCommand(newFeedCreateCommand(a))
	cmd.AddCommand(newFeedRenameCommand(a))
	cmd.AddCommand(newFeedMoveCommand(a))
	cmd.AddCommand(newFeedDeleteCommand(a))
	return cmd
}

func printFeeds(cmd *cobra.Command, list news.FeedList) {
	rows := make([][]string, 0, len(list.Feeds))
	for _, f := range list.Feeds {
		title := truncate(f.Title, 50)
		if f.UpdateErrorCount > 0 {
			title = warnStyle.Render(title)
		}
		rows = append(rows, []string{
			strconv.FormatInt(f.ID, 10),
			strconv.FormatInt(f.FolderID, 10),
			strconv.FormatInt(f.UnreadCount, 10),
			title,
			mutedStyle.Render(f.URL),
		})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"ID", "FOLDER", "UNREAD", "TITLE", "URL"}, rows)
	if list.StarredCount > 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d starred item(s)", list.StarredCount)))
	}
}

func newFeedCreateCommand(a *app) *cobra.Command {
	var folder int64

	cmd := &cobra.Command{
		Use:   "create URL",
		Short: "Subscribe to a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			feed, err := execute(cmd.Context(), s.client.CreateFeed(args[0], folder).Component)
			if err != nil {
				return err
			}
			if a.opts.JSON {
				return writeJSON(cmd.OutOrStdout(), feed)
			}
			printSuccess(cmd.OutOrStdout(), "Created feed %d (%s)", feed.ID, feed.Title)
			return nil
		},
	}

	cmd.Flags().Int64Var(&folder, "folder", 0, "Folder ID, 0 for the root folder")
	return cmd
}

func newFeedRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename FEED_ID TITLE",
		Short: "Rename a feed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := execute(cmd.Context(), s.client.RenameFeed(id, args[1]).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Renamed feed %d to %q", id, args[1])
			return nil
		},
	}
}

func newFeedMoveCommand(a *app) *cobra.Command {
	var folder int64

	cmd := &cobra.Command{
		Use:   "move FEED_ID",
		Short: "Move a feed to another folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := execute(cmd.Context(), s.client.MoveFeed(id, folder).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Moved feed %d to folder %d", id, folder)
			return nil
		},
	}

	cmd.Flags().Int64Var(&folder, "folder", 0, "Target folder ID, 0 for the root folder")
	return cmd
}

func newFeedDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete FEED_ID",
		Short: "Unsubscribe from a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := execute(cmd.Context(), s.client.DeleteFeed(id).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted feed %d", id)
			return nil
		},
	}
}

func newMarkFeedCommand(a *app) *cobra.Command {
	var newest int64

	cmd := &cobra.Command{
		Use:   "mark-feed FEED_ID",
		Short: "Mark all items of a feed as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			upTo, err := s.newestItemID(ctx, newest)
			if err != nil {
				return err
			}
			if _, err := execute(ctx, s.client.MarkFeedRead(id, upTo).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Marked feed %d as read", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&newest, "newest", 0, "Newest item ID to mark (default: newest item known locally)")
	return cmd
}
