package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/artpar/feedsync/internal/api"
	"github.com/artpar/feedsync/internal/news"
	"github.com/artpar/feedsync/internal/storage"
	"github.com/spf13/cobra"
)

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newMarkCommand(a *app) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "mark ITEM_ID...",
		Short: "Mark items as read or unread",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if len(ids) == 1 {
				_, err = execute(cmd.Context(), s.client.MarkItem(ids[0], unread).Component)
			} else {
				_, err = execute(cmd.Context(), s.client.MarkMultipleItems(ids, unread).Component)
			}
			if err != nil {
				return err
			}

			state := "read"
			if unread {
				state = "unread"
			}
			printSuccess(cmd.OutOrStdout(), "Marked %d item(s) as %s", len(ids), state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "Mark as unread instead of read")
	return cmd
}

func newStarCommand(a *app) *cobra.Command {
	var unstar bool

	cmd := &cobra.Command{
		Use:   "star FEED_ID GUID_HASH [FEED_ID GUID_HASH]...",
		Short: "Star or unstar items",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected pairs of FEED_ID GUID_HASH, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := make([]news.StarRef, 0, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				feedID, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid feed ID %q", args[i])
				}
				refs = append(refs, news.StarRef{FeedID: feedID, GUIDHash: args[i+1]})
			}

			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if len(refs) == 1 {
				_, err = execute(cmd.Context(), s.client.StarItem(refs[0].FeedID, refs[0].GUIDHash, !unstar).Component)
			} else {
				_, err = execute(cmd.Context(), s.client.StarMultipleItems(refs, !unstar).Component)
			}
			if err != nil {
				return err
			}

			verb := "Starred"
			if unstar {
				verb = "Unstarred"
			}
			printSuccess(cmd.OutOrStdout(), "%s %d item(s)", verb, len(refs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unstar, "unstar", false, "Remove the star instead of adding it")
	return cmd
}

func newMarkAllCommand(a *app) *cobra.Command {
	var newest int64

	cmd := &cobra.Command{
		Use:   "mark-all",
		Short: "Mark all items as read",
		Long:  "Mark all items up to the newest known item as read. Items that arrive later stay unread.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			id, err := s.newestItemID(ctx, newest)
			if err != nil {
				return err
			}
			if _, err := execute(ctx, s.client.MarkAllItemsRead(id).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Marked all items up to %d as read", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&newest, "newest", 0, "Newest item ID to mark (default: newest item known locally)")
	return cmd
}

type itemsOptions struct {
	Feed    int64
	Folder  int64
	Starred bool
	Unread  bool
	Limit   int
	Oldest  bool
	Local   bool
}

func newItemsCommand(a *app) *cobra.Command {
	opts := &itemsOptions{}

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items",
		Long:  "List items from the server, storing them locally, or from the local cache with --local.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			var items []news.Item
			if opts.Local {
				items, err = s.store.Items(cmd.Context(), storage.ItemQuery{
					FeedID:      opts.Feed,
					FolderID:    opts.Folder,
					UnreadOnly:  opts.Unread,
					StarredOnly: opts.Starred,
					Limit:       opts.Limit,
					OldestFirst: opts.Oldest,
				})
			} else {
				items, err = execute(cmd.Context(), s.client.GetItems(opts.query()).Component)
			}
			if err != nil {
				return err
			}

			if a.opts.JSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			printItems(cmd, items)
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.Feed, "feed", 0, "Only items of this feed")
	cmd.Flags().Int64Var(&opts.Folder, "folder", 0, "Only items of this folder")
	cmd.Flags().BoolVar(&opts.Starred, "starred", false, "Only starred items")
	cmd.Flags().BoolVar(&opts.Unread, "unread", false, "Only unread items")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of items, -1 for all")
	cmd.Flags().BoolVar(&opts.Oldest, "oldest-first", false, "Oldest items first")
	cmd.Flags().BoolVar(&opts.Local, "local", false, "Read from the local cache")
	cmd.MarkFlagsMutuallyExclusive("feed", "folder", "starred")

	return cmd
}

func (o *itemsOptions) query() api.ItemsQuery {
	q := api.DefaultItemsQuery()
	q.BatchSize = o.Limit
	q.GetRead = !o.Unread
	q.OldestFirst = o.Oldest
	switch {
	case o.Feed != 0:
		q.Type, q.ID = news.ItemTypeFeed, o.Feed
	case o.Folder != 0:
		q.Type, q.ID = news.ItemTypeFolder, o.Folder
	case o.Starred:
		q.Type = news.ItemTypeStarred
	}
	return q
}

func printItems(cmd *cobra.Command, items []news.Item) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		flags := " "
		if it.Starred {
			flags = "★"
		}
		title := truncate(it.Title, 60)
		if it.Unread {
			title = unreadStyle.Render(title)
		}
		published := ""
		if it.PubDate > 0 {
			published = it.Published().Format(time.DateOnly)
		}
		rows = append(rows, []string{
			strconv.FormatInt(it.ID, 10),
			strconv.FormatInt(it.FeedID, 10),
			flags,
			published,
			title,
		})
	}
	printTable(cmd.OutOrStdout(), []string{"ID", "FEED", "", "DATE", "TITLE"}, rows)
}
