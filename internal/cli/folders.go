package cli

import (
	"strconv"

	"github.com/artpar/feedsync/internal/news"
	"github.com/spf13/cobra"
)

func newFoldersCommand(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List and manage folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			var folders []news.Folder
			if local {
				folders, err = s.store.Folders(cmd.Context())
			} else {
				folders, err = execute(cmd.Context(), s.client.GetFolders().Component)
			}
			if err != nil {
				return err
			}

			if a.opts.JSON {
				return writeJSON(cmd.OutOrStdout(), folders)
			}
			rows := make([][]string, 0, len(folders))
			for _, f := range folders {
				rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Name})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Read from the local cache")

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.Close()

			folder, err := execute(cmd.Context(), s.client.CreateFolder(args[0]).Component)
			if err != nil {
				return err
			}
			if a.opts.JSON {
				return writeJSON(cmd.OutOrStdout(), folder)
			}
			printSuccess(cmd.OutOrStdout(), "Created folder %d (%s)", folder.ID, folder.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename FOLDER_ID NAME",
		Short: "Rename a folder",
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

			if _, err := execute(cmd.Context(), s.client.RenameFolder(id, args[1]).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Renamed folder %d to %q", id, args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete FOLDER_ID",
		Short: "Delete a folder with its feeds",
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

			if _, err := execute(cmd.Context(), s.client.DeleteFolder(id).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted folder %d", id)
			return nil
		},
	})

	return cmd
}

func newMarkFolderCommand(a *app) *cobra.Command {
	var newest int64

	cmd := &cobra.Command{
		Use:   "mark-folder FOLDER_ID",
		Short: "Mark all items of a folder as read",
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
			if _, err := execute(ctx, s.client.MarkFolderRead(id, upTo).Component); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Marked folder %d as read", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&newest, "newest", 0, "Newest item ID to mark (default: newest item known locally)")
	return cmd
}
