// Package cli implements the feedsync command line.
package cli

import (
	"fmt"
	"io"

	"github.com/artpar/feedsync/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	ConfigFile  string
	JSON        bool
	MetricsFile string
}

// app is shared by all commands of one root command.
type app struct {
	version string
	v       *viper.Viper
	opts    globalOptions
	log     *logrus.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	a := &app{
		version: version,
		v:       viper.New(),
		log:     logrus.New(),
	}

	cmd := &cobra.Command{
		Use:           "feedsync",
		Short:         "feedsync - A Nextcloud News client",
		Long:          "feedsync reads and updates a Nextcloud News account and keeps a local copy of it.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.ConfigFile, "config", "", "Config file (default \"./feedsync.yaml\" or \"$HOME/.config/feedsync/feedsync.yaml\")")
	flags.String("log-level", "warn", "Log level, can be one of: debug, info, warn, error")
	flags.String("database", "", "Local cache database (default \"$HOME/.config/feedsync/feedsync.db\")")
	flags.BoolVar(&a.opts.JSON, "json", false, "Output as JSON")
	flags.StringVar(&a.opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the command")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("database", flags.Lookup("database"))

	cmd.AddCommand(newAccountCommand(a))
	cmd.AddCommand(newMarkCommand(a))
	cmd.AddCommand(newStarCommand(a))
	cmd.AddCommand(newMarkAllCommand(a))
	cmd.AddCommand(newMarkFeedCommand(a))
	cmd.AddCommand(newMarkFolderCommand(a))
	cmd.AddCommand(newFoldersCommand(a))
	cmd.AddCommand(newFeedsCommand(a))
	cmd.AddCommand(newItemsCommand(a))
	cmd.AddCommand(newSyncCommand(a))
	cmd.AddCommand(newStatusCommand(a))
	cmd.AddCommand(newHistoryCommand(a))
	cmd.AddCommand(newVersionCommand(a))

	return cmd
}

func (a *app) init(stderr io.Writer) error {
	if err := config.Init(a.v, a.opts.ConfigFile); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(a.v.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.log.SetLevel(level)
	a.log.SetOutput(stderr)
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}
