package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/artpar/feedsync/internal/api"
	"github.com/artpar/feedsync/internal/config"
	"github.com/spf13/cobra"
)

type accountInitOptions struct {
	URL             string
	Username        string
	Password        string
	UserAgent       string
	IgnoreTLSErrors bool
	Timeout         time.Duration
	Verify          bool
}

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the News account",
	}
	cmd.AddCommand(newAccountInitCommand(a))
	cmd.AddCommand(newAccountShowCommand(a))
	return cmd
}

func newAccountInitCommand(a *app) *cobra.Command {
	opts := &accountInitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the account configuration",
		Long:  "Write the server URL and credentials to the config file, optionally checking them against the server first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountInit(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "Nextcloud URL, e.g. https://cloud.example.com/nextcloud")
	cmd.Flags().StringVarP(&opts.Username, "user", "u", "", "User name")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Password or app password")
	cmd.Flags().StringVar(&opts.UserAgent, "user-agent", "", "User agent sent to the server")
	cmd.Flags().BoolVar(&opts.IgnoreTLSErrors, "ignore-tls-errors", false, "Accept invalid server certificates")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Request timeout")
	cmd.Flags().BoolVar(&opts.Verify, "verify", true, "Check the account against the server before saving")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (a *app) configPath() (string, error) {
	if a.opts.ConfigFile != "" {
		return a.opts.ConfigFile, nil
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		return used, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.FileName+".yaml"), nil
}

func runAccountInit(cmd *cobra.Command, a *app, opts *accountInitOptions) error {
	account, err := config.FromURL(opts.URL, opts.Username, opts.Password)
	if err != nil {
		return err
	}
	account.UserAgent = opts.UserAgent
	account.IgnoreTLSErrors = opts.IgnoreTLSErrors
	account.Timeout = opts.Timeout
	if err := account.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Verify {
		status, err := execute(cmd.Context(), api.NewClient(account).GetStatus().Component)
		if err != nil {
			return fmt.Errorf("failed to verify account: %w", err)
		}
		printSuccess(out, "Connected to News %s", status.Version)
	}

	path, err := a.configPath()
	if err != nil {
		return err
	}

	cfg := &config.Config{}
	if existing, err := config.Read(path); err == nil {
		cfg = existing
	}
	cfg.Account = *account

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	printSuccess(out, "Account saved to %s", path)
	return nil
}

func newAccountShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := a.loadAccount()
			if err != nil {
				return err
			}
			loc, err := account.ResolveBaseLocation()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.opts.JSON {
				return writeJSON(out, map[string]any{
					"url":               loc.BaseURL().String(),
					"username":          loc.Username,
					"user_agent":        loc.UserAgent,
					"ignore_tls_errors": loc.IgnoreTLSErrors,
					"timeout":           loc.Timeout.String(),
				})
			}

			fmt.Fprintln(out, titleStyle.Render("Account"))
			fmt.Fprintf(out, "  URL:        %s\n", loc.BaseURL())
			fmt.Fprintf(out, "  User:       %s\n", loc.Username)
			fmt.Fprintf(out, "  Password:   %s\n", mutedStyle.Render("(hidden)"))
			fmt.Fprintf(out, "  User agent: %s\n", loc.UserAgent)
			fmt.Fprintf(out, "  Timeout:    %s\n", loc.Timeout)
			if loc.IgnoreTLSErrors {
				printWarning(out, "TLS certificate errors are ignored")
			}
			return nil
		},
	}
}
