package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/artpar/feedsync/internal/api"
	"github.com/artpar/feedsync/internal/config"
	"github.com/artpar/feedsync/internal/history"
	historysqlite "github.com/artpar/feedsync/internal/history/sqlite"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/metrics"
	"github.com/artpar/feedsync/internal/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// DatabaseFile is the default cache file name inside the config directory.
const DatabaseFile = "feedsync.db"

// session holds what one command needs to talk to the server.
type session struct {
	account  *config.Account
	store    *sqlite.Store
	history  *historysqlite.Store
	keep     int
	client   *api.Client
	registry *prometheus.Registry
	metrics  string
	log      *logrus.Entry
}

func (a *app) loadAccount() (*config.Account, error) {
	account, err := config.LoadAccount(a.v)
	if errors.Is(err, config.ErrNoAccount) {
		return nil, fmt.Errorf("%w: run \"feedsync account init\" first", err)
	}
	return account, err
}

func (a *app) databasePath() (string, error) {
	if path := a.v.GetString("database"); path != "" {
		return path, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFile), nil
}

// open connects to the configured account and local cache.
func (a *app) open() (*session, error) {
	account, err := a.loadAccount()
	if err != nil {
		return nil, err
	}

	path, err := a.databasePath()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	log := logrus.NewEntry(a.log).WithField("host", account.Host)
	opts := []api.Option{
		api.WithStore(store),
		api.WithLogger(log),
		api.WithMetrics(metrics.New(registry)),
	}

	s := &session{
		account:  account,
		store:    store,
		registry: registry,
		metrics:  a.opts.MetricsFile,
		log:      log,
	}

	if !a.v.GetBool("history.disabled") {
		s.history, err = historysqlite.New(path)
		if err != nil {
			store.Close()
			return nil, err
		}
		s.keep = a.v.GetInt("history.keep")
		opts = append(opts, api.WithRecorder(history.NewRecorder(s.history, log)))
	}

	s.client = api.NewClient(account, opts...)
	return s, nil
}

// openHistory opens the journal without an account.
func (a *app) openHistory() (*historysqlite.Store, error) {
	path, err := a.databasePath()
	if err != nil {
		return nil, err
	}
	return historysqlite.New(path)
}

func (s *session) Close() error {
	var errs []error
	if s.metrics != "" {
		if err := prometheus.WriteToTextfile(s.metrics, s.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if s.history != nil {
		if s.keep > 0 {
			result, err := s.history.Prune(context.Background(), history.PruneOptions{KeepLast: s.keep})
			if err != nil {
				s.log.WithError(err).Warn("failed to prune history")
			} else if result.DeletedCount > 0 {
				s.log.WithField("deleted", result.DeletedCount).Debug("pruned history")
			}
		}
		if err := s.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// execute runs one operation and waits for its outcome.
func execute[T any](ctx context.Context, c *lifecycle.Component[T]) (T, error) {
	attempt, err := c.Execute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return attempt.Wait(ctx)
}

// newestItemID returns id when set, otherwise the newest item known locally.
func (s *session) newestItemID(ctx context.Context, id int64) (int64, error) {
	if id > 0 {
		return id, nil
	}
	newest, err := s.store.NewestItemID(ctx)
	if err != nil {
		return 0, err
	}
	if newest == 0 {
		return 0, errors.New("no items known locally: run \"feedsync sync\" or pass --newest")
	}
	return newest, nil
}
