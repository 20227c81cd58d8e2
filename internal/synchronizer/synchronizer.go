// Package synchronizer mirrors a News account into local storage by chaining
// the folder, feed and item listings.
package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/feedsync/internal/api"
	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/news"
	"github.com/sirupsen/logrus"
)

// ErrInProgress is returned by Sync while a previous run is still going.
var ErrInProgress = errors.New("synchronization already in progress")

// ErrNoStore is returned when the client has no store attached.
var ErrNoStore = errors.New("synchronization requires a local store")

// State keeps track of the last successful run.
type State interface {
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
}

// Result summarizes a completed run.
type Result struct {
	Full      bool
	Folders   int
	Feeds     int
	Items     int
	StartedAt time.Time
	Duration  time.Duration
}

// Synchronizer runs at most one synchronization at a time.
type Synchronizer struct {
	client *api.Client
	state  State
	log    *logrus.Entry

	mu        sync.Mutex
	running   bool
	lastErr   error
	succeeded []func(Result)
	failed    []func(error)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

func WithLogger(log *logrus.Entry) Option {
	return func(s *Synchronizer) {
		s.log = log
	}
}

// New creates a synchronizer. The client must have a store attached; state
// is usually the same store.
func New(client *api.Client, state State, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		client: client,
		state:  state,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("operation", "sync")
	return s
}

// OnSucceeded registers fn to receive every completed run.
func (s *Synchronizer) OnSucceeded(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = append(s.succeeded, fn)
}

// OnFailed registers fn to receive the first failure of every failed run.
func (s *Synchronizer) OnFailed(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, fn)
}

func (s *Synchronizer) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Err returns the failure of the last run, or nil.
func (s *Synchronizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Sync starts a run and returns without waiting for it. Without a previous
// run all unread and starred items are fetched; otherwise only items changed
// since the last run.
func (s *Synchronizer) Sync(ctx context.Context) (*Run, error) {
	if s.client.Store() == nil || s.state == nil {
		return nil, ErrNoStore
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("sync called while a synchronization is in progress")
		return nil, ErrInProgress
	}
	s.running = true
	s.lastErr = nil
	s.mu.Unlock()

	r := &Run{
		s:    s,
		ctx:  ctx,
		done: make(chan struct{}),
		result: Result{
			StartedAt: time.Now(),
		},
	}

	last, err := s.state.LastSync(ctx)
	if err != nil {
		r.fail(fmt.Errorf("failed to read last sync time: %w", err))
		return r, nil
	}
	r.since = last
	r.result.Full = last.IsZero()

	s.log.WithField("full", r.result.Full).Debug("synchronization started")
	step(r, s.client.GetFolders().Component, r.gotFolders)
	return r, nil
}

func (s *Synchronizer) finish(r *Run) {
	s.mu.Lock()
	s.running = false
	s.lastErr = r.err
	succeeded := s.succeeded
	failed := s.failed
	s.mu.Unlock()

	if r.err != nil {
		s.log.WithError(r.err).Debug("synchronization failed")
		for _, fn := range failed {
			fn(r.err)
		}
	} else {
		s.log.WithFields(logrus.Fields{
			"folders":  r.result.Folders,
			"feeds":    r.result.Feeds,
			"items":    r.result.Items,
			"duration": r.result.Duration,
		}).Debug("synchronization finished")
		for _, fn := range succeeded {
			fn(r.result)
		}
	}
	close(r.done)
}

// Run is one started synchronization.
type Run struct {
	s      *Synchronizer
	ctx    context.Context
	since  time.Time
	once   sync.Once
	done   chan struct{}
	result Result
	err    error
}

// Done is closed once the run has completed.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run completes or ctx is done.
func (r *Run) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Run) fail(err error) {
	r.once.Do(func() {
		r.err = err
		r.result.Duration = time.Since(r.result.StartedAt)
		r.s.finish(r)
	})
}

func (r *Run) succeed() {
	r.once.Do(func() {
		r.result.Duration = time.Since(r.result.StartedAt)
		r.s.finish(r)
	})
}

// step executes c and continues with next once it succeeded.
func step[T any](r *Run, c *lifecycle.Component[T], next func(T)) {
	c.OnSucceeded(next)
	c.OnFailed(func(e *apierr.Error) { r.fail(e) })
	if _, err := c.Execute(r.ctx); err != nil {
		r.fail(err)
	}
}

func (r *Run) gotFolders(folders []news.Folder) {
	r.result.Folders = len(folders)
	step(r, r.s.client.GetFeeds().Component, r.gotFeeds)
}

func (r *Run) gotFeeds(list news.FeedList) {
	r.result.Feeds = len(list.Feeds)
	if r.result.Full {
		unread := api.DefaultItemsQuery()
		unread.GetRead = false
		step(r, r.s.client.GetItems(unread).Component, r.gotUnread)
		return
	}
	q := api.UpdatedItemsQuery{LastModified: r.since.Unix(), Type: news.ItemTypeAll}
	step(r, r.s.client.GetUpdatedItems(q).Component, r.gotItems)
}

func (r *Run) gotUnread(items []news.Item) {
	r.result.Items += len(items)
	starred := api.DefaultItemsQuery()
	starred.Type = news.ItemTypeStarred
	step(r, r.s.client.GetItems(starred).Component, r.gotItems)
}

func (r *Run) gotItems(items []news.Item) {
	r.result.Items += len(items)
	if err := r.s.state.SetLastSync(context.WithoutCancel(r.ctx), r.result.StartedAt); err != nil {
		r.fail(fmt.Errorf("failed to store last sync time: %w", err))
		return
	}
	r.succeed()
}
