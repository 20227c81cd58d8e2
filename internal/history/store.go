// Package history journals the exchanges made with the News server.
package history

import (
	"context"
	"errors"

	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/sirupsen/logrus"
)

// Common errors
var (
	ErrNotFound      = errors.New("history entry not found")
	ErrInvalidID     = errors.New("invalid history entry ID")
	ErrStoreClosed   = errors.New("history store is closed")
	ErrInvalidOption = errors.New("invalid query option")
)

// Store defines the interface for history storage operations.
type Store interface {
	// Add adds a new entry and returns its ID.
	Add(ctx context.Context, entry Entry) (string, error)

	// Get retrieves a single entry by ID.
	Get(ctx context.Context, id string) (Entry, error)

	// List retrieves entries matching the query options, newest first.
	List(ctx context.Context, opts QueryOptions) ([]Entry, error)

	// Count returns the number of entries matching the query options.
	Count(ctx context.Context, opts QueryOptions) (int64, error)

	Prune(ctx context.Context, opts PruneOptions) (PruneResult, error)
	Stats(ctx context.Context) (Stats, error)
	Clear(ctx context.Context) error
	Close() error
}

// Recorder adapts a Store to lifecycle.Recorder.
type Recorder struct {
	store Store
	log   *logrus.Entry
}

var _ lifecycle.Recorder = (*Recorder)(nil)

// NewRecorder journals exchanges into store.
func NewRecorder(store Store, log *logrus.Entry) *Recorder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Recorder{store: store, log: log}
}

func (r *Recorder) Record(ctx context.Context, ex lifecycle.Exchange) error {
	id, err := r.store.Add(ctx, FromExchange(ex))
	if err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"entry":     id,
		"operation": ex.Operation,
	}).Trace("exchange journaled")
	return nil
}
