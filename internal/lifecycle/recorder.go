package lifecycle

import (
	"context"
	"time"

	"github.com/artpar/feedsync/internal/apierr"
)

// Exchange describes one finished network exchange.
type Exchange struct {
	AttemptID string
	Operation string
	Method    string
	Route     string
	// Status is zero when no response was received.
	Status  int
	Err     *apierr.Error
	Started time.Time
	Elapsed time.Duration
}

// Recorder keeps a journal of exchanges.
type Recorder interface {
	Record(ctx context.Context, ex Exchange) error
}

// WithRecorder reports every exchange to r before listeners are notified.
// Input failures are not exchanges and are not reported.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}
