package lifecycle

import (
	"context"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/google/uuid"
)

// Attempt is one started execution. It completes exactly once.
type Attempt[T any] struct {
	id     string
	done   chan struct{}
	result T
	err    *apierr.Error
}

func newAttempt[T any]() *Attempt[T] {
	return &Attempt[T]{
		id:   uuid.New().String(),
		done: make(chan struct{}),
	}
}

func (a *Attempt[T]) ID() string {
	return a.id
}

// Done is closed once the outcome has been delivered.
func (a *Attempt[T]) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt completes or ctx is done. The returned
// error is an *apierr.Error for failed attempts.
func (a *Attempt[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-a.done:
		if a.err != nil {
			return a.result, a.err
		}
		return a.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Outcome returns the result and error. It must only be called after Done
// is closed.
func (a *Attempt[T]) Outcome() (T, *apierr.Error) {
	return a.result, a.err
}

func (a *Attempt[T]) resolve(result T, err *apierr.Error) {
	a.result = result
	a.err = err
	close(a.done)
}
