package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromExchange(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		e := FromExchange(lifecycle.Exchange{
			AttemptID: "a1",
			Operation: "get_feeds",
			Method:    "GET",
			Route:     "feeds",
			Status:    200,
			Started:   started,
			Elapsed:   1500 * time.Millisecond,
		})
		assert.Equal(t, "a1", e.ID)
		assert.Equal(t, started, e.Timestamp)
		assert.Equal(t, OutcomeSuccess, e.Outcome)
		assert.False(t, e.Failed())
		assert.Equal(t, int64(1500), e.Duration)
		assert.Empty(t, e.ErrorCode)
	})

	t.Run("failure", func(t *testing.T) {
		e := FromExchange(lifecycle.Exchange{
			AttemptID: "a2",
			Operation: "star_item",
			Method:    "PUT",
			Route:     "items/7/abc/star",
			Status:    404,
			Err:       apierr.NotFound("The article was not found on the server."),
			Started:   started,
		})
		assert.True(t, e.Failed())
		assert.Equal(t, "input", e.ErrorKind)
		assert.Equal(t, apierr.CodeNotFound, e.ErrorCode)
		assert.Equal(t, "The article was not found on the server.", e.Message)
	})
}

type addOnlyStore struct {
	Store
	added []Entry
	err   error
}

func (s *addOnlyStore) Add(_ context.Context, e Entry) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.added = append(s.added, e)
	return e.ID, nil
}

func TestRecorder(t *testing.T) {
	store := &addOnlyStore{}
	rec := NewRecorder(store, nil)

	err := rec.Record(context.Background(), lifecycle.Exchange{AttemptID: "a3", Operation: "get_version"})
	require.NoError(t, err)
	require.Len(t, store.added, 1)
	assert.Equal(t, "a3", store.added[0].ID)

	store.err = errors.New("disk full")
	assert.EqualError(t, rec.Record(context.Background(), lifecycle.Exchange{}), "disk full")
}
