package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any Store implementation.
func RunStoreTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("Add", func(t *testing.T) {
		runAddTests(t, newStore)
	})
	t.Run("List", func(t *testing.T) {
		runListTests(t, newStore)
	})
	t.Run("Prune", func(t *testing.T) {
		runPruneTests(t, newStore)
	})
	t.Run("Stats", func(t *testing.T) {
		runStatsTests(t, newStore)
	})
	t.Run("Closed", func(t *testing.T) {
		runClosedTests(t, newStore)
	})
}

func sampleEntry(op string, at time.Time, failed bool) Entry {
	e := Entry{
		Timestamp: at,
		Operation: op,
		Method:    "GET",
		Route:     "items",
		Status:    200,
		Outcome:   OutcomeSuccess,
		Duration:  100,
	}
	if failed {
		e.Status = 404
		e.Outcome = OutcomeFailure
		e.ErrorKind = "input"
		e.ErrorCode = "not_found"
		e.Message = "The article was not found on the server."
		e.Duration = 300
	}
	return e
}

func runAddTests(t *testing.T, newStore func() (Store, func())) {
	ctx := context.Background()

	t.Run("generates ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Add(ctx, sampleEntry("get_items", time.Now(), false))
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("keeps given ID and all fields", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := sampleEntry("mark_item", time.UnixMilli(1700000000123), true)
		entry.ID = "attempt-1"
		entry.Method = "PUT"
		entry.Route = "items/7/read"

		id, err := store.Add(ctx, entry)
		require.NoError(t, err)
		assert.Equal(t, "attempt-1", id)

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entry.Operation, got.Operation)
		assert.Equal(t, entry.Method, got.Method)
		assert.Equal(t, entry.Route, got.Route)
		assert.Equal(t, 404, got.Status)
		assert.True(t, got.Failed())
		assert.Equal(t, entry.ErrorCode, got.ErrorCode)
		assert.Equal(t, entry.Message, got.Message)
		assert.Equal(t, int64(300), got.Duration)
		assert.True(t, entry.Timestamp.Equal(got.Timestamp))
	})

	t.Run("get unknown and empty IDs", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Get(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func runListTests(t *testing.T, newStore func() (Store, func())) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	seed := func(t *testing.T, store Store) {
		t.Helper()
		for i, e := range []Entry{
			sampleEntry("get_folders", base, false),
			sampleEntry("get_feeds", base.Add(time.Minute), false),
			sampleEntry("mark_item", base.Add(2*time.Minute), true),
			sampleEntry("mark_item", base.Add(3*time.Minute), false),
		} {
			_, err := store.Add(ctx, e)
			require.NoError(t, err, "entry %d", i)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		seed(t, store)

		entries, err := store.List(ctx, QueryOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, "mark_item", entries[0].Operation)
		assert.Equal(t, "get_folders", entries[3].Operation)
	})

	t.Run("filters", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		seed(t, store)

		entries, err := store.List(ctx, QueryOptions{Operation: "mark_item"})
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		entries, err = store.List(ctx, QueryOptions{FailedOnly: true})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, OutcomeFailure, entries[0].Outcome)

		entries, err = store.List(ctx, QueryOptions{After: base.Add(90 * time.Second)})
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		entries, err = store.List(ctx, QueryOptions{Before: base.Add(30 * time.Second)})
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		count, err := store.Count(ctx, QueryOptions{Operation: "get_feeds"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("pagination", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		seed(t, store)

		entries, err := store.List(ctx, QueryOptions{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "mark_item", entries[0].Operation)
		assert.True(t, entries[0].Failed())
		assert.Equal(t, "get_feeds", entries[1].Operation)

		_, err = store.List(ctx, QueryOptions{Limit: -1})
		assert.ErrorIs(t, err, ErrInvalidOption)
	})
}

func runPruneTests(t *testing.T, newStore func() (Store, func())) {
	ctx := context.Background()

	t.Run("older than", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Add(ctx, sampleEntry("get_items", time.Now().Add(-48*time.Hour), false))
		require.NoError(t, err)
		_, err = store.Add(ctx, sampleEntry("get_items", time.Now(), false))
		require.NoError(t, err)

		result, err := store.Prune(ctx, PruneOptions{OlderThan: 24 * time.Hour})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.DeletedCount)

		count, err := store.Count(ctx, QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("keep last", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		base := time.Now().Add(-time.Hour)
		for i := range 5 {
			_, err := store.Add(ctx, sampleEntry("get_items", base.Add(time.Duration(i)*time.Minute), false))
			require.NoError(t, err)
		}

		result, err := store.Prune(ctx, PruneOptions{KeepLast: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.DeletedCount)

		entries, err := store.List(ctx, QueryOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[1].Timestamp.After(base.Add(2*time.Minute)))
	})

	t.Run("nothing to prune", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		result, err := store.Prune(ctx, PruneOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.DeletedCount)
	})
}

func runStatsTests(t *testing.T, newStore func() (Store, func())) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalEntries)
		assert.Zero(t, stats.SuccessRate)
		assert.True(t, stats.OldestEntry.IsZero())
	})

	t.Run("aggregates", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		now := time.Now()
		for _, e := range []Entry{
			sampleEntry("get_items", now.Add(-time.Minute), false),
			sampleEntry("get_items", now, false),
			sampleEntry("mark_item", now, true),
			sampleEntry("mark_item", now, false),
		} {
			_, err := store.Add(ctx, e)
			require.NoError(t, err)
		}

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.TotalEntries)
		assert.Equal(t, int64(1), stats.Failures)
		assert.InDelta(t, 0.75, stats.SuccessRate, 0.001)
		assert.InDelta(t, 150.0, stats.AverageTime, 0.001)
		assert.Equal(t, map[string]int64{"get_items": 2, "mark_item": 2}, stats.OperationCounts)
		assert.False(t, stats.NewestEntry.Before(stats.OldestEntry))

		require.NoError(t, store.Clear(ctx))
		count, err := store.Count(ctx, QueryOptions{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func runClosedTests(t *testing.T, newStore func() (Store, func())) {
	ctx := context.Background()
	store, cleanup := newStore()
	defer cleanup()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.Add(ctx, sampleEntry("get_items", time.Now(), false))
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.List(ctx, QueryOptions{})
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.Stats(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)
}
