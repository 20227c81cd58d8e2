package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/feedsync/internal/news"
	"github.com/artpar/feedsync/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seed creates two folders, three feeds and five items:
// feed 10 (folder 1): items 100 (unread), 101 (unread, starred)
// feed 11 (folder 2): items 110 (unread), 111 (read)
// feed 12 (root):     item 120 (unread)
func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.FoldersRequested(ctx, []news.Folder{{ID: 1, Name: "Tech"}, {ID: 2, Name: "News"}}))
	require.NoError(t, s.FeedsRequested(ctx, news.FeedList{
		Feeds: []news.Feed{
			{ID: 10, FolderID: 1, Title: "Go Blog", UnreadCount: 2},
			{ID: 11, FolderID: 2, Title: "World", UnreadCount: 1},
			{ID: 12, FolderID: 0, Title: "Misc", UnreadCount: 1},
		},
		StarredCount: 1,
		NewestItemID: 120,
	}))
	require.NoError(t, s.ItemsRequested(ctx, []news.Item{
		{ID: 100, FeedID: 10, GUIDHash: "h100", Title: "a", PubDate: 1000, Unread: true},
		{ID: 101, FeedID: 10, GUIDHash: "h101", Title: "b", PubDate: 1001, Unread: true, Starred: true},
		{ID: 110, FeedID: 11, GUIDHash: "h110", Title: "c", PubDate: 1002, Unread: true},
		{ID: 111, FeedID: 11, GUIDHash: "h111", Title: "d", PubDate: 1003, Unread: false},
		{ID: 120, FeedID: 12, GUIDHash: "h120", Title: "e", PubDate: 1004, Unread: true},
	}))
}

func feedUnread(t *testing.T, s *Store, feedID int64) int64 {
	t.Helper()
	feeds, err := s.Feeds(context.Background())
	require.NoError(t, err)
	for _, f := range feeds {
		if f.ID == feedID {
			return f.UnreadCount
		}
	}
	t.Fatalf("feed %d not found", feedID)
	return 0
}

func TestStore_ItemMarked(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	require.NoError(t, s.ItemMarked(ctx, 100, false))
	item, err := s.Item(ctx, 100)
	require.NoError(t, err)
	assert.False(t, item.Unread)
	assert.Equal(t, int64(1), feedUnread(t, s, 10))

	t.Run("marking again does not change counters", func(t *testing.T) {
		require.NoError(t, s.ItemMarked(ctx, 100, false))
		assert.Equal(t, int64(1), feedUnread(t, s, 10))
	})

	t.Run("mark unread", func(t *testing.T) {
		require.NoError(t, s.ItemMarked(ctx, 111, true))
		item, err := s.Item(ctx, 111)
		require.NoError(t, err)
		assert.True(t, item.Unread)
		assert.Equal(t, int64(2), feedUnread(t, s, 11))
	})

	t.Run("unknown item is ignored", func(t *testing.T) {
		assert.NoError(t, s.ItemMarked(ctx, 999, false))
	})
}

func TestStore_ItemsMarked(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	require.NoError(t, s.ItemsMarked(ctx, []int64{100, 101, 110}, false))

	unread, err := s.Items(ctx, storage.ItemQuery{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, int64(120), unread[0].ID)
	assert.Equal(t, int64(0), feedUnread(t, s, 10))
	assert.Equal(t, int64(0), feedUnread(t, s, 11))

	assert.NoError(t, s.ItemsMarked(ctx, nil, true))
}

func TestStore_ItemsStarred(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	require.NoError(t, s.ItemStarred(ctx, 10, "h100", true))
	require.NoError(t, s.ItemsStarred(ctx, []news.StarRef{{FeedID: 10, GUIDHash: "h101"}, {FeedID: 11, GUIDHash: "h110"}}, false))
	require.NoError(t, s.ItemsStarred(ctx, []news.StarRef{{FeedID: 12, GUIDHash: "h120"}}, true))

	starred, err := s.Items(ctx, storage.ItemQuery{StarredOnly: true, OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, starred, 2)
	assert.Equal(t, int64(100), starred[0].ID)
	assert.Equal(t, int64(120), starred[1].ID)

	t.Run("guid hash must match the feed", func(t *testing.T) {
		require.NoError(t, s.ItemStarred(ctx, 11, "h100", false))
		item, err := s.Item(ctx, 100)
		require.NoError(t, err)
		assert.True(t, item.Starred)
	})
}

func TestStore_MarkedRead(t *testing.T) {
	ctx := context.Background()

	t.Run("feed", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)
		require.NoError(t, s.FeedMarkedRead(ctx, 10, 100))

		a, _ := s.Item(ctx, 100)
		b, _ := s.Item(ctx, 101)
		assert.False(t, a.Unread)
		assert.True(t, b.Unread, "newer than newestItemId")
		assert.Equal(t, int64(1), feedUnread(t, s, 10))
		assert.Equal(t, int64(1), feedUnread(t, s, 11))
	})

	t.Run("folder", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)
		require.NoError(t, s.FolderMarkedRead(ctx, 2, 200))

		c, _ := s.Item(ctx, 110)
		assert.False(t, c.Unread)
		assert.Equal(t, int64(0), feedUnread(t, s, 11))
		assert.Equal(t, int64(2), feedUnread(t, s, 10))
	})

	t.Run("all", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)
		require.NoError(t, s.AllItemsMarkedRead(ctx, 120))

		unread, err := s.Items(ctx, storage.ItemQuery{UnreadOnly: true})
		require.NoError(t, err)
		assert.Empty(t, unread)

		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counts.Unread)
	})
}

func TestStore_Folders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	require.NoError(t, s.FolderCreated(ctx, news.Folder{ID: 3, Name: "art"}))
	require.NoError(t, s.FolderRenamed(ctx, 2, "World News"))

	folders, err := s.Folders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []news.Folder{{ID: 3, Name: "art"}, {ID: 1, Name: "Tech"}, {ID: 2, Name: "World News"}}, folders)

	t.Run("requested list replaces folders and orphans move to root", func(t *testing.T) {
		require.NoError(t, s.FoldersRequested(ctx, []news.Folder{{ID: 2, Name: "World"}}))

		folders, err := s.Folders(ctx)
		require.NoError(t, err)
		assert.Equal(t, []news.Folder{{ID: 2, Name: "World"}}, folders)

		feeds, err := s.Feeds(ctx)
		require.NoError(t, err)
		for _, f := range feeds {
			if f.ID == 10 {
				assert.Equal(t, int64(0), f.FolderID)
			}
		}
	})

	t.Run("delete removes feeds and items", func(t *testing.T) {
		require.NoError(t, s.FolderDeleted(ctx, 2))
		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counts.Folders)
		assert.Equal(t, int64(2), counts.Feeds)
		assert.Equal(t, int64(3), counts.Items)
	})

	t.Run("empty list clears folders", func(t *testing.T) {
		require.NoError(t, s.FolderCreated(ctx, news.Folder{ID: 5, Name: "x"}))
		require.NoError(t, s.FoldersRequested(ctx, nil))
		folders, err := s.Folders(ctx)
		require.NoError(t, err)
		assert.Empty(t, folders)
	})
}

func TestStore_Feeds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	require.NoError(t, s.FeedCreated(ctx, news.Feed{ID: 13, FolderID: 1, Title: "Added", URL: "https://example.com/feed"}))
	require.NoError(t, s.FeedRenamed(ctx, 13, "Renamed"))
	require.NoError(t, s.FeedMoved(ctx, 13, 2))

	feeds, err := s.Feeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 4)

	var added news.Feed
	for _, f := range feeds {
		if f.ID == 13 {
			added = f
		}
	}
	assert.Equal(t, "Renamed", added.Title)
	assert.Equal(t, int64(2), added.FolderID)
	assert.Equal(t, "https://example.com/feed", added.URL)

	require.NoError(t, s.FeedDeleted(ctx, 10))
	_, err = s.Item(ctx, 100)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	t.Run("requested list replaces feeds and drops their items", func(t *testing.T) {
		require.NoError(t, s.FeedsRequested(ctx, news.FeedList{Feeds: []news.Feed{{ID: 12, Title: "Misc"}}}))
		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts.Feeds)
		assert.Equal(t, int64(1), counts.Items)
	})
}

func TestStore_ItemsQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)

	items, err := s.Items(ctx, storage.ItemQuery{})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, int64(120), items[0].ID, "newest first")

	items, err = s.Items(ctx, storage.ItemQuery{FeedID: 11})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = s.Items(ctx, storage.ItemQuery{FolderID: 1, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = s.Items(ctx, storage.ItemQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(111), items[0].ID)

	t.Run("update keeps one row", func(t *testing.T) {
		require.NoError(t, s.ItemsRequested(ctx, []news.Item{{ID: 120, FeedID: 12, GUIDHash: "h120", Title: "updated", PubDate: 1004}}))
		item, err := s.Item(ctx, 120)
		require.NoError(t, err)
		assert.Equal(t, "updated", item.Title)
		assert.False(t, item.Unread)

		counts, err := s.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), counts.Items)
	})
}

func TestStore_SyncState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	last, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	newest, err := s.NewestItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), newest)

	seed(t, s)
	now := time.Unix(1700000000, 0)
	require.NoError(t, s.SetLastSync(ctx, now))

	last, err = s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(last))

	require.NoError(t, s.SetLastSync(ctx, time.Time{}))
	last, err = s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
	require.NoError(t, s.SetLastSync(ctx, now))

	newest, err = s.NewestItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120), newest)

	require.NoError(t, s.FeedsRequested(ctx, news.FeedList{Feeds: []news.Feed{{ID: 12}}, NewestItemID: 500}))
	newest, err = s.NewestItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), newest)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Feeds)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "double close")

	assert.ErrorIs(t, s.ItemMarked(ctx, 1, false), storage.ErrStoreClosed)
	assert.ErrorIs(t, s.SetLastSync(ctx, time.Now()), storage.ErrStoreClosed)

	_, err = s.Folders(ctx)
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
	_, err = s.Items(ctx, storage.ItemQuery{})
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
	_, err = s.Counts(ctx)
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
	_, err = s.LastSync(ctx)
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.FolderCreated(context.Background(), news.Folder{ID: 1, Name: "a"}))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	folders, err := s.Folders(context.Background())
	require.NoError(t, err)
	assert.Len(t, folders, 1)
}
