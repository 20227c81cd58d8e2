package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/artpar/feedsync/e2e/testserver"
	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/news"
	"github.com/artpar/feedsync/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seedFolders = []news.Folder{{ID: 1, Name: "Tech"}, {ID: 2, Name: "News"}}
	seedFeeds   = []news.Feed{
		{ID: 7, FolderID: 1, URL: "https://blog.example.com/feed", Title: "Blog"},
		{ID: 8, FolderID: 2, URL: "https://news.example.com/rss", Title: "Daily"},
	}
	seedItems = []news.Item{
		{ID: 40, FeedID: 7, GUIDHash: "h40", Title: "First", Unread: true},
		{ID: 41, FeedID: 7, GUIDHash: "h41", Title: "Second", Unread: true, Starred: true},
		{ID: 42, FeedID: 8, GUIDHash: "h42", Title: "Third", Unread: true},
	}
)

type fixture struct {
	server *testserver.Server
	store  *sqlite.Store
	client *Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := testserver.New()
	t.Cleanup(server.Close)
	server.Seed(seedFolders, seedFeeds, seedItems)

	store, err := sqlite.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.FoldersRequested(ctx, seedFolders))
	require.NoError(t, store.FeedsRequested(ctx, news.FeedList{Feeds: seedFeeds, NewestItemID: 42}))
	require.NoError(t, store.ItemsRequested(ctx, seedItems))

	return &fixture{
		server: server,
		store:  store,
		client: NewClient(server.Account(), WithStore(store)),
	}
}

func run[T any](t *testing.T, c *lifecycle.Component[T]) (T, *apierr.Error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempt, err := c.Execute(ctx)
	require.NoError(t, err)
	_, err = attempt.Wait(ctx)
	if err != nil {
		var aerr *apierr.Error
		require.ErrorAs(t, err, &aerr)
	}
	return attempt.Outcome()
}

func storedItem(t *testing.T, f *fixture, id int64) news.Item {
	t.Helper()
	it, err := f.store.Item(context.Background(), id)
	require.NoError(t, err)
	return it
}

func TestMarkItem(t *testing.T) {
	f := newFixture(t)
	op := f.client.MarkItem(42, false)

	var succeeded []MarkItemResult
	op.OnSucceeded(func(r MarkItemResult) { succeeded = append(succeeded, r) })

	result, aerr := run(t, op.Component)
	require.Nil(t, aerr)
	assert.Equal(t, MarkItemResult{ItemID: 42, Unread: false}, result)
	assert.Equal(t, []MarkItemResult{{ItemID: 42}}, succeeded)
	assert.False(t, op.InProgress())

	req := f.server.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/42/read", req.Path)
	assert.JSONEq(t, `{}`, string(req.Body))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Empty(t, req.Headers.Get("Accept"))
	creds := base64.StdEncoding.EncodeToString([]byte(testserver.Username + ":" + testserver.Password))
	assert.Equal(t, "Basic "+creds, req.Headers.Get("Authorization"))

	remote, ok := f.server.Item(42)
	require.True(t, ok)
	assert.False(t, remote.Unread)
	assert.False(t, storedItem(t, f, 42).Unread)
}

func TestMarkItem_Unread(t *testing.T) {
	f := newFixture(t)
	_, aerr := run(t, f.client.MarkItem(40, false).Component)
	require.Nil(t, aerr)

	op := f.client.MarkItem(40, true)
	_, aerr = run(t, op.Component)
	require.Nil(t, aerr)
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/40/unread", f.server.LastRequest().Path)
	assert.True(t, storedItem(t, f, 40).Unread)
}

func TestMarkItem_InvalidID(t *testing.T) {
	f := newFixture(t)
	op := f.client.MarkItem(-1, false)

	var failed []*apierr.Error
	op.OnFailed(func(e *apierr.Error) { failed = append(failed, e) })

	_, aerr := run(t, op.Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.KindInput, aerr.Kind())
	assert.Equal(t, apierr.CodeInvalidID, aerr.Code())
	assert.Equal(t, "The article ID is not valid.", aerr.Message())
	assert.Len(t, failed, 1)
	assert.Same(t, aerr, op.Err())
	assert.Zero(t, f.server.RequestCount())
	assert.Equal(t, lifecycle.StateIdle, op.State())
}

func TestStarItem(t *testing.T) {
	f := newFixture(t)

	_, aerr := run(t, f.client.StarItem(7, "h40", true).Component)
	require.Nil(t, aerr)
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/7/h40/star", f.server.LastRequest().Path)
	assert.True(t, storedItem(t, f, 40).Starred)

	_, aerr = run(t, f.client.StarItem(7, "h41", false).Component)
	require.Nil(t, aerr)
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/7/h41/unstar", f.server.LastRequest().Path)
	assert.False(t, storedItem(t, f, 41).Starred)
}

func TestStarItem_NotFound(t *testing.T) {
	f := newFixture(t)
	op := f.client.StarItem(7, "abc", true)

	_, aerr := run(t, op.Component)
	require.NotNil(t, aerr)
	assert.True(t, aerr.IsNotFound())
	assert.Equal(t, 404, aerr.Status())
	assert.Equal(t, "The article was not found on the server.", aerr.Message())
	assert.ErrorIs(t, op.Err(), apierr.ErrNotFound)
	assert.Equal(t, 1, f.server.RequestCount())
}

func TestStarItem_EmptyGUIDHash(t *testing.T) {
	f := newFixture(t)
	op := f.client.StarItem(7, "", true)

	var states []bool
	op.OnFailed(func(*apierr.Error) { states = append(states, op.InProgress()) })

	_, aerr := run(t, op.Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.CodeEmptyValue, aerr.Code())
	assert.Equal(t, "The GUID hash can not be empty.", aerr.Message())
	assert.Equal(t, []bool{false}, states)
	assert.Zero(t, f.server.RequestCount())
}

func TestMarkMultipleItems(t *testing.T) {
	f := newFixture(t)

	t.Run("marks all listed items", func(t *testing.T) {
		result, aerr := run(t, f.client.MarkMultipleItems([]int64{40, 42}, false).Component)
		require.Nil(t, aerr)
		assert.Equal(t, []int64{40, 42}, result.ItemIDs)

		req := f.server.LastRequest()
		assert.Equal(t, "/index.php/apps/news/api/v1-2/items/read/multiple", req.Path)
		assert.JSONEq(t, `{"items":[40,42]}`, string(req.Body))
		assert.False(t, storedItem(t, f, 40).Unread)
		assert.False(t, storedItem(t, f, 42).Unread)
		assert.True(t, storedItem(t, f, 41).Unread)
	})

	t.Run("empty list", func(t *testing.T) {
		f.server.ClearRequests()
		_, aerr := run(t, f.client.MarkMultipleItems(nil, true).Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeEmptyValue, aerr.Code())
		assert.Zero(t, f.server.RequestCount())
	})

	t.Run("invalid id in list", func(t *testing.T) {
		_, aerr := run(t, f.client.MarkMultipleItems([]int64{40, 0}, true).Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeInvalidID, aerr.Code())
	})
}

func TestStarMultipleItems(t *testing.T) {
	f := newFixture(t)
	refs := []news.StarRef{{FeedID: 7, GUIDHash: "h40"}, {FeedID: 8, GUIDHash: "h42"}}

	_, aerr := run(t, f.client.StarMultipleItems(refs, true).Component)
	require.Nil(t, aerr)

	req := f.server.LastRequest()
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/star/multiple", req.Path)
	assert.JSONEq(t, `{"items":[{"feedId":7,"guidHash":"h40"},{"feedId":8,"guidHash":"h42"}]}`, string(req.Body))
	assert.True(t, storedItem(t, f, 40).Starred)
	assert.True(t, storedItem(t, f, 42).Starred)

	_, aerr = run(t, f.client.StarMultipleItems([]news.StarRef{{FeedID: 7}}, false).Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.CodeEmptyValue, aerr.Code())
}

func TestMarkAllItemsRead(t *testing.T) {
	f := newFixture(t)

	newest, aerr := run(t, f.client.MarkAllItemsRead(41).Component)
	require.Nil(t, aerr)
	assert.Equal(t, int64(41), newest)
	assert.JSONEq(t, `{"newestItemId":41}`, string(f.server.LastRequest().Body))

	assert.False(t, storedItem(t, f, 40).Unread)
	assert.False(t, storedItem(t, f, 41).Unread)
	assert.True(t, storedItem(t, f, 42).Unread)

	_, aerr = run(t, f.client.MarkAllItemsRead(0).Component)
	require.NotNil(t, aerr)
	assert.Equal(t, "The newest item ID is not valid.", aerr.Message())
}

func TestGetItems(t *testing.T) {
	f := newFixture(t)
	q := ItemsQuery{BatchSize: 2, Type: news.ItemTypeFeed, ID: 7, GetRead: false}

	items, aerr := run(t, f.client.GetItems(q).Component)
	require.Nil(t, aerr)
	require.Len(t, items, 2)
	assert.Equal(t, int64(41), items[0].ID)

	req := f.server.LastRequest()
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items", req.Path)
	assert.Equal(t, "2", req.Query.Get("batchSize"))
	assert.Equal(t, "0", req.Query.Get("offset"))
	assert.Equal(t, "0", req.Query.Get("type"))
	assert.Equal(t, "7", req.Query.Get("id"))
	assert.Equal(t, "false", req.Query.Get("getRead"))
	assert.Equal(t, "false", req.Query.Get("oldestFirst"))
	assert.Equal(t, "application/json", req.Headers.Get("Accept"))

	t.Run("invalid queries", func(t *testing.T) {
		tests := []struct {
			name string
			q    ItemsQuery
			code string
		}{
			{"zero batch", ItemsQuery{Type: news.ItemTypeAll}, apierr.CodeInvalidValue},
			{"negative offset", ItemsQuery{BatchSize: -1, Offset: -5, Type: news.ItemTypeAll}, apierr.CodeInvalidValue},
			{"feed without id", ItemsQuery{BatchSize: -1, Type: news.ItemTypeFeed}, apierr.CodeInvalidID},
			{"folder without id", ItemsQuery{BatchSize: -1, Type: news.ItemTypeFolder}, apierr.CodeInvalidID},
			{"unknown type", ItemsQuery{BatchSize: -1, Type: 9}, apierr.CodeInvalidValue},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, aerr := run(t, f.client.GetItems(tt.q).Component)
				require.NotNil(t, aerr)
				assert.Equal(t, tt.code, aerr.Code())
			})
		}
	})
}

func TestGetUpdatedItems(t *testing.T) {
	f := newFixture(t)
	since := time.Now().Add(-time.Minute).Unix()
	f.server.AddItems(news.Item{ID: 43, FeedID: 8, GUIDHash: "h43", Title: "Fresh", Unread: true})

	items, aerr := run(t, f.client.GetUpdatedItems(UpdatedItemsQuery{LastModified: since, Type: news.ItemTypeAll}).Component)
	require.Nil(t, aerr)
	assert.NotEmpty(t, items)

	req := f.server.LastRequest()
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/updated", req.Path)
	assert.Equal(t, "3", req.Query.Get("type"))

	stored := storedItem(t, f, 43)
	assert.Equal(t, "Fresh", stored.Title)

	_, aerr = run(t, f.client.GetUpdatedItems(UpdatedItemsQuery{Type: news.ItemTypeAll}).Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.CodeInvalidValue, aerr.Code())
}

func TestGetFolders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.server.Seed([]news.Folder{{ID: 1, Name: "Tech"}, {ID: 3, Name: "Sports"}}, seedFeeds, seedItems)

	folders, aerr := run(t, f.client.GetFolders().Component)
	require.Nil(t, aerr)
	assert.Len(t, folders, 2)

	stored, err := f.store.Folders(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []news.Folder{{ID: 1, Name: "Tech"}, {ID: 3, Name: "Sports"}}, stored)
}

func TestCreateFolder(t *testing.T) {
	f := newFixture(t)

	folder, aerr := run(t, f.client.CreateFolder("Music").Component)
	require.Nil(t, aerr)
	assert.Equal(t, "Music", folder.Name)
	assert.Positive(t, folder.ID)

	stored, err := f.store.Folders(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stored, folder)

	t.Run("conflict", func(t *testing.T) {
		op := f.client.CreateFolder("Tech")
		_, aerr := run(t, op.Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.KindInput, aerr.Kind())
		assert.Equal(t, apierr.CodeAlreadyExists, aerr.Code())
		assert.Equal(t, 409, aerr.Status())
		assert.Equal(t, "The folder name already exists.", aerr.Message())
	})

	t.Run("empty name", func(t *testing.T) {
		f.server.ClearRequests()
		_, aerr := run(t, f.client.CreateFolder("").Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeEmptyValue, aerr.Code())
		assert.Zero(t, f.server.RequestCount())
	})

	t.Run("empty folder list in reply", func(t *testing.T) {
		f.server.Override(http.MethodPost, "folders", testserver.Handlers{}.JSON(200, map[string]any{"folders": []any{}}))
		_, aerr := run(t, f.client.CreateFolder("Other").Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.KindOutput, aerr.Kind())
	})
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t)

	op := f.client.RenameFolder(1, "Technology")
	result, aerr := run(t, op.Component)
	require.Nil(t, aerr)
	assert.Equal(t, RenameFolderResult{FolderID: 1, Name: "Technology"}, result)
	assert.JSONEq(t, `{"name":"Technology"}`, string(f.server.LastRequest().Body))

	stored, err := f.store.Folders(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stored, news.Folder{ID: 1, Name: "Technology"})

	tests := []struct {
		name   string
		id     int64
		folder string
		code   string
	}{
		{"missing", 99, "X", apierr.CodeNotFound},
		{"taken", 1, "News", apierr.CodeAlreadyExists},
		{"invalid id", 0, "X", apierr.CodeInvalidID},
		{"empty name", 1, "", apierr.CodeEmptyValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, aerr := run(t, f.client.RenameFolder(tt.id, tt.folder).Component)
			require.NotNil(t, aerr)
			assert.Equal(t, tt.code, aerr.Code())
		})
	}
}

func TestDeleteFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, aerr := run(t, f.client.DeleteFolder(2).Component)
	require.Nil(t, aerr)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, http.MethodDelete, f.server.LastRequest().Method)

	feeds, err := f.store.Feeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, int64(7), feeds[0].ID)

	_, err = f.store.Item(ctx, 42)
	assert.Error(t, err)

	_, aerr = run(t, f.client.DeleteFolder(2).Component)
	require.NotNil(t, aerr)
	assert.Equal(t, "The folder was not found on the server.", aerr.Message())
}

func TestMarkFolderRead(t *testing.T) {
	f := newFixture(t)

	result, aerr := run(t, f.client.MarkFolderRead(1, 42).Component)
	require.Nil(t, aerr)
	assert.Equal(t, MarkReadResult{ID: 1, NewestItemID: 42}, result)
	assert.Equal(t, "/index.php/apps/news/api/v1-2/folders/1/read", f.server.LastRequest().Path)

	assert.False(t, storedItem(t, f, 40).Unread)
	assert.False(t, storedItem(t, f, 41).Unread)
	assert.True(t, storedItem(t, f, 42).Unread)
}

func TestGetFeeds(t *testing.T) {
	f := newFixture(t)

	list, aerr := run(t, f.client.GetFeeds().Component)
	require.Nil(t, aerr)
	require.Len(t, list.Feeds, 2)
	assert.Equal(t, int64(1), list.StarredCount)
	assert.Equal(t, int64(42), list.NewestItemID)

	counts, err := f.store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Feeds)
}

func TestCreateFeed(t *testing.T) {
	f := newFixture(t)

	feed, aerr := run(t, f.client.CreateFeed("https://go.dev/blog/feed.atom", 1).Component)
	require.Nil(t, aerr)
	assert.Equal(t, "https://go.dev/blog/feed.atom", feed.URL)
	assert.Equal(t, int64(1), feed.FolderID)
	assert.JSONEq(t, `{"url":"https://go.dev/blog/feed.atom","folderId":1}`, string(f.server.LastRequest().Body))

	feeds, err := f.store.Feeds(context.Background())
	require.NoError(t, err)
	assert.Len(t, feeds, 3)

	t.Run("conflict", func(t *testing.T) {
		_, aerr := run(t, f.client.CreateFeed("https://blog.example.com/feed", 0).Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeAlreadyExists, aerr.Code())
		assert.Equal(t, "The feed already exists.", aerr.Message())
	})

	t.Run("unknown folder", func(t *testing.T) {
		_, aerr := run(t, f.client.CreateFeed("https://example.org/rss", 99).Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeInvalidValue, aerr.Code())
		assert.Equal(t, 422, aerr.Status())
	})

	t.Run("invalid input", func(t *testing.T) {
		f.server.ClearRequests()
		for _, raw := range []string{"", "not a url", "ftp://example.org/feed", "/relative"} {
			_, aerr := run(t, f.client.CreateFeed(raw, 0).Component)
			require.NotNil(t, aerr, raw)
			assert.Equal(t, "The feed URL is not valid.", aerr.Message())
		}
		_, aerr := run(t, f.client.CreateFeed("https://example.org/rss", -1).Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeInvalidID, aerr.Code())
		assert.Zero(t, f.server.RequestCount())
	})
}

func TestRenameMoveDeleteFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, aerr := run(t, f.client.RenameFeed(7, "Engineering").Component)
	require.Nil(t, aerr)
	assert.JSONEq(t, `{"feedTitle":"Engineering"}`, string(f.server.LastRequest().Body))

	_, aerr = run(t, f.client.MoveFeed(7, 0).Component)
	require.Nil(t, aerr)
	assert.Equal(t, "/index.php/apps/news/api/v1-2/feeds/7/move", f.server.LastRequest().Path)

	feeds, err := f.store.Feeds(ctx)
	require.NoError(t, err)
	var blog news.Feed
	for _, feed := range feeds {
		if feed.ID == 7 {
			blog = feed
		}
	}
	assert.Equal(t, "Engineering", blog.Title)
	assert.Equal(t, int64(0), blog.FolderID)

	_, aerr = run(t, f.client.DeleteFeed(8).Component)
	require.Nil(t, aerr)
	_, err = f.store.Item(ctx, 42)
	assert.Error(t, err)

	_, aerr = run(t, f.client.RenameFeed(8, "Gone").Component)
	require.NotNil(t, aerr)
	assert.Equal(t, "The feed was not found on the server.", aerr.Message())

	_, aerr = run(t, f.client.RenameFeed(7, "").Component)
	require.NotNil(t, aerr)
	assert.Equal(t, "The feed title can not be empty.", aerr.Message())
}

func TestMarkFeedRead(t *testing.T) {
	f := newFixture(t)

	_, aerr := run(t, f.client.MarkFeedRead(7, 40).Component)
	require.Nil(t, aerr)
	assert.False(t, storedItem(t, f, 40).Unread)
	assert.True(t, storedItem(t, f, 41).Unread)

	_, aerr = run(t, f.client.MarkFeedRead(7, 0).Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.CodeInvalidID, aerr.Code())
}

func TestStatusAndVersion(t *testing.T) {
	server := testserver.New(
		testserver.WithVersion("18.1.0"),
		testserver.WithWarnings(news.Warnings{ImproperlyConfiguredCron: true}),
	)
	defer server.Close()
	client := NewClient(server.Account())

	version, aerr := run(t, client.GetVersion().Component)
	require.Nil(t, aerr)
	assert.Equal(t, "18.1.0", version)

	status, aerr := run(t, client.GetStatus().Component)
	require.Nil(t, aerr)
	assert.Equal(t, "18.1.0", status.Version)
	assert.True(t, status.Warnings.ImproperlyConfiguredCron)
	assert.False(t, status.Warnings.IncorrectDBCharset)

	t.Run("missing warnings", func(t *testing.T) {
		server.Override(http.MethodGet, "status", testserver.Handlers{}.JSON(200, map[string]string{"version": "1"}))
		_, aerr := run(t, client.GetStatus().Component)
		require.NotNil(t, aerr)
		assert.Equal(t, apierr.CodeMissingMember, aerr.Code())
	})
}

func TestUnauthorized(t *testing.T) {
	server := testserver.New(testserver.WithCredentials("reader", "other"))
	defer server.Close()

	account := server.Account()
	account.Password = "wrong"
	_, aerr := run(t, NewClient(account).GetFolders().Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.KindServer, aerr.Kind())
	assert.ErrorIs(t, aerr, apierr.ErrUnauthorized)
}

func TestUnexpectedShape(t *testing.T) {
	f := newFixture(t)
	f.server.Override(http.MethodGet, "folders", testserver.Handlers{}.JSON(200, []int{1, 2}))

	_, aerr := run(t, f.client.GetFolders().Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.KindOutput, aerr.Kind())
	assert.Equal(t, apierr.CodeUnexpectedShape, aerr.Code())

	stored, err := f.store.Folders(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSettersWhileInProgress(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.server.Override(http.MethodPut, "items/42/read", testserver.Handlers{}.Blocking(release, http.StatusOK))

	op := f.client.MarkItem(42, false)
	var changed []string
	op.OnFieldChanged(func(field string) { changed = append(changed, field) })

	ctx := context.Background()
	attempt, err := op.Execute(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.server.RequestCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.True(t, op.InProgress())
	assert.False(t, op.SetItemID(40))
	assert.Equal(t, int64(42), op.ItemID())

	_, err = op.Execute(ctx)
	assert.True(t, errors.Is(err, lifecycle.ErrInProgress))

	close(release)
	_, err = attempt.Wait(ctx)
	require.NoError(t, err)
	assert.False(t, op.InProgress())

	assert.True(t, op.SetItemID(40))
	assert.False(t, op.SetItemID(40))
	assert.True(t, op.SetUnread(true))
	assert.Equal(t, []string{"itemId", "unread"}, changed)
}

func TestClientWithoutStore(t *testing.T) {
	server := testserver.New()
	defer server.Close()
	server.Seed(seedFolders, seedFeeds, seedItems)

	client := NewClient(server.Account())
	assert.Nil(t, client.Store())

	_, aerr := run(t, client.MarkItem(42, false).Component)
	require.Nil(t, aerr)
}

func TestMissingConfiguration(t *testing.T) {
	client := NewClient(nil)
	_, aerr := run(t, client.GetFolders().Component)
	require.NotNil(t, aerr)
	assert.Equal(t, apierr.SeverityFatal, aerr.Severity())
	assert.Equal(t, apierr.CodeNoConfiguration, aerr.Code())
}
