package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/feedsync/e2e/testserver"
	"github.com/artpar/feedsync/internal/config"
	"github.com/artpar/feedsync/internal/history"
	"github.com/artpar/feedsync/internal/news"
	"github.com/artpar/feedsync/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	server   *testserver.Server
	config   string
	database string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	server := testserver.New()
	t.Cleanup(server.Close)
	server.Seed(
		[]news.Folder{{ID: 1, Name: "Tech"}},
		[]news.Feed{{ID: 7, FolderID: 1, URL: "https://blog.example.com/feed", Title: "Blog"}},
		[]news.Item{
			{ID: 40, FeedID: 7, GUIDHash: "h40", Title: "Hello", Unread: true},
			{ID: 41, FeedID: 7, GUIDHash: "h41", Title: "World", Unread: true, Starred: true},
		},
	)

	dir := t.TempDir()
	e := &env{
		server:   server,
		config:   filepath.Join(dir, "feedsync.yaml"),
		database: filepath.Join(dir, "cache.db"),
	}
	require.NoError(t, config.Save(e.config, &config.Config{Account: *server.Account()}))
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", e.config, "--database", e.database}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *env) store(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(e.database)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSyncAndItems(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Full sync: 1 folder(s), 1 feed(s), 3 item(s)")

	out, err = e.run(t, "items", "--local")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "World")

	out, err = e.run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Incremental sync")

	out, err = e.run(t, "--json", "status")
	require.NoError(t, err)
	var status struct {
		Server news.ServerStatus `json:"server"`
		Local  news.Counts       `json:"local"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "25.0.0", status.Server.Version)
	assert.Equal(t, int64(2), status.Local.Items)
}

func TestMarkCommands(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "sync")
	require.NoError(t, err)

	out, err := e.run(t, "mark", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked 1 item(s) as read")
	remote, _ := e.server.Item(40)
	assert.False(t, remote.Unread)

	out, err = e.run(t, "mark", "--unread", "40", "41")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked 2 item(s) as unread")
	assert.Equal(t, "/index.php/apps/news/api/v1-2/items/unread/multiple", e.server.LastRequest().Path)

	_, err = e.run(t, "star", "--unstar", "7", "h41")
	require.NoError(t, err)
	remote, _ = e.server.Item(41)
	assert.False(t, remote.Starred)

	_, err = e.run(t, "star", "7")
	assert.Error(t, err)

	_, err = e.run(t, "mark-feed", "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"newestItemId":41}`, string(e.server.LastRequest().Body))

	_, err = e.run(t, "mark-all", "--newest", "41")
	require.NoError(t, err)

	item, err := e.store(t).Item(context.Background(), 41)
	require.NoError(t, err)
	assert.False(t, item.Unread)
}

func TestMark_InvalidID(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "mark", "--", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The article ID is not valid.")
	assert.Zero(t, e.server.RequestCount())

	_, err = e.run(t, "mark", "abc")
	assert.EqualError(t, err, `invalid ID "abc"`)
}

func TestMarkAll_RequiresKnownItems(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "mark-all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no items known locally")
}

func TestFolderAndFeedCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "--json", "folders", "create", "Music")
	require.NoError(t, err)
	var folder news.Folder
	require.NoError(t, json.Unmarshal([]byte(out), &folder))
	assert.Equal(t, "Music", folder.Name)

	_, err = e.run(t, "folders", "create", "Music")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The folder name already exists.")

	out, err = e.run(t, "folders")
	require.NoError(t, err)
	assert.Contains(t, out, "Music")
	assert.Contains(t, out, "Tech")

	out, err = e.run(t, "feeds", "create", "--folder", "1", "https://go.dev/blog/feed.atom")
	require.NoError(t, err)
	assert.Contains(t, out, "Created feed")

	_, err = e.run(t, "feeds", "rename", "7", "Engineering")
	require.NoError(t, err)
	_, err = e.run(t, "feeds", "move", "7")
	require.NoError(t, err)

	out, err = e.run(t, "--json", "feeds")
	require.NoError(t, err)
	var list news.FeedList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Feeds, 2)

	_, err = e.run(t, "feeds", "delete", "7")
	require.NoError(t, err)
	_, err = e.run(t, "folders", "delete", "1")
	require.NoError(t, err)
	assert.Len(t, e.server.Feeds(), 0)

	_, err = e.run(t, "folders", "rename", "99", "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The folder was not found on the server.")
}

func TestAccountInitAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := testserver.New()
	defer server.Close()
	path := filepath.Join(t.TempDir(), "nested", "feedsync.yaml")

	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--config", path, "account", "init",
		"--url", server.URL, "--user", testserver.Username, "--password", testserver.Password})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Connected to News 25.0.0")
	assert.Contains(t, out.String(), "Account saved to")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out.Reset()
	cmd = NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--config", path, "account", "show"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), server.URL+"/index.php/apps/news/api/v1-2")
	assert.Contains(t, out.String(), testserver.Username)
	assert.NotContains(t, out.String(), testserver.Password)
}

func TestAccountInit_BadCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := testserver.New()
	defer server.Close()
	path := filepath.Join(t.TempDir(), "feedsync.yaml")

	cmd := NewRootCommand("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "account", "init",
		"--url", server.URL, "--user", "someone", "--password", "nope"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to verify account")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNoAccount(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	cmd := NewRootCommand("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "--database", filepath.Join(dir, "db"), "folders"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoAccount)
	assert.Contains(t, err.Error(), "feedsync account init")
}

func TestVersion(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "feedsync test")

	out, err = e.run(t, "version", "--server")
	require.NoError(t, err)
	assert.Contains(t, out, "News app 25.0.0")
}

func TestMetricsFile(t *testing.T) {
	e := newEnv(t)
	metricsPath := filepath.Join(t.TempDir(), "feedsync.prom")

	_, err := e.run(t, "--metrics-file", metricsPath, "folders")
	require.NoError(t, err)

	content, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "feedsync_operations_total")
	assert.Contains(t, string(content), `operation="get_folders"`)
}

func TestInvalidLogLevel(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestHistory(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "folders")
	require.NoError(t, err)
	_, err = e.run(t, "mark", "99")
	require.Error(t, err)
	_, err = e.run(t, "mark", "--", "-5")
	require.Error(t, err)

	out, err := e.run(t, "--json", "history")
	require.NoError(t, err)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2, "input failures are not journaled")
	assert.Equal(t, "mark_item", entries[0].Operation)
	assert.Equal(t, "items/99/read", entries[0].Route)
	assert.Equal(t, 404, entries[0].Status)
	assert.Equal(t, "not_found", entries[0].ErrorCode)
	assert.Equal(t, "get_folders", entries[1].Operation)
	assert.False(t, entries[1].Failed())

	out, err = e.run(t, "history", "--failed")
	require.NoError(t, err)
	assert.Contains(t, out, "mark_item")
	assert.NotContains(t, out, "get_folders")

	out, err = e.run(t, "history", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Exchanges:  2 (1 failed)")

	_, err = e.run(t, "history", "prune")
	require.Error(t, err)

	out, err = e.run(t, "history", "prune", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 entries")

	out, err = e.run(t, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared")

	t.Run("disabled", func(t *testing.T) {
		t.Setenv("FEEDSYNC_HISTORY_DISABLED", "true")
		_, err := e.run(t, "folders")
		require.NoError(t, err)

		out, err := e.run(t, "--json", "history")
		require.NoError(t, err)
		assert.JSONEq(t, "[]", out)
	})
}
