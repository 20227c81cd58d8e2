package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/core"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/news"
)

const (
	msgInvalidFeedID    = "The feed ID is not valid."
	msgInvalidFolderID  = "The folder ID is not valid."
	msgInvalidNewestID  = "The newest item ID is not valid."
	msgInvalidFeedURL   = "The feed URL is not valid."
	msgEmptyFeedTitle   = "The feed title can not be empty."
	msgFeedExists       = "The feed already exists."
	msgFeedUnreadable   = "The feed could not be read by the server."
	msgNegativeFolderID = "The folder ID can not be negative."
)

// GetFeeds lists the subscribed feeds.
type GetFeeds struct {
	*lifecycle.Component[news.FeedList]
}

func (c *Client) GetFeeds() *GetFeeds {
	hooks := lifecycle.Hooks[news.FeedList]{
		Name:     "get_feeds",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"feeds"},
		Build: func() (*core.Request, error) {
			return newGet(core.NewRoute("feeds"))
		},
		Decode: func(body json.RawMessage) (news.FeedList, error) {
			var list news.FeedList
			if err := json.Unmarshal(body, &list); err != nil {
				return news.FeedList{}, err
			}
			return list, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, list news.FeedList) error {
			return c.store.FeedsRequested(ctx, list)
		}
	}
	return &GetFeeds{Component: newComponent(c, hooks)}
}

func checkFeedURL(raw string) *apierr.Error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apierr.Input(apierr.CodeInvalidValue, msgInvalidFeedURL)
	}
	return nil
}

func checkFolderRef(v int64) *apierr.Error {
	if v < 0 {
		return apierr.Input(apierr.CodeInvalidID, msgNegativeFolderID)
	}
	return nil
}

// firstOf decodes the first element of an array member.
func firstOf[T any](body json.RawMessage, name string) (T, error) {
	var zero T
	list, err := member[[]T](body, name)
	if err != nil {
		return zero, err
	}
	if len(list) == 0 {
		return zero, errors.New("empty " + name + " list")
	}
	return list[0], nil
}

// CreateFeed subscribes to a feed. FolderID 0 is the root folder.
type CreateFeed struct {
	*lifecycle.Component[news.Feed]
	url      string
	folderID int64
}

func (c *Client) CreateFeed(feedURL string, folderID int64) *CreateFeed {
	op := &CreateFeed{url: feedURL, folderID: folderID}
	hooks := lifecycle.Hooks[news.Feed]{
		Name:     "create_feed",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"feeds"},
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkFeedURL(op.url) },
				func() *apierr.Error { return checkFolderRef(op.folderID) },
			)
		},
		ClassifyStatus: classifyConflict(msgFeedExists, msgFeedUnreadable),
		Build: func() (*core.Request, error) {
			payload := struct {
				URL      string `json:"url"`
				FolderID int64  `json:"folderId"`
			}{op.url, op.folderID}
			return newWithPayload(http.MethodPost, core.NewRoute("feeds"), payload)
		},
		Decode: func(body json.RawMessage) (news.Feed, error) {
			return firstOf[news.Feed](body, "feeds")
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, feed news.Feed) error {
			return c.store.FeedCreated(ctx, feed)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *CreateFeed) URL() string     { return get(op.Component, &op.url) }
func (op *CreateFeed) FolderID() int64 { return get(op.Component, &op.folderID) }

func (op *CreateFeed) SetURL(v string) bool { return set(op.Component, "url", &op.url, v) }
func (op *CreateFeed) SetFolderID(v int64) bool {
	return set(op.Component, "folderId", &op.folderID, v)
}

// RenameFeedResult is the confirmed title of a feed.
type RenameFeedResult struct {
	FeedID int64
	Title  string
}

// RenameFeed changes a feed title.
type RenameFeed struct {
	*lifecycle.Component[RenameFeedResult]
	feedID int64
	title  string
}

func (c *Client) RenameFeed(feedID int64, title string) *RenameFeed {
	op := &RenameFeed{feedID: feedID, title: title}
	hooks := lifecycle.Hooks[RenameFeedResult]{
		Name:            "rename_feed",
		NotFoundMessage: msgFeedNotFound,
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkID(op.feedID, msgInvalidFeedID) },
				func() *apierr.Error { return checkNotEmpty(op.title, msgEmptyFeedTitle) },
			)
		},
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPut, core.NewRoute("feeds", strID(op.feedID), "rename"),
				map[string]string{"feedTitle": op.title})
		},
		Decode: func(json.RawMessage) (RenameFeedResult, error) {
			return RenameFeedResult{FeedID: op.feedID, Title: op.title}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r RenameFeedResult) error {
			return c.store.FeedRenamed(ctx, r.FeedID, r.Title)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *RenameFeed) FeedID() int64 { return get(op.Component, &op.feedID) }
func (op *RenameFeed) Title() string { return get(op.Component, &op.title) }

func (op *RenameFeed) SetFeedID(v int64) bool { return set(op.Component, "feedId", &op.feedID, v) }
func (op *RenameFeed) SetTitle(v string) bool { return set(op.Component, "title", &op.title, v) }

// MoveFeedResult is the confirmed folder of a feed.
type MoveFeedResult struct {
	FeedID   int64
	FolderID int64
}

// MoveFeed moves a feed into another folder, or to the root with folder 0.
type MoveFeed struct {
	*lifecycle.Component[MoveFeedResult]
	feedID   int64
	folderID int64
}

func (c *Client) MoveFeed(feedID, folderID int64) *MoveFeed {
	op := &MoveFeed{feedID: feedID, folderID: folderID}
	hooks := lifecycle.Hooks[MoveFeedResult]{
		Name:            "move_feed",
		NotFoundMessage: msgFeedNotFound,
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkID(op.feedID, msgInvalidFeedID) },
				func() *apierr.Error { return checkFolderRef(op.folderID) },
			)
		},
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPut, core.NewRoute("feeds", strID(op.feedID), "move"),
				map[string]int64{"folderId": op.folderID})
		},
		Decode: func(json.RawMessage) (MoveFeedResult, error) {
			return MoveFeedResult{FeedID: op.feedID, FolderID: op.folderID}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r MoveFeedResult) error {
			return c.store.FeedMoved(ctx, r.FeedID, r.FolderID)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *MoveFeed) FeedID() int64   { return get(op.Component, &op.feedID) }
func (op *MoveFeed) FolderID() int64 { return get(op.Component, &op.folderID) }

func (op *MoveFeed) SetFeedID(v int64) bool { return set(op.Component, "feedId", &op.feedID, v) }
func (op *MoveFeed) SetFolderID(v int64) bool {
	return set(op.Component, "folderId", &op.folderID, v)
}

// DeleteFeed unsubscribes from a feed.
type DeleteFeed struct {
	*lifecycle.Component[int64]
	feedID int64
}

func (c *Client) DeleteFeed(feedID int64) *DeleteFeed {
	op := &DeleteFeed{feedID: feedID}
	hooks := lifecycle.Hooks[int64]{
		Name:            "delete_feed",
		NotFoundMessage: msgFeedNotFound,
		CheckInput: func() *apierr.Error {
			return checkID(op.feedID, msgInvalidFeedID)
		},
		Build: func() (*core.Request, error) {
			return newDelete(core.NewRoute("feeds", strID(op.feedID)))
		},
		Decode: func(json.RawMessage) (int64, error) {
			return op.feedID, nil
		},
	}
	if c.store != nil {
		hooks.Sync = c.store.FeedDeleted
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *DeleteFeed) FeedID() int64 { return get(op.Component, &op.feedID) }

func (op *DeleteFeed) SetFeedID(v int64) bool { return set(op.Component, "feedId", &op.feedID, v) }

// MarkReadResult identifies the container and newest item marked read.
type MarkReadResult struct {
	ID           int64
	NewestItemID int64
}

// MarkFeedRead marks the items of a feed up to a newest item ID as read.
type MarkFeedRead struct {
	*lifecycle.Component[MarkReadResult]
	feedID       int64
	newestItemID int64
}

func (c *Client) MarkFeedRead(feedID, newestItemID int64) *MarkFeedRead {
	op := &MarkFeedRead{feedID: feedID, newestItemID: newestItemID}
	hooks := lifecycle.Hooks[MarkReadResult]{
		Name:            "mark_feed_read",
		NotFoundMessage: msgFeedNotFound,
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkID(op.feedID, msgInvalidFeedID) },
				func() *apierr.Error { return checkID(op.newestItemID, msgInvalidNewestID) },
			)
		},
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPut, core.NewRoute("feeds", strID(op.feedID), "read"),
				map[string]int64{"newestItemId": op.newestItemID})
		},
		Decode: func(json.RawMessage) (MarkReadResult, error) {
			return MarkReadResult{ID: op.feedID, NewestItemID: op.newestItemID}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r MarkReadResult) error {
			return c.store.FeedMarkedRead(ctx, r.ID, r.NewestItemID)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *MarkFeedRead) FeedID() int64       { return get(op.Component, &op.feedID) }
func (op *MarkFeedRead) NewestItemID() int64 { return get(op.Component, &op.newestItemID) }

func (op *MarkFeedRead) SetFeedID(v int64) bool { return set(op.Component, "feedId", &op.feedID, v) }
func (op *MarkFeedRead) SetNewestItemID(v int64) bool {
	return set(op.Component, "newestItemId", &op.newestItemID, v)
}
