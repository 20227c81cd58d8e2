package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/core"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/news"
)

// MarkItemResult is the confirmed state of a marked item.
type MarkItemResult struct {
	ItemID int64
	Unread bool
}

// MarkItem marks one item as read or unread.
type MarkItem struct {
	*lifecycle.Component[MarkItemResult]
	itemID int64
	unread bool
}

func (c *Client) MarkItem(itemID int64, unread bool) *MarkItem {
	op := &MarkItem{itemID: itemID, unread: unread}
	hooks := lifecycle.Hooks[MarkItemResult]{
		Name:            "mark_item",
		NotFoundMessage: msgItemNotFound,
		CheckInput: func() *apierr.Error {
			return checkID(op.itemID, msgInvalidItemID)
		},
		Build: func() (*core.Request, error) {
			action := "read"
			if op.unread {
				action = "unread"
			}
			return newWithPayload(http.MethodPut, core.NewRoute("items", strID(op.itemID), action), toggle)
		},
		Decode: func(json.RawMessage) (MarkItemResult, error) {
			return MarkItemResult{ItemID: op.itemID, Unread: op.unread}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r MarkItemResult) error {
			return c.store.ItemMarked(ctx, r.ItemID, r.Unread)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *MarkItem) ItemID() int64 { return get(op.Component, &op.itemID) }
func (op *MarkItem) Unread() bool  { return get(op.Component, &op.unread) }

func (op *MarkItem) SetItemID(v int64) bool { return set(op.Component, "itemId", &op.itemID, v) }
func (op *MarkItem) SetUnread(v bool) bool  { return set(op.Component, "unread", &op.unread, v) }

// MarkItemsResult is the confirmed state of marked items.
type MarkItemsResult struct {
	ItemIDs []int64
	Unread  bool
}

// MarkMultipleItems marks several items as read or unread in one request.
type MarkMultipleItems struct {
	*lifecycle.Component[MarkItemsResult]
	itemIDs []int64
	unread  bool
}

func (c *Client) MarkMultipleItems(itemIDs []int64, unread bool) *MarkMultipleItems {
	op := &MarkMultipleItems{itemIDs: append([]int64(nil), itemIDs...), unread: unread}
	hooks := lifecycle.Hooks[MarkItemsResult]{
		Name: "mark_multiple_items",
		CheckInput: func() *apierr.Error {
			if len(op.itemIDs) == 0 {
				return apierr.Input(apierr.CodeEmptyValue, "The list of IDs to mark is empty.")
			}
			for _, v := range op.itemIDs {
				if e := checkID(v, msgInvalidItemID); e != nil {
					return e
				}
			}
			return nil
		},
		Build: func() (*core.Request, error) {
			action := "read"
			if op.unread {
				action = "unread"
			}
			return newWithPayload(http.MethodPut, core.NewRoute("items", action, "multiple"),
				map[string][]int64{"items": op.itemIDs})
		},
		Decode: func(json.RawMessage) (MarkItemsResult, error) {
			return MarkItemsResult{ItemIDs: append([]int64(nil), op.itemIDs...), Unread: op.unread}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r MarkItemsResult) error {
			return c.store.ItemsMarked(ctx, r.ItemIDs, r.Unread)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *MarkMultipleItems) ItemIDs() []int64 {
	return append([]int64(nil), get(op.Component, &op.itemIDs)...)
}
func (op *MarkMultipleItems) Unread() bool { return get(op.Component, &op.unread) }

func (op *MarkMultipleItems) SetItemIDs(v []int64) bool {
	return setSlice(op.Component, "itemIds", &op.itemIDs, v)
}
func (op *MarkMultipleItems) SetUnread(v bool) bool { return set(op.Component, "unread", &op.unread, v) }

// StarItemResult is the confirmed state of a starred item.
type StarItemResult struct {
	FeedID   int64
	GUIDHash string
	Starred  bool
}

// StarItem stars or unstars one item, identified by feed and GUID hash.
type StarItem struct {
	*lifecycle.Component[StarItemResult]
	feedID   int64
	guidHash string
	starred  bool
}

func (c *Client) StarItem(feedID int64, guidHash string, starred bool) *StarItem {
	op := &StarItem{feedID: feedID, guidHash: guidHash, starred: starred}
	hooks := lifecycle.Hooks[StarItemResult]{
		Name:            "star_item",
		NotFoundMessage: msgItemNotFound,
		CheckInput: func() *apierr.Error {
			return firstErr(
				func() *apierr.Error { return checkID(op.feedID, msgInvalidFeedID) },
				func() *apierr.Error { return checkNotEmpty(op.guidHash, msgEmptyGUIDHash) },
			)
		},
		Build: func() (*core.Request, error) {
			action := "unstar"
			if op.starred {
				action = "star"
			}
			return newWithPayload(http.MethodPut,
				core.NewRoute("items", strID(op.feedID), op.guidHash, action), toggle)
		},
		Decode: func(json.RawMessage) (StarItemResult, error) {
			return StarItemResult{FeedID: op.feedID, GUIDHash: op.guidHash, Starred: op.starred}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r StarItemResult) error {
			return c.store.ItemStarred(ctx, r.FeedID, r.GUIDHash, r.Starred)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *StarItem) FeedID() int64    { return get(op.Component, &op.feedID) }
func (op *StarItem) GUIDHash() string { return get(op.Component, &op.guidHash) }
func (op *StarItem) Starred() bool    { return get(op.Component, &op.starred) }

func (op *StarItem) SetFeedID(v int64) bool    { return set(op.Component, "feedId", &op.feedID, v) }
func (op *StarItem) SetGUIDHash(v string) bool { return set(op.Component, "guidHash", &op.guidHash, v) }
func (op *StarItem) SetStarred(v bool) bool    { return set(op.Component, "starred", &op.starred, v) }

// StarItemsResult is the confirmed state of starred items.
type StarItemsResult struct {
	Items   []news.StarRef
	Starred bool
}

// StarMultipleItems stars or unstars several items in one request.
type StarMultipleItems struct {
	*lifecycle.Component[StarItemsResult]
	items   []news.StarRef
	starred bool
}

func (c *Client) StarMultipleItems(items []news.StarRef, starred bool) *StarMultipleItems {
	op := &StarMultipleItems{items: append([]news.StarRef(nil), items...), starred: starred}
	hooks := lifecycle.Hooks[StarItemsResult]{
		Name: "star_multiple_items",
		CheckInput: func() *apierr.Error {
			if len(op.items) == 0 {
				return apierr.Input(apierr.CodeEmptyValue, "The list of articles to star is empty.")
			}
			for _, ref := range op.items {
				if e := checkID(ref.FeedID, msgInvalidFeedID); e != nil {
					return e
				}
				if e := checkNotEmpty(ref.GUIDHash, msgEmptyGUIDHash); e != nil {
					return e
				}
			}
			return nil
		},
		Build: func() (*core.Request, error) {
			action := "unstar"
			if op.starred {
				action = "star"
			}
			return newWithPayload(http.MethodPut, core.NewRoute("items", action, "multiple"),
				map[string][]news.StarRef{"items": op.items})
		},
		Decode: func(json.RawMessage) (StarItemsResult, error) {
			return StarItemsResult{Items: append([]news.StarRef(nil), op.items...), Starred: op.starred}, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, r StarItemsResult) error {
			return c.store.ItemsStarred(ctx, r.Items, r.Starred)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *StarMultipleItems) Items() []news.StarRef {
	return append([]news.StarRef(nil), get(op.Component, &op.items)...)
}
func (op *StarMultipleItems) Starred() bool { return get(op.Component, &op.starred) }

func (op *StarMultipleItems) SetItems(v []news.StarRef) bool {
	return setSlice(op.Component, "items", &op.items, v)
}
func (op *StarMultipleItems) SetStarred(v bool) bool {
	return set(op.Component, "starred", &op.starred, v)
}

// MarkAllItemsRead marks every item up to a newest item ID as read.
type MarkAllItemsRead struct {
	*lifecycle.Component[int64]
	newestItemID int64
}

func (c *Client) MarkAllItemsRead(newestItemID int64) *MarkAllItemsRead {
	op := &MarkAllItemsRead{newestItemID: newestItemID}
	hooks := lifecycle.Hooks[int64]{
		Name: "mark_all_items_read",
		CheckInput: func() *apierr.Error {
			return checkID(op.newestItemID, msgInvalidNewestID)
		},
		Build: func() (*core.Request, error) {
			return newWithPayload(http.MethodPut, core.NewRoute("items", "read"),
				map[string]int64{"newestItemId": op.newestItemID})
		},
		Decode: func(json.RawMessage) (int64, error) {
			return op.newestItemID, nil
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, newest int64) error {
			return c.store.AllItemsMarkedRead(ctx, newest)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *MarkAllItemsRead) NewestItemID() int64 { return get(op.Component, &op.newestItemID) }

func (op *MarkAllItemsRead) SetNewestItemID(v int64) bool {
	return set(op.Component, "newestItemId", &op.newestItemID, v)
}

// ItemsQuery selects the items returned by GetItems.
type ItemsQuery struct {
	// BatchSize of -1 returns all items.
	BatchSize int
	// Offset is the item ID below which items are returned, 0 for the newest.
	Offset      int64
	Type        news.ItemType
	ID          int64
	GetRead     bool
	OldestFirst bool
}

// DefaultItemsQuery returns all items of all feeds.
func DefaultItemsQuery() ItemsQuery {
	return ItemsQuery{BatchSize: -1, Type: news.ItemTypeAll, GetRead: true}
}

func checkTypeID(t news.ItemType, v int64) *apierr.Error {
	switch t {
	case news.ItemTypeFeed:
		return checkID(v, msgInvalidFeedID)
	case news.ItemTypeFolder:
		return checkID(v, msgInvalidFolderID)
	case news.ItemTypeStarred, news.ItemTypeAll:
		return nil
	default:
		return apierr.Input(apierr.CodeInvalidValue, "The item type is not valid.")
	}
}

// GetItems lists items.
type GetItems struct {
	*lifecycle.Component[[]news.Item]
	query ItemsQuery
}

func (c *Client) GetItems(q ItemsQuery) *GetItems {
	op := &GetItems{query: q}
	hooks := lifecycle.Hooks[[]news.Item]{
		Name:     "get_items",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"items"},
		CheckInput: func() *apierr.Error {
			q := op.query
			if q.BatchSize == 0 || q.BatchSize < -1 {
				return apierr.Input(apierr.CodeInvalidValue, "The batch size is not valid.")
			}
			if q.Offset < 0 {
				return apierr.Input(apierr.CodeInvalidValue, "The offset is not valid.")
			}
			return checkTypeID(q.Type, q.ID)
		},
		Build: func() (*core.Request, error) {
			q := op.query
			req, err := newGet(core.NewRoute("items"))
			if err != nil {
				return nil, err
			}
			req.SetQuery("batchSize", strconv.Itoa(q.BatchSize))
			req.SetQuery("offset", strID(q.Offset))
			req.SetQuery("type", strconv.Itoa(int(q.Type)))
			req.SetQuery("id", strID(q.ID))
			req.SetQuery("getRead", strconv.FormatBool(q.GetRead))
			req.SetQuery("oldestFirst", strconv.FormatBool(q.OldestFirst))
			return req, nil
		},
		Decode: func(body json.RawMessage) ([]news.Item, error) {
			return member[[]news.Item](body, "items")
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, items []news.Item) error {
			return c.store.ItemsRequested(ctx, items)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *GetItems) Query() ItemsQuery { return get(op.Component, &op.query) }

func (op *GetItems) SetQuery(q ItemsQuery) bool { return set(op.Component, "query", &op.query, q) }

// UpdatedItemsQuery selects the items returned by GetUpdatedItems.
type UpdatedItemsQuery struct {
	// LastModified is a Unix time in seconds.
	LastModified int64
	Type         news.ItemType
	ID           int64
}

// GetUpdatedItems lists items changed since a point in time.
type GetUpdatedItems struct {
	*lifecycle.Component[[]news.Item]
	query UpdatedItemsQuery
}

func (c *Client) GetUpdatedItems(q UpdatedItemsQuery) *GetUpdatedItems {
	op := &GetUpdatedItems{query: q}
	hooks := lifecycle.Hooks[[]news.Item]{
		Name:     "get_updated_items",
		Expect:   lifecycle.ShapeObject,
		Required: []string{"items"},
		CheckInput: func() *apierr.Error {
			if op.query.LastModified <= 0 {
				return apierr.Input(apierr.CodeInvalidValue, "The last modified time is not valid.")
			}
			return checkTypeID(op.query.Type, op.query.ID)
		},
		Build: func() (*core.Request, error) {
			q := op.query
			req, err := newGet(core.NewRoute("items", "updated"))
			if err != nil {
				return nil, err
			}
			req.SetQuery("lastModified", strID(q.LastModified))
			req.SetQuery("type", strconv.Itoa(int(q.Type)))
			req.SetQuery("id", strID(q.ID))
			return req, nil
		},
		Decode: func(body json.RawMessage) ([]news.Item, error) {
			return member[[]news.Item](body, "items")
		},
	}
	if c.store != nil {
		hooks.Sync = func(ctx context.Context, items []news.Item) error {
			return c.store.ItemsRequested(ctx, items)
		}
	}
	op.Component = newComponent(c, hooks)
	return op
}

func (op *GetUpdatedItems) Query() UpdatedItemsQuery { return get(op.Component, &op.query) }

func (op *GetUpdatedItems) SetQuery(q UpdatedItemsQuery) bool {
	return set(op.Component, "query", &op.query, q)
}
