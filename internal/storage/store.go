// Package storage defines the local mirror of the server state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/feedsync/internal/news"
)

// Common errors.
var (
	ErrStoreClosed = errors.New("feed store is closed")
	ErrNotFound    = errors.New("not found in feed store")
)

// Syncer receives confirmed server changes. Each method is called once after
// the matching request succeeded, with the values the server confirmed.
type Syncer interface {
	ItemMarked(ctx context.Context, itemID int64, unread bool) error
	ItemsMarked(ctx context.Context, itemIDs []int64, unread bool) error
	ItemStarred(ctx context.Context, feedID int64, guidHash string, starred bool) error
	ItemsStarred(ctx context.Context, refs []news.StarRef, starred bool) error

	// FeedMarkedRead marks the feed's items up to newestItemID as read.
	FeedMarkedRead(ctx context.Context, feedID, newestItemID int64) error
	FolderMarkedRead(ctx context.Context, folderID, newestItemID int64) error
	AllItemsMarkedRead(ctx context.Context, newestItemID int64) error

	// FoldersRequested replaces the folder list. Folders missing from the list
	// are removed and their feeds move to the root.
	FoldersRequested(ctx context.Context, folders []news.Folder) error
	FolderCreated(ctx context.Context, folder news.Folder) error
	FolderRenamed(ctx context.Context, folderID int64, name string) error
	// FolderDeleted removes the folder with its feeds and their items.
	FolderDeleted(ctx context.Context, folderID int64) error

	// FeedsRequested replaces the feed list. Feeds missing from the list are
	// removed with their items.
	FeedsRequested(ctx context.Context, list news.FeedList) error
	FeedCreated(ctx context.Context, feed news.Feed) error
	FeedRenamed(ctx context.Context, feedID int64, title string) error
	FeedMoved(ctx context.Context, feedID, folderID int64) error
	FeedDeleted(ctx context.Context, feedID int64) error

	// ItemsRequested inserts or updates items.
	ItemsRequested(ctx context.Context, items []news.Item) error
}

// ItemQuery filters items read from the store.
type ItemQuery struct {
	FeedID      int64
	FolderID    int64
	UnreadOnly  bool
	StarredOnly bool
	Limit       int
	Offset      int
	OldestFirst bool
}

// Reader exposes the mirrored state.
type Reader interface {
	Folders(ctx context.Context) ([]news.Folder, error)
	Feeds(ctx context.Context) ([]news.Feed, error)
	Item(ctx context.Context, itemID int64) (news.Item, error)
	Items(ctx context.Context, q ItemQuery) ([]news.Item, error)
	Counts(ctx context.Context) (news.Counts, error)
	NewestItemID(ctx context.Context) (int64, error)

	// LastSync returns the zero time when the store was never synced.
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
}

// Store is a complete local mirror.
type Store interface {
	Syncer
	Reader

	// Close closes the store.
	Close() error
}
