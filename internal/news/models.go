// Package news holds the entities exchanged with a News server.
package news

import (
	"slices"
	"time"
)

// Folder groups feeds.
type Folder struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Feed is a subscription.
type Feed struct {
	ID               int64  `json:"id"`
	FolderID         int64  `json:"folderId"`
	URL              string `json:"url"`
	Title            string `json:"title"`
	Link             string `json:"link"`
	FaviconLink      string `json:"faviconLink"`
	Added            int64  `json:"added"`
	UnreadCount      int64  `json:"unreadCount"`
	Ordering         int    `json:"ordering"`
	Pinned           bool   `json:"pinned"`
	UpdateErrorCount int    `json:"updateErrorCount"`
	LastUpdateError  string `json:"lastUpdateError"`
}

// Item is an article of a feed.
type Item struct {
	ID            int64  `json:"id"`
	FeedID        int64  `json:"feedId"`
	GUID          string `json:"guid"`
	GUIDHash      string `json:"guidHash"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PubDate       int64  `json:"pubDate"`
	Body          string `json:"body"`
	EnclosureMime string `json:"enclosureMime"`
	EnclosureLink string `json:"enclosureLink"`
	Unread        bool   `json:"unread"`
	Starred       bool   `json:"starred"`
	LastModified  int64  `json:"lastModified"`
	Fingerprint   string `json:"fingerprint"`
}

// Published returns the publication time.
func (i Item) Published() time.Time {
	return time.Unix(i.PubDate, 0)
}

// StarRef identifies an item the way the star endpoints do.
type StarRef struct {
	FeedID   int64  `json:"feedId"`
	GUIDHash string `json:"guidHash"`
}

// Ref returns the star reference of the item.
func (i Item) Ref() StarRef {
	return StarRef{FeedID: i.FeedID, GUIDHash: i.GUIDHash}
}

// FeedList is the result of listing feeds.
type FeedList struct {
	Feeds        []Feed `json:"feeds"`
	StarredCount int64  `json:"starredCount"`
	NewestItemID int64  `json:"newestItemId"`
}

// Clone returns a copy that does not share the feed slice.
func (l FeedList) Clone() FeedList {
	l.Feeds = slices.Clone(l.Feeds)
	return l
}

// Warnings are server side configuration problems.
type Warnings struct {
	ImproperlyConfiguredCron bool `json:"improperlyConfiguredCron"`
	IncorrectDBCharset       bool `json:"incorrectDbCharset"`
}

// ServerStatus is the result of the status endpoint.
type ServerStatus struct {
	Version  string   `json:"version"`
	Warnings Warnings `json:"warnings"`
}

// ItemType selects which items a listing returns.
type ItemType int

const (
	ItemTypeFeed ItemType = iota
	ItemTypeFolder
	ItemTypeStarred
	ItemTypeAll
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeFeed:
		return "feed"
	case ItemTypeFolder:
		return "folder"
	case ItemTypeStarred:
		return "starred"
	case ItemTypeAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseItemType parses the names returned by ItemType.String.
func ParseItemType(s string) (ItemType, bool) {
	for _, t := range []ItemType{ItemTypeFeed, ItemTypeFolder, ItemTypeStarred, ItemTypeAll} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Counts summarizes the local cache.
type Counts struct {
	Folders int64 `json:"folders"`
	Feeds   int64 `json:"feeds"`
	Items   int64 `json:"items"`
	Unread  int64 `json:"unread"`
	Starred int64 `json:"starred"`
}
