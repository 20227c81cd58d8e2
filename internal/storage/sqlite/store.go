package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/artpar/feedsync/internal/news"
	"github.com/artpar/feedsync/internal/storage"
	_ "modernc.org/sqlite"
)

const (
	keyLastSync     = "last_sync"
	keyNewestItemID = "newest_item_id"
	keyStarredCount = "starred_count"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New creates a new SQLite-based feed store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open feed database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize feed database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS folders (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS feeds (
			id INTEGER PRIMARY KEY,
			folder_id INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			favicon_link TEXT NOT NULL DEFAULT '',
			added INTEGER NOT NULL DEFAULT 0,
			unread_count INTEGER NOT NULL DEFAULT 0,
			ordering INTEGER NOT NULL DEFAULT 0,
			pinned INTEGER NOT NULL DEFAULT 0,
			update_error_count INTEGER NOT NULL DEFAULT 0,
			last_update_error TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_feeds_folder ON feeds(folder_id);

		CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			feed_id INTEGER NOT NULL,
			guid TEXT NOT NULL DEFAULT '',
			guid_hash TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			pub_date INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL DEFAULT '',
			enclosure_mime TEXT NOT NULL DEFAULT '',
			enclosure_link TEXT NOT NULL DEFAULT '',
			unread INTEGER NOT NULL DEFAULT 1,
			starred INTEGER NOT NULL DEFAULT 0,
			last_modified INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_items_feed ON items(feed_id);
		CREATE INDEX IF NOT EXISTS idx_items_guid_hash ON items(feed_id, guid_hash);
		CREATE INDEX IF NOT EXISTS idx_items_unread ON items(unread);

		CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// write runs fn in a transaction under the write lock.
func (s *Store) write(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}

// ItemMarked sets the unread flag of one item.
func (s *Store) ItemMarked(ctx context.Context, itemID int64, unread bool) error {
	return s.ItemsMarked(ctx, []int64{itemID}, unread)
}

// ItemsMarked sets the unread flag of the given items and adjusts the unread
// counters of their feeds.
func (s *Store) ItemsMarked(ctx context.Context, itemIDs []int64, unread bool) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return s.write(ctx, "mark items", func(tx *sql.Tx) error {
		in, idArgs := inClause(itemIDs)

		// Only items whose flag actually flips change the counters.
		op, from := "-", 1
		if unread {
			op, from = "+", 0
		}
		args := append([]any{from}, idArgs...)
		_, err := tx.ExecContext(ctx, `
			UPDATE feeds SET unread_count = MAX(0, unread_count `+op+` (
				SELECT COUNT(*) FROM items
				WHERE items.feed_id = feeds.id AND items.unread = ? AND items.id IN (`+in+`)
			))`, args...)
		if err != nil {
			return err
		}

		args = append([]any{unread}, idArgs...)
		_, err = tx.ExecContext(ctx, "UPDATE items SET unread = ? WHERE id IN ("+in+")", args...)
		return err
	})
}

// ItemStarred sets the starred flag of one item.
func (s *Store) ItemStarred(ctx context.Context, feedID int64, guidHash string, starred bool) error {
	return s.ItemsStarred(ctx, []news.StarRef{{FeedID: feedID, GUIDHash: guidHash}}, starred)
}

// ItemsStarred sets the starred flag of the referenced items.
func (s *Store) ItemsStarred(ctx context.Context, refs []news.StarRef, starred bool) error {
	if len(refs) == 0 {
		return nil
	}
	return s.write(ctx, "star items", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "UPDATE items SET starred = ? WHERE feed_id = ? AND guid_hash = ?")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, ref := range refs {
			if _, err := stmt.ExecContext(ctx, starred, ref.FeedID, ref.GUIDHash); err != nil {
				return err
			}
		}
		return nil
	})
}

// FeedMarkedRead marks the feed's items up to newestItemID as read.
func (s *Store) FeedMarkedRead(ctx context.Context, feedID, newestItemID int64) error {
	return s.write(ctx, "mark feed read", func(tx *sql.Tx) error {
		return markRead(ctx, tx, "items.feed_id = ? AND items.id <= ?", feedID, newestItemID)
	})
}

// FolderMarkedRead marks the items of all feeds in the folder up to
// newestItemID as read.
func (s *Store) FolderMarkedRead(ctx context.Context, folderID, newestItemID int64) error {
	return s.write(ctx, "mark folder read", func(tx *sql.Tx) error {
		return markRead(ctx, tx,
			"items.feed_id IN (SELECT f.id FROM feeds f WHERE f.folder_id = ?) AND items.id <= ?",
			folderID, newestItemID)
	})
}

// AllItemsMarkedRead marks all items up to newestItemID as read.
func (s *Store) AllItemsMarkedRead(ctx context.Context, newestItemID int64) error {
	return s.write(ctx, "mark all items read", func(tx *sql.Tx) error {
		return markRead(ctx, tx, "items.id <= ?", newestItemID)
	})
}

// markRead marks the unread items matching cond as read and lowers the
// unread counters of their feeds. cond may only reference the items table.
func markRead(ctx context.Context, tx *sql.Tx, cond string, args ...any) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE feeds SET unread_count = MAX(0, unread_count - (
			SELECT COUNT(*) FROM items
			WHERE items.feed_id = feeds.id AND items.unread = 1 AND `+cond+`
		))`, args...)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE items SET unread = 0 WHERE items.unread = 1 AND "+cond, args...)
	return err
}

// FoldersRequested replaces the folder list.
func (s *Store) FoldersRequested(ctx context.Context, folders []news.Folder) error {
	return s.write(ctx, "store folders", func(tx *sql.Tx) error {
		ids := make([]int64, 0, len(folders))
		for _, f := range folders {
			if err := upsertFolder(ctx, tx, f); err != nil {
				return err
			}
			ids = append(ids, f.ID)
		}

		if len(ids) == 0 {
			if _, err := tx.ExecContext(ctx, "DELETE FROM folders"); err != nil {
				return err
			}
		} else {
			in, args := inClause(ids)
			if _, err := tx.ExecContext(ctx, "DELETE FROM folders WHERE id NOT IN ("+in+")", args...); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE feeds SET folder_id = 0 WHERE folder_id != 0 AND folder_id NOT IN (SELECT id FROM folders)")
		return err
	})
}

// FolderCreated adds a folder.
func (s *Store) FolderCreated(ctx context.Context, folder news.Folder) error {
	return s.write(ctx, "store folder", func(tx *sql.Tx) error {
		return upsertFolder(ctx, tx, folder)
	})
}

// FolderRenamed renames a folder.
func (s *Store) FolderRenamed(ctx context.Context, folderID int64, name string) error {
	return s.write(ctx, "rename folder", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE folders SET name = ? WHERE id = ?", name, folderID)
		return err
	})
}

// FolderDeleted removes the folder with its feeds and their items.
func (s *Store) FolderDeleted(ctx context.Context, folderID int64) error {
	return s.write(ctx, "delete folder", func(tx *sql.Tx) error {
		stmts := []string{
			"DELETE FROM items WHERE feed_id IN (SELECT id FROM feeds WHERE folder_id = ?)",
			"DELETE FROM feeds WHERE folder_id = ?",
			"DELETE FROM folders WHERE id = ?",
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, folderID); err != nil {
				return err
			}
		}
		return nil
	})
}

// FeedsRequested replaces the feed list and records the server counters.
func (s *Store) FeedsRequested(ctx context.Context, list news.FeedList) error {
	return s.write(ctx, "store feeds", func(tx *sql.Tx) error {
		ids := make([]int64, 0, len(list.Feeds))
		for _, f := range list.Feeds {
			if err := upsertFeed(ctx, tx, f); err != nil {
				return err
			}
			ids = append(ids, f.ID)
		}

		if len(ids) == 0 {
			if _, err := tx.ExecContext(ctx, "DELETE FROM feeds"); err != nil {
				return err
			}
		} else {
			in, args := inClause(ids)
			if _, err := tx.ExecContext(ctx, "DELETE FROM feeds WHERE id NOT IN ("+in+")", args...); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE feed_id NOT IN (SELECT id FROM feeds)"); err != nil {
			return err
		}

		if err := setState(ctx, tx, keyStarredCount, strconv.FormatInt(list.StarredCount, 10)); err != nil {
			return err
		}
		if list.NewestItemID > 0 {
			return setState(ctx, tx, keyNewestItemID, strconv.FormatInt(list.NewestItemID, 10))
		}
		return nil
	})
}

// FeedCreated adds a feed.
func (s *Store) FeedCreated(ctx context.Context, feed news.Feed) error {
	return s.write(ctx, "store feed", func(tx *sql.Tx) error {
		return upsertFeed(ctx, tx, feed)
	})
}

// FeedRenamed sets the title of a feed.
func (s *Store) FeedRenamed(ctx context.Context, feedID int64, title string) error {
	return s.write(ctx, "rename feed", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE feeds SET title = ? WHERE id = ?", title, feedID)
		return err
	})
}

// FeedMoved moves a feed to another folder. Folder 0 is the root.
func (s *Store) FeedMoved(ctx context.Context, feedID, folderID int64) error {
	return s.write(ctx, "move feed", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE feeds SET folder_id = ? WHERE id = ?", folderID, feedID)
		return err
	})
}

// FeedDeleted removes a feed and its items.
func (s *Store) FeedDeleted(ctx context.Context, feedID int64) error {
	return s.write(ctx, "delete feed", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE feed_id = ?", feedID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", feedID)
		return err
	})
}

// ItemsRequested inserts or updates items.
func (s *Store) ItemsRequested(ctx context.Context, items []news.Item) error {
	if len(items) == 0 {
		return nil
	}
	return s.write(ctx, "store items", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO items (id, feed_id, guid, guid_hash, url, title, author, pub_date, body,
				enclosure_mime, enclosure_link, unread, starred, last_modified, fingerprint)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				feed_id = excluded.feed_id, guid = excluded.guid, guid_hash = excluded.guid_hash,
				url = excluded.url, title = excluded.title, author = excluded.author,
				pub_date = excluded.pub_date, body = excluded.body,
				enclosure_mime = excluded.enclosure_mime, enclosure_link = excluded.enclosure_link,
				unread = excluded.unread, starred = excluded.starred,
				last_modified = excluded.last_modified, fingerprint = excluded.fingerprint
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range items {
			_, err := stmt.ExecContext(ctx,
				it.ID, it.FeedID, it.GUID, it.GUIDHash, it.URL, it.Title, it.Author, it.PubDate, it.Body,
				it.EnclosureMime, it.EnclosureLink, it.Unread, it.Starred, it.LastModified, it.Fingerprint,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Folders returns all folders ordered by name.
func (s *Store) Folders(ctx context.Context) ([]news.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM folders ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []news.Folder
	for rows.Next() {
		var f news.Folder
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// Feeds returns all feeds ordered by folder and title.
func (s *Store) Feeds(ctx context.Context) ([]news.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, folder_id, title, url, link, favicon_link, added, unread_count, ordering,
			pinned, update_error_count, last_update_error
		FROM feeds ORDER BY folder_id, title COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []news.Feed
	for rows.Next() {
		var f news.Feed
		err := rows.Scan(&f.ID, &f.FolderID, &f.Title, &f.URL, &f.Link, &f.FaviconLink, &f.Added,
			&f.UnreadCount, &f.Ordering, &f.Pinned, &f.UpdateErrorCount, &f.LastUpdateError)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

const itemColumns = `id, feed_id, guid, guid_hash, url, title, author, pub_date, body,
	enclosure_mime, enclosure_link, unread, starred, last_modified, fingerprint`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (news.Item, error) {
	var it news.Item
	err := row.Scan(&it.ID, &it.FeedID, &it.GUID, &it.GUIDHash, &it.URL, &it.Title, &it.Author,
		&it.PubDate, &it.Body, &it.EnclosureMime, &it.EnclosureLink, &it.Unread, &it.Starred,
		&it.LastModified, &it.Fingerprint)
	return it, err
}

// Item returns one item by ID.
func (s *Store) Item(ctx context.Context, itemID int64) (news.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return news.Item{}, storage.ErrStoreClosed
	}

	it, err := scanItem(s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return news.Item{}, fmt.Errorf("item %d: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return news.Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// Items returns the items matching q, newest first unless q.OldestFirst.
func (s *Store) Items(ctx context.Context, q storage.ItemQuery) ([]news.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	query, args := buildItemQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []news.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func buildItemQuery(q storage.ItemQuery) (string, []any) {
	query := "SELECT " + itemColumns + " FROM items WHERE 1=1"
	var args []any

	if q.FeedID > 0 {
		query += " AND feed_id = ?"
		args = append(args, q.FeedID)
	}

	if q.FolderID > 0 {
		query += " AND feed_id IN (SELECT id FROM feeds WHERE folder_id = ?)"
		args = append(args, q.FolderID)
	}

	if q.UnreadOnly {
		query += " AND unread = 1"
	}

	if q.StarredOnly {
		query += " AND starred = 1"
	}

	if q.OldestFirst {
		query += " ORDER BY pub_date ASC, id ASC"
	} else {
		query += " ORDER BY pub_date DESC, id DESC"
	}

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
		if q.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, q.Offset)
		}
	}

	return query, args
}

// Counts summarizes the store.
func (s *Store) Counts(ctx context.Context) (news.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return news.Counts{}, storage.ErrStoreClosed
	}

	var c news.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM folders),
			(SELECT COUNT(*) FROM feeds),
			(SELECT COUNT(*) FROM items),
			(SELECT COALESCE(SUM(unread_count), 0) FROM feeds),
			(SELECT COUNT(*) FROM items WHERE starred = 1)
	`).Scan(&c.Folders, &c.Feeds, &c.Items, &c.Unread, &c.Starred)
	if err != nil {
		return news.Counts{}, fmt.Errorf("failed to count: %w", err)
	}
	return c, nil
}

// NewestItemID returns the highest item ID known, either reported by the
// server with the feed list or stored locally.
func (s *Store) NewestItemID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, storage.ErrStoreClosed
	}

	var local int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM items").Scan(&local); err != nil {
		return 0, fmt.Errorf("failed to get newest item: %w", err)
	}

	reported, err := s.stateInt(ctx, keyNewestItemID)
	if err != nil {
		return 0, err
	}
	return max(local, reported), nil
}

// LastSync returns the time of the last completed synchronization.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return time.Time{}, storage.ErrStoreClosed
	}

	secs, err := s.stateInt(ctx, keyLastSync)
	if err != nil || secs == 0 {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

// SetLastSync records the time of a completed synchronization. The zero time
// resets it.
func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	var secs int64
	if !t.IsZero() {
		secs = t.Unix()
	}
	return s.write(ctx, "set last sync", func(tx *sql.Tx) error {
		return setState(ctx, tx, keyLastSync, strconv.FormatInt(secs, 10))
	})
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// Helper functions

func (s *Store) stateInt(ctx context.Context, key string) (int64, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM sync_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func setState(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO sync_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

func upsertFolder(ctx context.Context, tx *sql.Tx, f news.Folder) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO folders (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name",
		f.ID, f.Name)
	return err
}

func upsertFeed(ctx context.Context, tx *sql.Tx, f news.Feed) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO feeds (id, folder_id, title, url, link, favicon_link, added, unread_count,
			ordering, pinned, update_error_count, last_update_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folder_id = excluded.folder_id, title = excluded.title, url = excluded.url,
			link = excluded.link, favicon_link = excluded.favicon_link, added = excluded.added,
			unread_count = excluded.unread_count, ordering = excluded.ordering,
			pinned = excluded.pinned, update_error_count = excluded.update_error_count,
			last_update_error = excluded.last_update_error
	`, f.ID, f.FolderID, f.Title, f.URL, f.Link, f.FaviconLink, f.Added, f.UnreadCount,
		f.Ordering, f.Pinned, f.UpdateErrorCount, f.LastUpdateError)
	return err
}

func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
