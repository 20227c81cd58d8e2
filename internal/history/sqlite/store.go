package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/feedsync/internal/history"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ history.Store = (*Store)(nil)

// Store implements history.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New creates a new SQLite-based history store. It may share the database
// file of the feed store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
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
		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			operation TEXT NOT NULL,
			method TEXT NOT NULL,
			route TEXT NOT NULL,
			status INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			error_kind TEXT NOT NULL DEFAULT '',
			error_code TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			duration INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_history_operation ON history(operation);
		CREATE INDEX IF NOT EXISTS idx_history_outcome ON history(outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Add adds a new history entry and returns its ID.
func (s *Store) Add(ctx context.Context, entry history.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", history.ErrStoreClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (
			id, timestamp, operation, method, route, status, outcome,
			error_kind, error_code, message, duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.Timestamp.UnixMilli(), entry.Operation, entry.Method, entry.Route,
		entry.Status, entry.Outcome, entry.ErrorKind, entry.ErrorCode, entry.Message,
		entry.Duration,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}

	return entry.ID, nil
}

const selectColumns = `
	SELECT id, timestamp, operation, method, route, status, outcome,
		error_kind, error_code, message, duration
	FROM history`

// Get retrieves a single history entry by ID.
func (s *Store) Get(ctx context.Context, id string) (history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return history.Entry{}, history.ErrStoreClosed
	}

	if id == "" {
		return history.Entry{}, history.ErrInvalidID
	}

	entry, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return history.Entry{}, history.ErrNotFound
	}
	if err != nil {
		return history.Entry{}, fmt.Errorf("failed to get history entry: %w", err)
	}

	return entry, nil
}

// List retrieves history entries matching the query options.
func (s *Store) List(ctx context.Context, opts history.QueryOptions) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, history.ErrStoreClosed
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, history.ErrInvalidOption
	}

	where, args := buildWhere(opts)
	query := selectColumns + where + " ORDER BY timestamp DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	} else if opts.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Count returns the number of entries matching the query options.
func (s *Store) Count(ctx context.Context, opts history.QueryOptions) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, history.ErrStoreClosed
	}

	where, args := buildWhere(opts)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	return count, nil
}

// Prune removes old entries. OlderThan is applied before KeepLast.
func (s *Store) Prune(ctx context.Context, opts history.PruneOptions) (history.PruneResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.PruneResult{}, history.ErrStoreClosed
	}
	if opts.OlderThan < 0 || opts.KeepLast < 0 {
		return history.PruneResult{}, history.ErrInvalidOption
	}

	var result history.PruneResult

	if opts.OlderThan > 0 {
		cutoff := time.Now().Add(-opts.OlderThan).UnixMilli()
		res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE timestamp < ?", cutoff)
		if err != nil {
			return result, fmt.Errorf("failed to prune history: %w", err)
		}
		n, _ := res.RowsAffected()
		result.DeletedCount += n
	}

	if opts.KeepLast > 0 {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM history WHERE id NOT IN (
				SELECT id FROM history ORDER BY timestamp DESC, rowid DESC LIMIT ?
			)
		`, opts.KeepLast)
		if err != nil {
			return result, fmt.Errorf("failed to prune history: %w", err)
		}
		n, _ := res.RowsAffected()
		result.DeletedCount += n
	}

	return result, nil
}

// Stats returns aggregate statistics about the history.
func (s *Store) Stats(ctx context.Context) (history.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return history.Stats{}, history.ErrStoreClosed
	}

	stats := history.Stats{OperationCounts: make(map[string]int64)}

	var oldest, newest sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			MIN(timestamp), MAX(timestamp), AVG(duration)
		FROM history
	`, history.OutcomeFailure).Scan(&stats.TotalEntries, &stats.Failures, &oldest, &newest, &avg)
	if err != nil {
		return stats, fmt.Errorf("failed to get history stats: %w", err)
	}

	if oldest.Valid {
		stats.OldestEntry = time.UnixMilli(oldest.Int64)
	}
	if newest.Valid {
		stats.NewestEntry = time.UnixMilli(newest.Int64)
	}
	stats.AverageTime = avg.Float64
	if stats.TotalEntries > 0 {
		stats.SuccessRate = float64(stats.TotalEntries-stats.Failures) / float64(stats.TotalEntries)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT operation, COUNT(*) FROM history GROUP BY operation")
	if err != nil {
		return stats, fmt.Errorf("failed to get operation counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op string
		var count int64
		if err := rows.Scan(&op, &count); err != nil {
			return stats, err
		}
		stats.OperationCounts[op] = count
	}

	return stats, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func buildWhere(opts history.QueryOptions) (string, []any) {
	var conditions []string
	var args []any

	if opts.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, opts.Operation)
	}
	if opts.FailedOnly {
		conditions = append(conditions, "outcome = ?")
		args = append(args, history.OutcomeFailure)
	}
	if !opts.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, opts.After.UnixMilli())
	}
	if !opts.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, opts.Before.UnixMilli())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (history.Entry, error) {
	var entry history.Entry
	var ts int64
	err := row.Scan(
		&entry.ID, &ts, &entry.Operation, &entry.Method, &entry.Route, &entry.Status,
		&entry.Outcome, &entry.ErrorKind, &entry.ErrorCode, &entry.Message, &entry.Duration,
	)
	if err != nil {
		return history.Entry{}, err
	}
	entry.Timestamp = time.UnixMilli(ts)
	return entry, nil
}
