package history

import (
	"time"

	"github.com/artpar/feedsync/internal/lifecycle"
)

// Outcome values stored in Entry.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one journaled exchange with the News server.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Method    string    `json:"method"`
	Route     string    `json:"route"`
	Status    int       `json:"status,omitempty"`
	Outcome   string    `json:"outcome"`
	ErrorKind string    `json:"error_kind,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Duration  int64     `json:"duration"` // milliseconds
}

// Failed reports whether the exchange ended in an error.
func (e Entry) Failed() bool {
	return e.Outcome == OutcomeFailure
}

// FromExchange converts a finished exchange into an entry. The attempt ID
// becomes the entry ID.
func FromExchange(ex lifecycle.Exchange) Entry {
	entry := Entry{
		ID:        ex.AttemptID,
		Timestamp: ex.Started,
		Operation: ex.Operation,
		Method:    ex.Method,
		Route:     ex.Route,
		Status:    ex.Status,
		Outcome:   OutcomeSuccess,
		Duration:  ex.Elapsed.Milliseconds(),
	}
	if ex.Err != nil {
		entry.Outcome = OutcomeFailure
		entry.ErrorKind = ex.Err.Kind().String()
		entry.ErrorCode = ex.Err.Code()
		entry.Message = ex.Err.Message()
	}
	return entry
}

// QueryOptions specifies filters and pagination for history queries.
type QueryOptions struct {
	Operation  string    // Filter by operation name
	FailedOnly bool      // Only failed exchanges
	After      time.Time // Only entries after this time
	Before     time.Time // Only entries before this time

	Limit  int // Maximum number of results (0 = no limit)
	Offset int
}

// Stats provides aggregate statistics about the journal.
type Stats struct {
	TotalEntries    int64            `json:"total_entries"`
	Failures        int64            `json:"failures"`
	OldestEntry     time.Time        `json:"oldest_entry"`
	NewestEntry     time.Time        `json:"newest_entry"`
	OperationCounts map[string]int64 `json:"operation_counts"`
	AverageTime     float64          `json:"average_time"`
	SuccessRate     float64          `json:"success_rate"`
}

// PruneOptions specifies which entries to drop. Zero fields are ignored.
type PruneOptions struct {
	OlderThan time.Duration
	KeepLast  int
}

// PruneResult contains the result of a prune operation.
type PruneResult struct {
	DeletedCount int64 `json:"deleted_count"`
}
