// Package export defines outbound ports for the ledger audit trail.
package export

import (
	"context"
	"time"
)

// Entry is one audit row derived from a committed ledger event.
type Entry struct {
	EventID       string
	Action        string
	TransactionID int64
	ContactID     int64
	Kind          string
	Direction     string
	CategoryID    int64
	Amount        string
	Notes         string
	OccurredAt    time.Time
	RecordedAt    time.Time
}

// EntryAppender appends audit entries to an external sink.
type EntryAppender interface {
	AppendEntry(ctx context.Context, e Entry) error
}
