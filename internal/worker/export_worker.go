// Package worker consumes ledger events and exports them as audit rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"khata/internal/amqp"
	"khata/internal/export"
)

// ExportWorker drains the ledger event queue into an EntryAppender.
type ExportWorker struct {
	client   *amqp.Client
	appender export.EntryAppender
	timeout  time.Duration
}

// NewExportWorker builds a worker. timeout bounds the handling of a single
// event; zero means no bound.
func NewExportWorker(client *amqp.Client, appender export.EntryAppender, timeout time.Duration) *ExportWorker {
	return &ExportWorker{client: client, appender: appender, timeout: timeout}
}

// Run consumes events until the context is cancelled or the broker
// connection drops.
func (w *ExportWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Export worker started")
	return w.client.ConsumeEntryEvents(ctx, func(event *amqp.EntryEvent) error {
		return w.handleEvent(ctx, event)
	})
}

func (w *ExportWorker) handleEvent(ctx context.Context, event *amqp.EntryEvent) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", event.EventID,
		"action", event.Action,
		"transaction_id", event.TransactionID)

	if w.appender == nil {
		// No sink configured: drain the queue so events do not pile up.
		slog.WarnContext(ctx, "No entry appender configured, dropping event",
			"event_id", event.EventID)
		return nil
	}

	entry := export.Entry{
		EventID:       event.EventID,
		Action:        event.Action,
		TransactionID: event.TransactionID,
		ContactID:     event.ContactID,
		Kind:          event.Kind,
		Direction:     event.Direction,
		CategoryID:    event.CategoryID,
		Amount:        event.Amount,
		Notes:         event.Notes,
		OccurredAt:    event.OccurredAt,
		RecordedAt:    time.Now().UTC(),
	}
	if err := w.appender.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry %s: %w", event.EventID, err)
	}

	slog.InfoContext(ctx, "Exported ledger event", "event_id", event.EventID)
	return nil
}
