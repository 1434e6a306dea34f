package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"khata/internal/core"
)

// Actions an EntryEvent can describe.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// EntryEvent is published after a ledger write commits. It carries the full
// transaction payload so consumers never need to read back a record that a
// delete has already removed.
type EntryEvent struct {
	EventID       string    `json:"event_id"`
	Action        string    `json:"action"`
	TransactionID int64     `json:"transaction_id"`
	ContactID     int64     `json:"contact_id"`
	Kind          string    `json:"kind"`
	Direction     string    `json:"direction,omitempty"`
	CategoryID    int64     `json:"category_id,omitempty"`
	Amount        string    `json:"amount"`
	Notes         string    `json:"notes,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEntryEvent builds an event from a committed transaction.
func NewEntryEvent(action string, t core.Transaction) *EntryEvent {
	return &EntryEvent{
		EventID:       uuid.NewString(),
		Action:        action,
		TransactionID: t.ID,
		ContactID:     t.ContactID,
		Kind:          string(t.Kind),
		Direction:     string(t.Direction),
		CategoryID:    t.CategoryID,
		Amount:        t.Amount.String(),
		Notes:         t.Notes,
		OccurredAt:    t.OccurredAt,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON parses an event from JSON bytes.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var e EntryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
