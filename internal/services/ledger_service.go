// Package services implements the ledger engine, the reporting engine and
// the directory services over the entity store. The ledger engine is the
// part that matters: it is the only code allowed to touch a contact's
// cached balance, and it only does so inside the same atomic unit as the
// transaction write it accounts for.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/storage"
)

// LedgerService creates and deletes transactions while keeping every
// contact's cached balance equal to the signed sum of its live give/take
// transactions.
type LedgerService struct {
	repo   *storage.Repository
	events *amqp.Client
}

// NewLedgerService wires the engine to its store. events may be nil; event
// publishing is best effort and never affects a ledger write.
func NewLedgerService(repo *storage.Repository, events *amqp.Client) *LedgerService {
	return &LedgerService{repo: repo, events: events}
}

// CreateGiveTake records a give/take transaction and moves the contact's
// cached balance by the transaction's effect. The insert and the balance
// update commit as one unit: a failure of either leaves no trace of the
// other.
func (s *LedgerService) CreateGiveTake(ctx context.Context, contactID int64, amount decimal.Decimal, direction core.Direction, notes string) (core.Transaction, error) {
	tx := core.Transaction{
		ContactID:  contactID,
		Kind:       core.KindGiveTake,
		Direction:  direction,
		Amount:     amount,
		Notes:      notes,
		OccurredAt: time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var created core.Transaction
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		contact, err := q.GetContact(ctx, contactID)
		if err != nil {
			return err
		}

		created, err = q.CreateTransaction(ctx, tx)
		if err != nil {
			return err
		}

		return applyBalance(ctx, q, contact, contact.Balance.Add(created.BalanceEffect()))
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create give/take: %w", err)
	}

	slog.InfoContext(ctx, "Recorded give/take transaction",
		"transaction_id", created.ID,
		"contact_id", contactID,
		"direction", direction,
		"amount", amount.String())

	s.publish(ctx, amqp.ActionCreated, created)
	return created, nil
}

// CreateExpense records an expense transaction. Expenses are informational
// and never move a balance; the category must belong to the contact's
// organization.
func (s *LedgerService) CreateExpense(ctx context.Context, contactID, categoryID int64, amount decimal.Decimal, notes string) (core.Transaction, error) {
	tx := core.Transaction{
		ContactID:  contactID,
		Kind:       core.KindExpense,
		CategoryID: categoryID,
		Amount:     amount,
		Notes:      notes,
		OccurredAt: time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var created core.Transaction
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		contact, err := q.GetContact(ctx, contactID)
		if err != nil {
			return err
		}
		category, err := q.GetCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if category.OrganizationID != contact.OrganizationID {
			return core.ErrCrossOrganization
		}

		created, err = q.CreateTransaction(ctx, tx)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Recorded expense transaction",
		"transaction_id", created.ID,
		"contact_id", contactID,
		"category_id", categoryID,
		"amount", amount.String())

	s.publish(ctx, amqp.ActionCreated, created)
	return created, nil
}

// DeleteTransaction removes a transaction. For a give/take transaction the
// contact's balance first receives the negation of the original effect, in
// the same atomic unit as the delete, so the net result equals the balance
// the contact would have had without the transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	var deleted core.Transaction
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		tx, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		deleted = tx

		if tx.Kind == core.KindGiveTake {
			contact, err := q.GetContact(ctx, tx.ContactID)
			if err != nil {
				return err
			}
			if err := applyBalance(ctx, q, contact, contact.Balance.Sub(tx.BalanceEffect())); err != nil {
				return err
			}
		}

		return q.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Deleted transaction",
		"transaction_id", id,
		"kind", deleted.Kind,
		"contact_id", deleted.ContactID)

	s.publish(ctx, amqp.ActionDeleted, deleted)
	return nil
}

// GetTransaction fetches a single transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.Queries().GetTransaction(ctx, id)
}

// ListTransactionsByContact returns a contact's full transaction history in
// chronological order.
func (s *LedgerService) ListTransactionsByContact(ctx context.Context, contactID int64) ([]core.Transaction, error) {
	if _, err := s.repo.Queries().GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return s.repo.Queries().ListTransactionsByContact(ctx, contactID)
}

// ListGiveTakeByDirection returns a contact's give/take transactions of one
// direction.
func (s *LedgerService) ListGiveTakeByDirection(ctx context.Context, contactID int64, dir core.Direction) ([]core.Transaction, error) {
	return s.repo.Queries().ListGiveTakeByDirection(ctx, contactID, dir)
}

// TotalReceivables sums a contact's GIVE transactions.
func (s *LedgerService) TotalReceivables(ctx context.Context, contactID int64) (decimal.Decimal, error) {
	return s.sumByDirection(ctx, contactID, core.DirectionGive)
}

// TotalPayables sums a contact's TAKE transactions.
func (s *LedgerService) TotalPayables(ctx context.Context, contactID int64) (decimal.Decimal, error) {
	return s.sumByDirection(ctx, contactID, core.DirectionTake)
}

func (s *LedgerService) sumByDirection(ctx context.Context, contactID int64, dir core.Direction) (decimal.Decimal, error) {
	txs, err := s.repo.Queries().ListGiveTakeByDirection(ctx, contactID, dir)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total, nil
}

// TotalExpensesByCategory sums every expense recorded under a category.
func (s *LedgerService) TotalExpensesByCategory(ctx context.Context, categoryID int64) (decimal.Decimal, error) {
	txs, err := s.repo.Queries().ListExpensesByCategory(ctx, categoryID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total, nil
}

// applyBalance is the single low-level balance override. It refuses to
// record a negative balance; callers always derive newBalance from the
// transaction effect, never compute signs by hand.
func applyBalance(ctx context.Context, q *storage.Queries, contact core.Contact, newBalance decimal.Decimal) error {
	if newBalance.IsNegative() {
		return fmt.Errorf("%w: balance of contact %d would become negative", core.ErrInvalidAmount, contact.ID)
	}
	if err := q.UpdateContactBalance(ctx, contact.ID, newBalance); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Updated contact balance",
		"contact_id", contact.ID,
		"balance", newBalance.String())
	return nil
}

func (s *LedgerService) publish(ctx context.Context, action string, t core.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEntryEvent(ctx, amqp.NewEntryEvent(action, t)); err != nil {
		// The ledger write already committed; the event is best effort.
		slog.ErrorContext(ctx, "Failed to publish entry event",
			"action", action,
			"transaction_id", t.ID,
			"error", err)
	}
}
