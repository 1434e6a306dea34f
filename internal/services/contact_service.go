package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"khata/internal/core"
	"khata/internal/storage"
)

// ContactService manages contacts. Balances always start at zero and are
// only ever moved by the ledger engine afterwards.
type ContactService struct {
	repo *storage.Repository
}

func NewContactService(repo *storage.Repository) *ContactService {
	return &ContactService{repo: repo}
}

// Create validates the contact and enforces (mobile number, organization)
// uniqueness. The same number may exist under a different organization.
func (s *ContactService) Create(ctx context.Context, contact core.Contact) (core.Contact, error) {
	contact.Balance = decimal.Zero
	if err := contact.Validate(); err != nil {
		return core.Contact{}, err
	}

	var created core.Contact
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetOrganization(ctx, contact.OrganizationID); err != nil {
			return err
		}
		if _, err := q.GetContactByMobile(ctx, contact.OrganizationID, contact.MobileNumber); err == nil {
			return fmt.Errorf("%w: mobile number %s already exists in organization %d",
				core.ErrDuplicate, contact.MobileNumber, contact.OrganizationID)
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		var err error
		created, err = q.CreateContact(ctx, contact)
		return err
	})
	if err != nil {
		return core.Contact{}, fmt.Errorf("create contact: %w", err)
	}

	slog.InfoContext(ctx, "Created contact",
		"contact_id", created.ID,
		"organization_id", created.OrganizationID,
		"name", created.Name)

	return created, nil
}

// Update modifies name and mobile number. The owning organization and the
// cached balance are preserved: the balance only moves through the ledger.
func (s *ContactService) Update(ctx context.Context, contact core.Contact) (core.Contact, error) {
	var updated core.Contact
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetContact(ctx, contact.ID)
		if err != nil {
			return err
		}
		contact.OrganizationID = existing.OrganizationID
		contact.Balance = existing.Balance
		if err := contact.Validate(); err != nil {
			return err
		}

		if other, err := q.GetContactByMobile(ctx, contact.OrganizationID, contact.MobileNumber); err == nil && other.ID != contact.ID {
			return fmt.Errorf("%w: mobile number %s already exists in organization %d",
				core.ErrDuplicate, contact.MobileNumber, contact.OrganizationID)
		} else if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}

		updated = contact
		return q.UpdateContact(ctx, contact)
	})
	if err != nil {
		return core.Contact{}, fmt.Errorf("update contact: %w", err)
	}

	slog.InfoContext(ctx, "Updated contact", "contact_id", updated.ID, "name", updated.Name)
	return updated, nil
}

func (s *ContactService) Get(ctx context.Context, id int64) (core.Contact, error) {
	return s.repo.Queries().GetContact(ctx, id)
}

func (s *ContactService) GetByMobile(ctx context.Context, orgID int64, mobile string) (core.Contact, error) {
	return s.repo.Queries().GetContactByMobile(ctx, orgID, mobile)
}

func (s *ContactService) ListByOrganization(ctx context.Context, orgID int64) ([]core.Contact, error) {
	if _, err := s.repo.Queries().GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.Queries().ListContactsByOrganization(ctx, orgID)
}

// GetBalance reads the contact's cached balance.
func (s *ContactService) GetBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	contact, err := s.repo.Queries().GetContact(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return contact.Balance, nil
}

// Delete removes the contact and, through the store's cascade, its
// transaction history.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Queries().DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	slog.InfoContext(ctx, "Deleted contact", "contact_id", id)
	return nil
}
