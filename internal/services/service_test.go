package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"khata/internal/core"
	"khata/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedOrganization(t *testing.T, repo *storage.Repository, name string) core.Organization {
	t.Helper()
	org, err := NewOrganizationService(repo).Create(context.Background(), core.Organization{
		Name:     name,
		Currency: "INR",
		Country:  "India",
	})
	if err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}

func seedContact(t *testing.T, repo *storage.Repository, orgID int64, name, mobile string) core.Contact {
	t.Helper()
	contact, err := NewContactService(repo).Create(context.Background(), core.Contact{
		OrganizationID: orgID,
		Name:           name,
		MobileNumber:   mobile,
	})
	if err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return contact
}

// seedExpenseAt inserts an expense directly through the store with a chosen
// timestamp, for report window tests.
func seedExpenseAt(t *testing.T, repo *storage.Repository, contactID, categoryID int64, amount string, at time.Time) core.Transaction {
	t.Helper()
	tx, err := repo.Queries().CreateTransaction(context.Background(), core.Transaction{
		ContactID:  contactID,
		Kind:       core.KindExpense,
		CategoryID: categoryID,
		Amount:     dec(amount),
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	return tx
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func categoryByName(t *testing.T, repo *storage.Repository, orgID int64, name string) core.ExpenseCategory {
	t.Helper()
	c, err := repo.Queries().GetCategoryByName(context.Background(), orgID, name)
	if err != nil {
		t.Fatalf("category %q: %v", name, err)
	}
	return c
}

func balanceOf(t *testing.T, repo *storage.Repository, contactID int64) decimal.Decimal {
	t.Helper()
	c, err := repo.Queries().GetContact(context.Background(), contactID)
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	return c.Balance
}
