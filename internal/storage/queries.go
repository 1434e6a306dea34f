package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"khata/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every query can run
// either standalone or inside an atomic unit.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries bundles all entity-store operations over a DBTX.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to an open transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Organizations

func (q *Queries) CreateOrganization(ctx context.Context, o core.Organization) (core.Organization, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO organizations (name, currency, country, address) VALUES (?, ?, ?, ?)`,
		o.Name, o.Currency, o.Country, o.Address)
	if err != nil {
		return core.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return core.Organization{}, fmt.Errorf("organization id: %w", err)
	}
	return o, nil
}

func (q *Queries) GetOrganization(ctx context.Context, id int64) (core.Organization, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, currency, country, address FROM organizations WHERE id = ?`, id)
	return scanOrganization(row)
}

func (q *Queries) GetOrganizationByName(ctx context.Context, name string) (core.Organization, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, currency, country, address FROM organizations WHERE name = ?`, name)
	return scanOrganization(row)
}

func (q *Queries) ListOrganizations(ctx context.Context) ([]core.Organization, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, currency, country, address FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []core.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (q *Queries) UpdateOrganization(ctx context.Context, o core.Organization) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE organizations SET name = ?, currency = ?, country = ?, address = ? WHERE id = ?`,
		o.Name, o.Currency, o.Country, o.Address, o.ID)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	return requireRow(res)
}

func (q *Queries) DeleteOrganization(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	return requireRow(res)
}

// Contacts

func (q *Queries) CreateContact(ctx context.Context, c core.Contact) (core.Contact, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO contacts (organization_id, name, mobile_number, balance) VALUES (?, ?, ?, ?)`,
		c.OrganizationID, c.Name, c.MobileNumber, c.Balance.String())
	if err != nil {
		return core.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Contact{}, fmt.Errorf("contact id: %w", err)
	}
	return c, nil
}

func (q *Queries) GetContact(ctx context.Context, id int64) (core.Contact, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, mobile_number, balance FROM contacts WHERE id = ?`, id)
	return scanContact(row)
}

func (q *Queries) GetContactByMobile(ctx context.Context, orgID int64, mobile string) (core.Contact, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, mobile_number, balance
		 FROM contacts WHERE organization_id = ? AND mobile_number = ?`, orgID, mobile)
	return scanContact(row)
}

func (q *Queries) ListContactsByOrganization(ctx context.Context, orgID int64) ([]core.Contact, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, organization_id, name, mobile_number, balance
		 FROM contacts WHERE organization_id = ? ORDER BY name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []core.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (q *Queries) UpdateContact(ctx context.Context, c core.Contact) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, mobile_number = ? WHERE id = ?`,
		c.Name, c.MobileNumber, c.ID)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return requireRow(res)
}

func (q *Queries) UpdateContactBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contacts SET balance = ? WHERE id = ?`, balance.String(), id)
	if err != nil {
		return fmt.Errorf("update contact balance: %w", err)
	}
	return requireRow(res)
}

func (q *Queries) DeleteContact(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return requireRow(res)
}

// Expense categories

func (q *Queries) CreateCategory(ctx context.Context, c core.ExpenseCategory) (core.ExpenseCategory, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO expense_categories (organization_id, name, is_default) VALUES (?, ?, ?)`,
		c.OrganizationID, c.Name, c.IsDefault)
	if err != nil {
		return core.ExpenseCategory{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.ExpenseCategory{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.ExpenseCategory, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, is_default FROM expense_categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (q *Queries) GetCategoryByName(ctx context.Context, orgID int64, name string) (core.ExpenseCategory, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, is_default
		 FROM expense_categories WHERE organization_id = ? AND name = ?`, orgID, name)
	return scanCategory(row)
}

func (q *Queries) ListCategoriesByOrganization(ctx context.Context, orgID int64) ([]core.ExpenseCategory, error) {
	return q.listCategories(ctx,
		`SELECT id, organization_id, name, is_default
		 FROM expense_categories WHERE organization_id = ? ORDER BY name`, orgID)
}

func (q *Queries) ListDefaultCategories(ctx context.Context, orgID int64) ([]core.ExpenseCategory, error) {
	return q.listCategories(ctx,
		`SELECT id, organization_id, name, is_default
		 FROM expense_categories WHERE organization_id = ? AND is_default = 1 ORDER BY name`, orgID)
}

func (q *Queries) listCategories(ctx context.Context, query string, args ...any) ([]core.ExpenseCategory, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.ExpenseCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.ExpenseCategory) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expense_categories SET name = ? WHERE id = ?`, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expense_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// Transactions

const transactionColumns = `id, contact_id, kind, direction, category_id, amount, notes, occurred_at`

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var direction any
	if t.Kind == core.KindGiveTake {
		direction = string(t.Direction)
	}
	var categoryID any
	if t.Kind == core.KindExpense {
		categoryID = t.CategoryID
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (contact_id, kind, direction, category_id, amount, notes, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ContactID, string(t.Kind), direction, categoryID, t.Amount.String(), t.Notes, t.OccurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (q *Queries) ListTransactionsByContact(ctx context.Context, contactID int64) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE contact_id = ? ORDER BY occurred_at, id`,
		contactID)
}

// ListTransactionsByContactWindow filters by [start, end] inclusive.
func (q *Queries) ListTransactionsByContactWindow(ctx context.Context, contactID int64, start, end time.Time) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE contact_id = ? AND occurred_at >= ? AND occurred_at <= ?
		 ORDER BY occurred_at, id`,
		contactID, start, end)
}

// ListTransactionsByOrganizationWindow returns every transaction of the
// organization's contacts inside [start, end] inclusive.
func (q *Queries) ListTransactionsByOrganizationWindow(ctx context.Context, orgID int64, start, end time.Time) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT t.id, t.contact_id, t.kind, t.direction, t.category_id, t.amount, t.notes, t.occurred_at
		 FROM transactions t
		 JOIN contacts c ON c.id = t.contact_id
		 WHERE c.organization_id = ? AND t.occurred_at >= ? AND t.occurred_at <= ?
		 ORDER BY t.occurred_at, t.id`,
		orgID, start, end)
}

func (q *Queries) ListGiveTakeByDirection(ctx context.Context, contactID int64, dir core.Direction) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE contact_id = ? AND kind = ? AND direction = ?
		 ORDER BY occurred_at, id`,
		contactID, string(core.KindGiveTake), string(dir))
}

func (q *Queries) ListExpensesByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE category_id = ? AND kind = ?
		 ORDER BY occurred_at, id`,
		categoryID, string(core.KindExpense))
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (core.Organization, error) {
	var o core.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Currency, &o.Country, &o.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Organization{}, fmt.Errorf("%w: organization", core.ErrNotFound)
	}
	if err != nil {
		return core.Organization{}, fmt.Errorf("scan organization: %w", err)
	}
	return o, nil
}

func scanContact(row rowScanner) (core.Contact, error) {
	var (
		c       core.Contact
		balance string
	)
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.MobileNumber, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contact{}, fmt.Errorf("%w: contact", core.ErrNotFound)
	}
	if err != nil {
		return core.Contact{}, fmt.Errorf("scan contact: %w", err)
	}
	c.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return core.Contact{}, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	return c, nil
}

func scanCategory(row rowScanner) (core.ExpenseCategory, error) {
	var c core.ExpenseCategory
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseCategory{}, fmt.Errorf("%w: expense category", core.ErrNotFound)
	}
	if err != nil {
		return core.ExpenseCategory{}, fmt.Errorf("scan category: %w", err)
	}
	return c, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		kind       string
		direction  sql.NullString
		categoryID sql.NullInt64
		amount     string
	)
	err := row.Scan(&t.ID, &t.ContactID, &kind, &direction, &categoryID, &amount, &t.Notes, &t.OccurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction", core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.Kind(kind)
	if direction.Valid {
		t.Direction = core.Direction(direction.String)
	}
	if categoryID.Valid {
		t.CategoryID = categoryID.Int64
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
