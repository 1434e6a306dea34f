package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DirectionGive Direction = "GIVE"
	DirectionTake Direction = "TAKE"
)

const (
	KindExpense  Kind = "EXPENSE"
	KindGiveTake Kind = "GIVE_TAKE"
)

type (
	// Direction tags a GiveTake transaction: GIVE increases the
	// receivable from the contact, TAKE decreases it.
	Direction string

	// Kind discriminates the two transaction variants.
	Kind string

	Organization struct {
		ID       int64
		Name     string
		Currency string
		Country  string
		Address  string
	}

	// Contact carries a cached signed balance equal to the signed sum of
	// its live GiveTake transactions. Every ledger write keeps it exact.
	Contact struct {
		ID             int64
		OrganizationID int64
		Name           string
		MobileNumber   string
		Balance        decimal.Decimal
	}

	ExpenseCategory struct {
		ID             int64
		OrganizationID int64
		Name           string
		IsDefault      bool
	}

	// Transaction is a closed tagged union over the two variants.
	// Direction is set only when Kind is KindGiveTake, CategoryID only
	// when Kind is KindExpense.
	Transaction struct {
		ID         int64
		ContactID  int64
		Kind       Kind
		Amount     decimal.Decimal
		Notes      string
		OccurredAt time.Time
		Direction  Direction
		CategoryID int64
	}
)

var mobileNumberPattern = regexp.MustCompile(`^[0-9]{10}$`)

// BalanceEffect returns the signed delta this transaction applies to its
// contact's cached balance. Expense transactions never touch a balance.
// Deletion applies the negation of this value, so the reversal is always
// the exact inverse of the creation effect.
func (t Transaction) BalanceEffect() decimal.Decimal {
	if t.Kind != KindGiveTake {
		return decimal.Zero
	}
	if t.Direction == DirectionGive {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.ContactID == 0 {
		return fmt.Errorf("%w: contact is required", ErrInvalidArgument)
	}
	switch t.Kind {
	case KindGiveTake:
		if t.Direction != DirectionGive && t.Direction != DirectionTake {
			return fmt.Errorf("%w: direction must be GIVE or TAKE", ErrInvalidArgument)
		}
		if t.CategoryID != 0 {
			return fmt.Errorf("%w: give/take transactions carry no category", ErrInvalidArgument)
		}
	case KindExpense:
		if t.CategoryID == 0 {
			return fmt.Errorf("%w: expense category is required", ErrInvalidArgument)
		}
		if t.Direction != "" {
			return fmt.Errorf("%w: expense transactions carry no direction", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidArgument, t.Kind)
	}
	return nil
}

func (o Organization) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: organization name is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(o.Currency) == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(o.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrInvalidArgument)
	}
	return nil
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: contact name is required", ErrInvalidArgument)
	}
	if !mobileNumberPattern.MatchString(c.MobileNumber) {
		return fmt.Errorf("%w: mobile number must be 10 digits", ErrInvalidArgument)
	}
	if c.Balance.IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", ErrInvalidAmount)
	}
	return nil
}

func (ec ExpenseCategory) Validate() error {
	name := strings.TrimSpace(ec.Name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidArgument)
	}
	if len(name) < 2 || len(name) > 50 {
		return fmt.Errorf("%w: category name must be between 2 and 50 characters", ErrInvalidArgument)
	}
	return nil
}

// ParseDirection maps a request string to a Direction tag.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DirectionGive):
		return DirectionGive, nil
	case string(DirectionTake):
		return DirectionTake, nil
	default:
		return "", fmt.Errorf("%w: direction must be GIVE or TAKE", ErrInvalidArgument)
	}
}
