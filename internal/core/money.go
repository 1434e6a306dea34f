// Package core holds the domain model of the ledger: organizations,
// contacts, expense categories and the transaction union, plus the
// validation rules and error taxonomy every other package builds on.
//
// This file contains amount parsing and validation. Amounts are fixed-point
// decimals (shopspring/decimal); floats never enter the ledger.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a positive ledger amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds to two fractional digits half-up. Zero, negative, empty and
// malformed inputs fail with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidAmount, s)
	}
	d = d.Round(2)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount enforces the positive-amount precondition shared by every
// transaction creation path.
func ValidateAmount(d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	return nil
}
