package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// StatementLine is one transaction as it appears on a statement.
// Direction is empty for expense lines.
type StatementLine struct {
	TransactionID int64
	Date          time.Time
	Kind          Kind
	Direction     Direction
	Amount        decimal.Decimal
	Notes         string
}

// ContactStatement is the windowed activity of a single contact.
// TotalReceivable and TotalPayable are scoped to the window; NetBalance is
// the contact's current cached balance, deliberately not recomputed from
// the window.
type ContactStatement struct {
	ContactName     string
	Start, End      time.Time
	TotalReceivable decimal.Decimal
	TotalPayable    decimal.Decimal
	NetBalance      decimal.Decimal
	Lines           []StatementLine
}

// OverallStatement aggregates every contact's window totals for an
// organization.
type OverallStatement struct {
	OrganizationName string
	Start, End       time.Time
	TotalReceivables decimal.Decimal
	TotalPayables    decimal.Decimal
	NetPosition      decimal.Decimal
	Contacts         []ContactStatement
}

// ExpenseDetail is one expense transaction inside a category breakdown.
type ExpenseDetail struct {
	Date        time.Time
	Amount      decimal.Decimal
	ContactName string
	Notes       string
}

// ExpenseSummary groups an organization's windowed expenses by category.
// Every category of the organization appears, zero-valued when unused.
type ExpenseSummary struct {
	OrganizationName string
	Start, End       time.Time
	TotalExpenses    decimal.Decimal
	CategoryTotals   []CategoryAmount
	CategoryDetails  map[string][]ExpenseDetail
}

// PeriodBucket is one chronological bucket of a period-wise summary.
type PeriodBucket struct {
	Period     string
	Total      decimal.Decimal
	ByCategory []CategoryAmount
}

// PeriodExpenseSummary buckets windowed expenses by period key, ordered
// chronologically.
type PeriodExpenseSummary struct {
	OrganizationName string
	Start, End       time.Time
	Granularity      string
	Periods          []PeriodBucket
}
