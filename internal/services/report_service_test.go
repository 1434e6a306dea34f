package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"khata/internal/core"
)

func window() (time.Time, time.Time) {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
}

func TestContactStatementTotals(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	contact := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	ledger := NewLedgerService(repo, nil)
	reports := NewReportService(repo)
	ctx := context.Background()

	if _, err := ledger.CreateGiveTake(ctx, contact.ID, dec("500"), core.DirectionGive, "loan"); err != nil {
		t.Fatalf("give: %v", err)
	}
	if _, err := ledger.CreateGiveTake(ctx, contact.ID, dec("200"), core.DirectionTake, "repayment"); err != nil {
		t.Fatalf("take: %v", err)
	}

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)
	stmt, err := reports.ContactStatement(ctx, contact.ID, start, end)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}

	if !stmt.TotalReceivable.Equal(dec("500")) {
		t.Fatalf("expected totalReceivable 500, got %s", stmt.TotalReceivable)
	}
	if !stmt.TotalPayable.Equal(dec("200")) {
		t.Fatalf("expected totalPayable 200, got %s", stmt.TotalPayable)
	}
	if !stmt.NetBalance.Equal(dec("300")) {
		t.Fatalf("expected netBalance 300, got %s", stmt.NetBalance)
	}
	if len(stmt.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(stmt.Lines))
	}
}

// NetBalance stays the all-time cached balance even when the window
// excludes part of the history.
func TestContactStatementNetBalanceIsAllTime(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	contact := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	ledger := NewLedgerService(repo, nil)
	reports := NewReportService(repo)
	ctx := context.Background()

	if _, err := ledger.CreateGiveTake(ctx, contact.ID, dec("500"), core.DirectionGive, ""); err != nil {
		t.Fatalf("give: %v", err)
	}

	// Window in the past: no lines, but the net figure still reflects
	// the current balance.
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC)
	stmt, err := reports.ContactStatement(ctx, contact.ID, start, end)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(stmt.Lines) != 0 {
		t.Fatalf("expected empty window, got %d lines", len(stmt.Lines))
	}
	if !stmt.TotalReceivable.IsZero() || !stmt.TotalPayable.IsZero() {
		t.Fatalf("window totals should be zero, got %s / %s", stmt.TotalReceivable, stmt.TotalPayable)
	}
	if !stmt.NetBalance.Equal(dec("500")) {
		t.Fatalf("netBalance should be the all-time balance 500, got %s", stmt.NetBalance)
	}
}

func TestContactBalanceSummaryIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	ravi := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	_ = seedContact(t, repo, org.ID, "Meena", "9876500000")
	ledger := NewLedgerService(repo, nil)
	reports := NewReportService(repo)
	ctx := context.Background()

	if _, err := ledger.CreateGiveTake(ctx, ravi.ID, dec("150"), core.DirectionGive, ""); err != nil {
		t.Fatalf("give: %v", err)
	}

	first, err := reports.ContactBalanceSummary(ctx, org.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	second, err := reports.ContactBalanceSummary(ctx, org.ID)
	if err != nil {
		t.Fatalf("summary again: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 contacts in both summaries, got %d and %d", len(first), len(second))
	}
	for name, balance := range first {
		if !second[name].Equal(balance) {
			t.Fatalf("summary changed between reads for %s: %s vs %s", name, balance, second[name])
		}
	}
	if !first["Ravi"].Equal(dec("150")) || !first["Meena"].IsZero() {
		t.Fatalf("unexpected balances: %v", first)
	}
}

func TestOverallStatement(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	ravi := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	meena := seedContact(t, repo, org.ID, "Meena", "9876500000")
	ledger := NewLedgerService(repo, nil)
	reports := NewReportService(repo)
	ctx := context.Background()

	if _, err := ledger.CreateGiveTake(ctx, ravi.ID, dec("500"), core.DirectionGive, ""); err != nil {
		t.Fatalf("give: %v", err)
	}
	if _, err := ledger.CreateGiveTake(ctx, meena.ID, dec("300"), core.DirectionGive, ""); err != nil {
		t.Fatalf("give: %v", err)
	}
	if _, err := ledger.CreateGiveTake(ctx, meena.ID, dec("100"), core.DirectionTake, ""); err != nil {
		t.Fatalf("take: %v", err)
	}

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)
	overall, err := reports.OverallStatement(ctx, org.ID, start, end)
	if err != nil {
		t.Fatalf("overall: %v", err)
	}

	if !overall.TotalReceivables.Equal(dec("800")) {
		t.Fatalf("expected receivables 800, got %s", overall.TotalReceivables)
	}
	if !overall.TotalPayables.Equal(dec("100")) {
		t.Fatalf("expected payables 100, got %s", overall.TotalPayables)
	}
	if !overall.NetPosition.Equal(dec("700")) {
		t.Fatalf("expected net position 700, got %s", overall.NetPosition)
	}
	if len(overall.Contacts) != 2 {
		t.Fatalf("expected 2 contact statements, got %d", len(overall.Contacts))
	}
}

func TestExpenseSummary(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	contact := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	rent := categoryByName(t, repo, org.ID, "Rent")
	travel := categoryByName(t, repo, org.ID, "Travel")
	reports := NewReportService(repo)
	ctx := context.Background()

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	seedExpenseAt(t, repo, contact.ID, rent.ID, "50", at)
	seedExpenseAt(t, repo, contact.ID, rent.ID, "50", at.Add(time.Hour))
	seedExpenseAt(t, repo, contact.ID, travel.ID, "20", at.Add(2*time.Hour))

	start, end := window()
	summary, err := reports.ExpenseSummary(ctx, org.ID, start, end)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if !summary.TotalExpenses.Equal(dec("120")) {
		t.Fatalf("expected total 120, got %s", summary.TotalExpenses)
	}

	totals := make(map[string]decimal.Decimal, len(summary.CategoryTotals))
	for _, ct := range summary.CategoryTotals {
		totals[ct.Name] = ct.Amount
	}
	// All nine default categories appear, unused ones at zero.
	if len(totals) != 9 {
		t.Fatalf("expected 9 categories, got %d", len(totals))
	}
	if !totals["Rent"].Equal(dec("100")) {
		t.Fatalf("expected Rent 100, got %s", totals["Rent"])
	}
	if !totals["Travel"].Equal(dec("20")) {
		t.Fatalf("expected Travel 20, got %s", totals["Travel"])
	}
	if !totals["Utilities"].IsZero() {
		t.Fatalf("expected Utilities 0, got %s", totals["Utilities"])
	}

	if got := len(summary.CategoryDetails["Rent"]); got != 2 {
		t.Fatalf("expected 2 Rent details, got %d", got)
	}
	if got := len(summary.CategoryDetails["Utilities"]); got != 0 {
		t.Fatalf("expected no Utilities details, got %d", got)
	}
}

func TestExpenseSummaryWindowing(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	contact := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	rent := categoryByName(t, repo, org.ID, "Rent")
	reports := NewReportService(repo)

	inside := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedExpenseAt(t, repo, contact.ID, rent.ID, "50", inside)
	seedExpenseAt(t, repo, contact.ID, rent.ID, "999", outside)

	start, end := window()
	summary, err := reports.ExpenseSummary(context.Background(), org.ID, start, end)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalExpenses.Equal(dec("50")) {
		t.Fatalf("expected only the in-window expense, got %s", summary.TotalExpenses)
	}
}

func TestPeriodExpenseSummaryMonthly(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	contact := seedContact(t, repo, org.ID, "Ravi", "9876543210")
	rent := categoryByName(t, repo, org.ID, "Rent")
	travel := categoryByName(t, repo, org.ID, "Travel")
	reports := NewReportService(repo)

	seedExpenseAt(t, repo, contact.ID, rent.ID, "50", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	seedExpenseAt(t, repo, contact.ID, travel.ID, "30", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	seedExpenseAt(t, repo, contact.ID, rent.ID, "40", time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))

	start, end := window()
	summary, err := reports.PeriodExpenseSummary(context.Background(), org.ID, start, end, "monthly")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if len(summary.Periods) != 2 {
		t.Fatalf("expected 2 period buckets, got %d", len(summary.Periods))
	}
	jan := summary.Periods[0]
	feb := summary.Periods[1]
	if jan.Period != "2025-01" || feb.Period != "2025-02" {
		t.Fatalf("expected chronological keys 2025-01, 2025-02, got %s, %s", jan.Period, feb.Period)
	}
	if !jan.Total.Equal(dec("80")) {
		t.Fatalf("expected January total 80, got %s", jan.Total)
	}
	if !feb.Total.Equal(dec("40")) {
		t.Fatalf("expected February total 40, got %s", feb.Total)
	}
	if len(jan.ByCategory) != 2 {
		t.Fatalf("expected 2 January categories, got %d", len(jan.ByCategory))
	}
}

func TestPeriodExpenseSummaryInvalidGranularity(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrganization(t, repo, "Sharma Traders")
	reports := NewReportService(repo)

	start, end := window()
	_, err := reports.PeriodExpenseSummary(context.Background(), org.ID, start, end, "hourly")
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPeriodKeys(t *testing.T) {
	at := time.Date(2025, 1, 6, 15, 30, 0, 0, time.UTC) // Monday of ISO week 2
	cases := []struct {
		granularity string
		want        string
	}{
		{GranularityDaily, "2025-01-06"},
		{GranularityMonthly, "2025-01"},
		{GranularityWeekly, "2025-01-06 (Week 2)"},
	}
	for _, tc := range cases {
		if got := periodKey(at, tc.granularity); got != tc.want {
			t.Fatalf("%s expected %q, got %q", tc.granularity, tc.want, got)
		}
	}
}

func TestReportsUnknownOrganization(t *testing.T) {
	repo := newTestRepo(t)
	reports := NewReportService(repo)
	start, end := window()

	if _, err := reports.ContactBalanceSummary(context.Background(), 77); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("balance summary expected ErrNotFound, got %v", err)
	}
	if _, err := reports.ExpenseSummary(context.Background(), 77, start, end); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expense summary expected ErrNotFound, got %v", err)
	}
}
