package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"khata/internal/core"
	"khata/internal/storage"
)

// Report granularities for period-wise grouping.
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// ReportService is pure read-side aggregation over the transaction history
// and the cached balances the ledger engine maintains.
type ReportService struct {
	repo *storage.Repository
}

func NewReportService(repo *storage.Repository) *ReportService {
	return &ReportService{repo: repo}
}

// ContactBalanceSummary maps every contact name of the organization to its
// current cached balance.
func (s *ReportService) ContactBalanceSummary(ctx context.Context, orgID int64) (map[string]decimal.Decimal, error) {
	if _, err := s.repo.Queries().GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	contacts, err := s.repo.Queries().ListContactsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]decimal.Decimal, len(contacts))
	for _, c := range contacts {
		summary[c.Name] = c.Balance
	}
	return summary, nil
}

// ContactStatement lists a contact's transactions inside [start, end]
// inclusive. TotalReceivable and TotalPayable are window-scoped sums of
// GIVE and TAKE amounts; NetBalance is the contact's current cached
// balance, deliberately the all-time figure rather than a windowed one.
func (s *ReportService) ContactStatement(ctx context.Context, contactID int64, start, end time.Time) (core.ContactStatement, error) {
	contact, err := s.repo.Queries().GetContact(ctx, contactID)
	if err != nil {
		return core.ContactStatement{}, err
	}

	txs, err := s.repo.Queries().ListTransactionsByContactWindow(ctx, contactID, start, end)
	if err != nil {
		return core.ContactStatement{}, err
	}

	stmt := core.ContactStatement{
		ContactName:     contact.Name,
		Start:           start,
		End:             end,
		TotalReceivable: decimal.Zero,
		TotalPayable:    decimal.Zero,
		NetBalance:      contact.Balance,
	}
	for _, t := range txs {
		stmt.Lines = append(stmt.Lines, core.StatementLine{
			TransactionID: t.ID,
			Date:          t.OccurredAt,
			Kind:          t.Kind,
			Direction:     t.Direction,
			Amount:        t.Amount,
			Notes:         t.Notes,
		})
		if t.Kind != core.KindGiveTake {
			continue
		}
		if t.Direction == core.DirectionGive {
			stmt.TotalReceivable = stmt.TotalReceivable.Add(t.Amount)
		} else {
			stmt.TotalPayable = stmt.TotalPayable.Add(t.Amount)
		}
	}

	return stmt, nil
}

// OverallStatement sums every contact's window totals for the organization.
// Per-contact statements are independent reads, so they run concurrently.
func (s *ReportService) OverallStatement(ctx context.Context, orgID int64, start, end time.Time) (core.OverallStatement, error) {
	org, err := s.repo.Queries().GetOrganization(ctx, orgID)
	if err != nil {
		return core.OverallStatement{}, err
	}
	contacts, err := s.repo.Queries().ListContactsByOrganization(ctx, orgID)
	if err != nil {
		return core.OverallStatement{}, err
	}

	statements := make([]core.ContactStatement, len(contacts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, c := range contacts {
		g.Go(func() error {
			stmt, err := s.ContactStatement(gctx, c.ID, start, end)
			if err != nil {
				return fmt.Errorf("statement for contact %d: %w", c.ID, err)
			}
			statements[i] = stmt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.OverallStatement{}, err
	}

	overall := core.OverallStatement{
		OrganizationName: org.Name,
		Start:            start,
		End:              end,
		TotalReceivables: decimal.Zero,
		TotalPayables:    decimal.Zero,
		Contacts:         statements,
	}
	for _, stmt := range statements {
		overall.TotalReceivables = overall.TotalReceivables.Add(stmt.TotalReceivable)
		overall.TotalPayables = overall.TotalPayables.Add(stmt.TotalPayable)
	}
	overall.NetPosition = overall.TotalReceivables.Sub(overall.TotalPayables)

	slog.InfoContext(ctx, "Generated overall statement",
		"organization_id", orgID,
		"contacts", len(contacts),
		"net_position", overall.NetPosition.String())

	return overall, nil
}

// ExpenseSummary groups the organization's windowed expenses by category.
// Every category appears in the totals, zero-valued when unused.
func (s *ReportService) ExpenseSummary(ctx context.Context, orgID int64, start, end time.Time) (core.ExpenseSummary, error) {
	org, err := s.repo.Queries().GetOrganization(ctx, orgID)
	if err != nil {
		return core.ExpenseSummary{}, err
	}
	categories, err := s.repo.Queries().ListCategoriesByOrganization(ctx, orgID)
	if err != nil {
		return core.ExpenseSummary{}, err
	}
	txs, err := s.repo.Queries().ListTransactionsByOrganizationWindow(ctx, orgID, start, end)
	if err != nil {
		return core.ExpenseSummary{}, err
	}

	categoryName := make(map[int64]string, len(categories))
	totals := make(map[string]decimal.Decimal, len(categories))
	details := make(map[string][]core.ExpenseDetail, len(categories))
	for _, c := range categories {
		categoryName[c.ID] = c.Name
		totals[c.Name] = decimal.Zero
		details[c.Name] = []core.ExpenseDetail{}
	}

	contactName, err := s.contactNames(ctx, orgID)
	if err != nil {
		return core.ExpenseSummary{}, err
	}

	totalExpenses := decimal.Zero
	for _, t := range txs {
		if t.Kind != core.KindExpense {
			continue
		}
		name, ok := categoryName[t.CategoryID]
		if !ok {
			// Category deleted after the expense was recorded.
			continue
		}
		totals[name] = totals[name].Add(t.Amount)
		details[name] = append(details[name], core.ExpenseDetail{
			Date:        t.OccurredAt,
			Amount:      t.Amount,
			ContactName: contactName[t.ContactID],
			Notes:       t.Notes,
		})
		totalExpenses = totalExpenses.Add(t.Amount)
	}

	summary := core.ExpenseSummary{
		OrganizationName: org.Name,
		Start:            start,
		End:              end,
		TotalExpenses:    totalExpenses,
		CategoryDetails:  details,
	}
	for _, c := range categories {
		summary.CategoryTotals = append(summary.CategoryTotals, core.CategoryAmount{
			Name:   c.Name,
			Amount: totals[c.Name],
		})
	}

	return summary, nil
}

// PeriodExpenseSummary buckets the organization's windowed expenses into
// chronologically ordered period keys, grouped by category inside each
// bucket. Granularity must be daily, weekly or monthly.
func (s *ReportService) PeriodExpenseSummary(ctx context.Context, orgID int64, start, end time.Time, granularity string) (core.PeriodExpenseSummary, error) {
	granularity = strings.ToLower(strings.TrimSpace(granularity))
	switch granularity {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
	default:
		return core.PeriodExpenseSummary{}, fmt.Errorf(
			"%w: granularity must be 'daily', 'weekly' or 'monthly'", core.ErrInvalidArgument)
	}

	org, err := s.repo.Queries().GetOrganization(ctx, orgID)
	if err != nil {
		return core.PeriodExpenseSummary{}, err
	}
	categories, err := s.repo.Queries().ListCategoriesByOrganization(ctx, orgID)
	if err != nil {
		return core.PeriodExpenseSummary{}, err
	}
	txs, err := s.repo.Queries().ListTransactionsByOrganizationWindow(ctx, orgID, start, end)
	if err != nil {
		return core.PeriodExpenseSummary{}, err
	}

	categoryName := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryName[c.ID] = c.Name
	}

	buckets := make(map[string]map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Kind != core.KindExpense {
			continue
		}
		name, ok := categoryName[t.CategoryID]
		if !ok {
			continue
		}
		key := periodKey(t.OccurredAt, granularity)
		if buckets[key] == nil {
			buckets[key] = make(map[string]decimal.Decimal)
		}
		buckets[key][name] = buckets[key][name].Add(t.Amount)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary := core.PeriodExpenseSummary{
		OrganizationName: org.Name,
		Start:            start,
		End:              end,
		Granularity:      granularity,
	}
	for _, key := range keys {
		bucket := core.PeriodBucket{Period: key, Total: decimal.Zero}
		names := make([]string, 0, len(buckets[key]))
		for name := range buckets[key] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			amount := buckets[key][name]
			bucket.ByCategory = append(bucket.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
			bucket.Total = bucket.Total.Add(amount)
		}
		summary.Periods = append(summary.Periods, bucket)
	}

	return summary, nil
}

// periodKey formats a timestamp into its period bucket key. Keys sort
// chronologically as strings: dates are zero-padded and the weekly key
// leads with the date of the transaction.
func periodKey(t time.Time, granularity string) string {
	switch granularity {
	case GranularityDaily:
		return t.Format("2006-01-02")
	case GranularityWeekly:
		_, week := t.ISOWeek()
		return fmt.Sprintf("%s (Week %d)", t.Format("2006-01-02"), week)
	default: // monthly
		return t.Format("2006-01")
	}
}

func (s *ReportService) contactNames(ctx context.Context, orgID int64) (map[int64]string, error) {
	contacts, err := s.repo.Queries().ListContactsByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}
	return names, nil
}
