// Package report reduces the derived ledger into account balances, dashboard
// totals and the balance sheet.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/finance"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Compile-time interface check
var _ interfaces.ReportService = (*Service)(nil)

// Service implements ReportService
type Service struct {
	records interfaces.RecordService
	ledger  interfaces.LedgerService
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new report service
func NewService(records interfaces.RecordService, ledger interfaces.LedgerService, logger *common.Logger) *Service {
	return &Service{
		records: records,
		ledger:  ledger,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock that resolves "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return common.TruncateDay(s.now())
}

// load snapshots the records and derives the full, unfiltered ledger.
func (s *Service) load(ctx context.Context) (*models.RecordSet, []models.Transaction, error) {
	set, err := s.records.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load records: %w", err)
	}
	return set, s.ledger.DeriveFrom(set), nil
}

// AccountBalance is the account's position as of asOf (today when zero).
// models.UnassignedAccountID selects the unassigned bucket.
func (s *Service) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*models.AccountBalance, error) {
	if asOf.IsZero() {
		asOf = s.today()
	}
	set, txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range balances(set, txs, asOf) {
		if b.AccountID == accountID {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("account '%s': %w", accountID, interfaces.ErrRecordNotFound)
}

// AccountBalances returns every account's balance and the unassigned bucket, last.
func (s *Service) AccountBalances(ctx context.Context, asOf time.Time) ([]models.AccountBalance, error) {
	if asOf.IsZero() {
		asOf = s.today()
	}
	set, txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return balances(set, txs, asOf), nil
}

// DashboardTotals computes the at-a-glance KPIs. Invested capital and
// liabilities ignore the window; income, expenses and net P&L respect it.
func (s *Service) DashboardTotals(ctx context.Context, window models.DateWindow) (*models.DashboardTotals, error) {
	set, txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()

	totals := &models.DashboardTotals{Window: window}
	for _, inv := range set.Investments {
		totals.TotalInvested += inv.Principal()
	}

	var windowed []models.Transaction
	for _, t := range txs {
		if !window.Contains(t.Date) {
			continue
		}
		windowed = append(windowed, t)
		switch t.Kind {
		case models.KindIncome:
			totals.TotalIncome += t.Inflow
		case models.KindExpense:
			totals.TotalExpenses += t.Outflow
		}
	}

	payments := set.PaymentsByLoan()
	for _, loan := range set.Loans {
		totals.CurrentLiabilities += finance.AmortizeLoan(loan, payments[loan.ID], today).Liability(today)
	}

	totals.TotalInvested = finance.Round2(totals.TotalInvested)
	totals.TotalIncome = finance.Round2(totals.TotalIncome)
	totals.TotalExpenses = finance.Round2(totals.TotalExpenses)
	totals.CurrentLiabilities = finance.Round2(totals.CurrentLiabilities)
	totals.NetWorth = finance.Round2(totals.TotalInvested - totals.CurrentLiabilities)
	totals.NetPL = Aggregate(windowed).Net

	s.logger.Debug().
		Float64("net_worth", totals.NetWorth).
		Float64("net_pl", totals.NetPL).
		Msg("Dashboard totals computed")
	return totals, nil
}

// BalanceSheet values the position as of asOf (today when zero), with the
// income statement and cash flow for [from, asOf].
func (s *Service) BalanceSheet(ctx context.Context, asOf, from time.Time) (*models.BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = s.today()
	}
	set, txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sheet := &models.BalanceSheet{AsOf: asOf, From: from}
	sheet.Assets = assets(set, balances(set, txs, asOf), asOf)
	sheet.Liabilities = liabilities(set, asOf)
	sheet.Equity = models.Equity{NetWorth: finance.Round2(sheet.Assets.Total - sheet.Liabilities.Total)}
	sheet.IncomeStatement, sheet.CashFlow = statements(txs, models.DateWindow{From: from, To: asOf})
	sheet.Check = check(sheet.Assets, sheet.Liabilities, sheet.Equity)

	if !sheet.Check.Balanced {
		s.logger.Warn().
			Float64("difference", sheet.Check.Difference).
			Str("as_of", common.FormatDate(asOf)).
			Msg("Balance sheet does not balance")
	}
	return sheet, nil
}
