package report

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/finance"
	"github.com/bobmcallan/tally/internal/models"
)

// balanceTolerance is how far the balance-sheet identity may drift before
// the sheet is reported as unbalanced.
const balanceTolerance = 0.01

// Aggregate sums inflows and outflows. Informational entries are skipped.
func Aggregate(txs []models.Transaction) models.AggregateTotals {
	var in, out float64
	for _, t := range txs {
		if t.Informational {
			continue
		}
		in += t.Inflow
		out += t.Outflow
	}
	in, out = finance.Round2(in), finance.Round2(out)
	return models.AggregateTotals{
		InflowTotal:  in,
		OutflowTotal: out,
		Net:          finance.Round2(in - out),
	}
}

// balances computes every account's balance as of asOf, plus an unassigned
// bucket. Undated and informational entries are ignored.
func balances(set *models.RecordSet, txs []models.Transaction, asOf time.Time) []models.AccountBalance {
	byID := make(map[string]*models.AccountBalance, len(set.Accounts)+1)
	order := make([]string, 0, len(set.Accounts)+1)
	for _, a := range set.Accounts {
		name := a.Name
		if name == "" {
			name = a.ID
		}
		byID[a.ID] = &models.AccountBalance{AccountID: a.ID, AccountName: name, AsOf: asOf}
		order = append(order, a.ID)
	}
	byID[models.UnassignedAccountID] = &models.AccountBalance{
		AccountID:   models.UnassignedAccountID,
		AccountName: models.UnassignedAccountName,
		AsOf:        asOf,
	}
	order = append(order, models.UnassignedAccountID)

	for _, t := range txs {
		if t.Informational || t.Date.IsZero() || t.Date.After(asOf) {
			continue
		}
		key := t.AccountID
		if key == "" {
			key = models.UnassignedAccountID
		}
		b, ok := byID[key]
		if !ok {
			continue
		}
		b.Inflows += t.Inflow
		b.Outflows += t.Outflow
		b.TransactionCount++
	}

	out := make([]models.AccountBalance, 0, len(order))
	for _, id := range order {
		b := byID[id]
		b.Inflows = finance.Round2(b.Inflows)
		b.Outflows = finance.Round2(b.Outflows)
		b.Balance = finance.Round2(b.Inflows - b.Outflows)
		out = append(out, *b)
	}
	return out
}

// liabilities is what is owed as of asOf: each started loan's outstanding
// principal plus accrued interest, and pending expenses dated on or before asOf.
func liabilities(set *models.RecordSet, asOf time.Time) models.Liabilities {
	var l models.Liabilities
	payments := set.PaymentsByLoan()

	for _, loan := range set.Loans {
		if !loan.StartDate.IsZero() && loan.StartDate.After(asOf) {
			continue
		}
		owed := finance.AmortizeLoan(loan, payments[loan.ID], asOf).Liability(asOf)
		if owed <= 0 {
			continue
		}
		name := loan.Lender
		if name == "" {
			name = loan.ID
		}
		l.Loans = append(l.Loans, models.BalanceLine{ID: loan.ID, Name: name, Kind: "loan", Amount: owed})
		l.LoansTotal += owed
	}

	for _, exp := range set.Expenses {
		if !exp.IsLiability() || exp.Date.IsZero() || exp.Date.After(asOf) {
			continue
		}
		l.PendingExpenses = append(l.PendingExpenses, models.BalanceLine{
			ID:     exp.ID,
			Name:   exp.Label(),
			Kind:   "expense",
			Amount: exp.Amount,
		})
		l.PendingExpensesTotal += exp.Amount
	}

	sortLines(l.Loans)
	sortLines(l.PendingExpenses)
	l.LoansTotal = finance.Round2(l.LoansTotal)
	l.PendingExpensesTotal = finance.Round2(l.PendingExpensesTotal)
	l.Total = finance.Round2(l.LoansTotal + l.PendingExpensesTotal)
	return l
}

// assets values investments at current value and adds account balances.
func assets(set *models.RecordSet, accounts []models.AccountBalance, asOf time.Time) models.Assets {
	var a models.Assets
	for _, inv := range set.Investments {
		value := finance.Round2(finance.CurrentValue(inv, asOf))
		if value <= 0 {
			continue
		}
		name := inv.Name
		if name == "" {
			name = inv.ID
		}
		a.Investments = append(a.Investments, models.BalanceLine{ID: inv.ID, Name: name, Kind: string(inv.Type), Amount: value})
		a.InvestmentsTotal += value
	}
	for _, b := range accounts {
		if b.AccountID == models.UnassignedAccountID && b.TransactionCount == 0 {
			continue
		}
		a.Accounts = append(a.Accounts, models.BalanceLine{ID: b.AccountID, Name: b.AccountName, Kind: "account", Amount: b.Balance})
		a.AccountsTotal += b.Balance
	}
	sortLines(a.Investments)
	a.InvestmentsTotal = finance.Round2(a.InvestmentsTotal)
	a.AccountsTotal = finance.Round2(a.AccountsTotal)
	a.Total = finance.Round2(a.InvestmentsTotal + a.AccountsTotal)
	return a
}

// statements builds the income statement and cash-flow partition for the window.
func statements(txs []models.Transaction, window models.DateWindow) (models.IncomeStatement, models.CashFlow) {
	var is models.IncomeStatement
	var cf models.CashFlow

	for _, t := range txs {
		if t.Informational || !window.Contains(t.Date) {
			continue
		}
		switch t.Kind {
		case models.KindIncome:
			is.Revenue += t.Inflow
		case models.KindExpense:
			is.Expenses += t.Outflow
		}

		section := &cf.Operating
		switch {
		case t.Kind.IsInvesting():
			section = &cf.Investing
		case t.Kind.IsFinancing():
			section = &cf.Financing
		}
		section.Inflow += t.Inflow
		section.Outflow += t.Outflow
	}

	is.Revenue = finance.Round2(is.Revenue)
	is.Expenses = finance.Round2(is.Expenses)
	is.NetIncome = finance.Round2(is.Revenue - is.Expenses)

	for _, s := range []*models.CashFlowSection{&cf.Operating, &cf.Investing, &cf.Financing} {
		s.Inflow = finance.Round2(s.Inflow)
		s.Outflow = finance.Round2(s.Outflow)
		s.Net = finance.Round2(s.Inflow - s.Outflow)
	}
	cf.Total = finance.Round2(cf.Operating.Net + cf.Investing.Net + cf.Financing.Net)
	return is, cf
}

func check(a models.Assets, l models.Liabilities, e models.Equity) models.BalanceCheck {
	diff := finance.Round2(a.Total - (l.Total + e.NetWorth))
	return models.BalanceCheck{Difference: diff, Balanced: math.Abs(diff) < balanceTolerance}
}

// sortLines orders lines largest first, then by name.
func sortLines(lines []models.BalanceLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Amount != lines[j].Amount {
			return lines[i].Amount > lines[j].Amount
		}
		return lines[i].Name < lines[j].Name
	})
}
