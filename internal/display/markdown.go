package display

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/tally/internal/models"
)

// Transactions renders the ledger as a markdown table.
func (f *Formatter) Transactions(txs []models.Transaction) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Transactions (%s)\n\n", f.Count(len(txs))))
	if len(txs) == 0 {
		sb.WriteString("_No transactions._\n")
		return sb.String()
	}
	sb.WriteString("| Date | Category | Account | Inflow | Outflow |\n")
	sb.WriteString("|------|----------|---------|--------|---------|\n")
	for _, t := range txs {
		category := t.Category
		if t.Informational {
			category += " _(accrual)_"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			f.Date(t.Date), category, t.AccountName, f.amountCell(t.Inflow), f.amountCell(t.Outflow)))
	}
	return sb.String()
}

// Balances renders account balances.
func (f *Formatter) Balances(balances []models.AccountBalance) string {
	var sb strings.Builder
	sb.WriteString("# Account Balances\n\n")
	sb.WriteString("| Account | Inflows | Outflows | Balance | Entries |\n")
	sb.WriteString("|---------|---------|---------|---------|---------|\n")
	for _, b := range balances {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			b.AccountName, f.Money(b.Inflows), f.Money(b.Outflows), f.Money(b.Balance), f.Count(b.TransactionCount)))
	}
	return sb.String()
}

// Dashboard renders the KPI summary.
func (f *Formatter) Dashboard(d *models.DashboardTotals) string {
	var sb strings.Builder
	sb.WriteString("# Dashboard\n\n")
	if d.Window.Bounded() {
		sb.WriteString(fmt.Sprintf("**Window:** %s to %s\n\n", f.Date(d.Window.From), f.Date(d.Window.To)))
	}
	sb.WriteString(fmt.Sprintf("**Total Invested:** %s\n", f.Money(d.TotalInvested)))
	sb.WriteString(fmt.Sprintf("**Income:** %s\n", f.Money(d.TotalIncome)))
	sb.WriteString(fmt.Sprintf("**Expenses:** %s\n", f.Money(d.TotalExpenses)))
	sb.WriteString(fmt.Sprintf("**Current Liabilities:** %s\n", f.Money(d.CurrentLiabilities)))
	sb.WriteString(fmt.Sprintf("**Net Worth (at principal):** %s\n", f.Money(d.NetWorth)))
	sb.WriteString(fmt.Sprintf("**Net P&L:** %s\n", f.SignedMoney(d.NetPL)))
	return sb.String()
}

// BalanceSheet renders the balance sheet with its statements.
func (f *Formatter) BalanceSheet(s *models.BalanceSheet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Balance Sheet as of %s\n\n", f.Date(s.AsOf)))

	sb.WriteString("## Assets\n\n")
	f.lines(&sb, "Investments (current value)", s.Assets.Investments, s.Assets.InvestmentsTotal)
	f.lines(&sb, "Accounts", s.Assets.Accounts, s.Assets.AccountsTotal)
	sb.WriteString(fmt.Sprintf("**Total Assets:** %s\n\n", f.Money(s.Assets.Total)))

	sb.WriteString("## Liabilities\n\n")
	f.lines(&sb, "Loans", s.Liabilities.Loans, s.Liabilities.LoansTotal)
	f.lines(&sb, "Pending Expenses", s.Liabilities.PendingExpenses, s.Liabilities.PendingExpensesTotal)
	sb.WriteString(fmt.Sprintf("**Total Liabilities:** %s\n\n", f.Money(s.Liabilities.Total)))

	sb.WriteString(fmt.Sprintf("## Equity\n\n**Net Worth:** %s\n\n", f.Money(s.Equity.NetWorth)))

	sb.WriteString("## Income Statement\n\n")
	sb.WriteString(fmt.Sprintf("| Revenue | Expenses | Net Income |\n|---------|----------|------------|\n| %s | %s | %s |\n\n",
		f.Money(s.IncomeStatement.Revenue), f.Money(s.IncomeStatement.Expenses), f.SignedMoney(s.IncomeStatement.NetIncome)))

	sb.WriteString("## Cash Flow\n\n")
	sb.WriteString("| Section | Inflow | Outflow | Net |\n")
	sb.WriteString("|---------|--------|---------|-----|\n")
	for _, row := range []struct {
		name string
		s    models.CashFlowSection
	}{
		{"Operating", s.CashFlow.Operating},
		{"Investing", s.CashFlow.Investing},
		{"Financing", s.CashFlow.Financing},
	} {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", row.name, f.Money(row.s.Inflow), f.Money(row.s.Outflow), f.SignedMoney(row.s.Net)))
	}
	sb.WriteString(fmt.Sprintf("| **Total** | | | %s |\n\n", f.SignedMoney(s.CashFlow.Total)))

	if s.Check.Balanced {
		sb.WriteString("Balance check: balanced\n")
	} else {
		sb.WriteString(fmt.Sprintf("Balance check: **off by %s**\n", f.Money(s.Check.Difference)))
	}
	return sb.String()
}

// Portfolio renders the allocation, P&L and upcoming maturities.
func (f *Formatter) Portfolio(p *models.PortfolioSnapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Portfolio as of %s\n\n", f.Date(p.AsOf)))
	sb.WriteString(fmt.Sprintf("**Total Principal:** %s\n", f.Money(p.TotalPrincipal)))
	sb.WriteString(fmt.Sprintf("**Realized P&L:** %s\n", f.SignedMoney(p.RealizedPL)))
	sb.WriteString(fmt.Sprintf("**Unrealized P&L:** %s\n\n", f.SignedMoney(p.UnrealizedPL)))

	sb.WriteString("## Allocation\n\n")
	sb.WriteString("| Type | Value | Weight | Count |\n")
	sb.WriteString("|------|-------|--------|-------|\n")
	for _, a := range p.Allocation {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", a.Type, f.Money(a.Value), f.Percent(a.Pct), f.Count(a.Count)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Upcoming Maturities\n\n")
	buckets := []struct {
		title string
		items []models.MaturityItem
	}{
		{"Next 30 days", p.Upcoming.D30},
		{"31-60 days", p.Upcoming.D60},
		{"61-90 days", p.Upcoming.D90},
	}
	for _, b := range buckets {
		sb.WriteString(fmt.Sprintf("### %s\n\n", b.title))
		if len(b.items) == 0 {
			sb.WriteString("_None._\n\n")
			continue
		}
		for _, item := range b.items {
			sb.WriteString(fmt.Sprintf("- %s (%s) matures %s in %s days: %s\n",
				item.Name, item.Type, f.Date(item.MaturityDate), f.Count(item.DaysUntil), f.Money(item.MaturityValue)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *Formatter) lines(sb *strings.Builder, title string, lines []models.BalanceLine, total float64) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	if len(lines) == 0 {
		sb.WriteString("_None._\n\n")
		return
	}
	sb.WriteString("| Item | Kind | Amount |\n")
	sb.WriteString("|------|------|--------|\n")
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", l.Name, l.Kind, f.Money(l.Amount)))
	}
	sb.WriteString(fmt.Sprintf("| **Subtotal** | | %s |\n\n", f.Money(total)))
}

func (f *Formatter) amountCell(v float64) string {
	if v == 0 {
		return ""
	}
	return f.Money(v)
}
