package models

import "time"

// AggregateTotals sums a list of ledger entries.
type AggregateTotals struct {
	InflowTotal  float64 `json:"inflow_total"`
	OutflowTotal float64 `json:"outflow_total"`
	Net          float64 `json:"net"`
}

// AccountBalance is an account's position as of a date.
type AccountBalance struct {
	AccountID        string    `json:"account_id"`
	AccountName      string    `json:"account_name"`
	AsOf             time.Time `json:"as_of"`
	Balance          float64   `json:"balance"`
	Inflows          float64   `json:"inflows"`
	Outflows         float64   `json:"outflows"`
	TransactionCount int       `json:"transaction_count"`
}

// DashboardTotals are the at-a-glance KPIs for a window. NetWorth here values
// investments at principal; BalanceSheet.Equity.NetWorth uses current value.
type DashboardTotals struct {
	Window             DateWindow `json:"window"`
	TotalInvested      float64    `json:"total_invested"`
	TotalIncome        float64    `json:"total_income"`
	TotalExpenses      float64    `json:"total_expenses"`
	CurrentLiabilities float64    `json:"current_liabilities"`
	NetWorth           float64    `json:"net_worth"`
	NetPL              float64    `json:"net_pl"`
}

// BalanceLine is one item of a balance-sheet section.
type BalanceLine struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

// Assets is the asset side of the balance sheet.
type Assets struct {
	Investments      []BalanceLine `json:"investments"`
	Accounts         []BalanceLine `json:"accounts"`
	InvestmentsTotal float64       `json:"investments_total"`
	AccountsTotal    float64       `json:"accounts_total"`
	Total            float64       `json:"total"`
}

// Liabilities is what is still owed as of the balance-sheet date.
type Liabilities struct {
	Loans                []BalanceLine `json:"loans"`
	PendingExpenses      []BalanceLine `json:"pending_expenses"`
	LoansTotal           float64       `json:"loans_total"`
	PendingExpensesTotal float64       `json:"pending_expenses_total"`
	Total                float64       `json:"total"`
}

// Equity is assets less liabilities.
type Equity struct {
	NetWorth float64 `json:"net_worth"`
}

// IncomeStatement covers the sheet's window.
type IncomeStatement struct {
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetIncome float64 `json:"net_income"`
}

// CashFlowSection totals one cash-flow partition.
type CashFlowSection struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

// CashFlow partitions the window's transactions.
type CashFlow struct {
	Operating CashFlowSection `json:"operating"`
	Investing CashFlowSection `json:"investing"`
	Financing CashFlowSection `json:"financing"`
	Total     float64         `json:"total"`
}

// BalanceCheck is the assets = liabilities + equity identity.
type BalanceCheck struct {
	Difference float64 `json:"difference"`
	Balanced   bool    `json:"balanced"`
}

// BalanceSheet is the formal position as of a date, with statements for
// the window [From, AsOf].
type BalanceSheet struct {
	AsOf            time.Time       `json:"as_of"`
	From            time.Time       `json:"from,omitempty"`
	Assets          Assets          `json:"assets"`
	Liabilities     Liabilities     `json:"liabilities"`
	Equity          Equity          `json:"equity"`
	IncomeStatement IncomeStatement `json:"income_statement"`
	CashFlow        CashFlow        `json:"cash_flow"`
	Check           BalanceCheck    `json:"balance_check"`
}
