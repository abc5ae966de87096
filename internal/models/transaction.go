package models

import (
	"encoding/json"
	"time"
)

// TransactionKind tags a derived ledger entry by what produced it.
type TransactionKind string

const (
	KindIncome             TransactionKind = "income"
	KindExpense            TransactionKind = "expense"
	KindInvestment         TransactionKind = "investment"
	KindInvestmentInterest TransactionKind = "investment_interest"
	KindInvestmentMaturity TransactionKind = "investment_maturity"
	KindInvestmentCashout  TransactionKind = "investment_cashout"
	KindLoan               TransactionKind = "loan"
	KindLoanPrincipal      TransactionKind = "loan_principal"
	KindLoanInterest       TransactionKind = "loan_interest"
)

// IsInvesting reports whether the entry belongs to investing cash flow.
func (k TransactionKind) IsInvesting() bool {
	switch k {
	case KindInvestment, KindInvestmentInterest, KindInvestmentMaturity, KindInvestmentCashout:
		return true
	}
	return false
}

// IsFinancing reports whether the entry belongs to financing cash flow.
// Loan interest is an expense and stays operating.
func (k TransactionKind) IsFinancing() bool {
	switch k {
	case KindLoan, KindLoanPrincipal:
		return true
	}
	return false
}

// SourceRef points back at the record an entry was derived from.
type SourceRef struct {
	Store   Collection `json:"store"`
	ID      string     `json:"id"`
	Subtype string     `json:"subtype,omitempty"`
}

// Transaction is a derived, signed ledger entry. At most one of Inflow and
// Outflow is non-zero. Transactions are regenerated on every query.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Timestamp   time.Time       `json:"timestamp"`
	Category    string          `json:"category"`
	Kind        TransactionKind `json:"kind"`
	Inflow      float64         `json:"inflow"`
	Outflow     float64         `json:"outflow"`
	Notes       string          `json:"notes,omitempty"`
	Source      SourceRef       `json:"source"`
	AccountID   string          `json:"account_id,omitempty"`
	AccountName string          `json:"account_name"`

	// Informational entries (monthly fixed-term accruals) are shown in the
	// ledger but never summed into balances or statements.
	Informational bool `json:"informational,omitempty"`
}

// Net is Inflow minus Outflow.
func (t Transaction) Net() float64 {
	return t.Inflow - t.Outflow
}

// MarshalJSON adds the computed net amount.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Net float64 `json:"net"`
	}{alias: alias(t), Net: t.Net()})
}

// DateWindow is an inclusive calendar-date range. Either bound may be zero.
type DateWindow struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Bounded reports whether either bound is set.
func (w DateWindow) Bounded() bool {
	return !w.From.IsZero() || !w.To.IsZero()
}

// Contains reports whether d falls inside the window. An undated entry is
// only contained by an unbounded window.
func (w DateWindow) Contains(d time.Time) bool {
	if !w.Bounded() {
		return true
	}
	if d.IsZero() {
		return false
	}
	if !w.From.IsZero() && d.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && d.After(w.To) {
		return false
	}
	return true
}

// LedgerQuery filters a ledger derivation.
type LedgerQuery struct {
	DateWindow
	AccountID string `json:"account_id,omitempty"`
}
