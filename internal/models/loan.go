package models

import "time"

// Loan is money borrowed from a lender, modelled as cash received on StartDate.
type Loan struct {
	ID             string     `json:"id"`
	Lender         string     `json:"lender"`
	AmountBorrowed float64    `json:"amount_borrowed"`
	InterestRate   float64    `json:"interest_rate"`
	StartDate      time.Time  `json:"start_date"`
	Status         string     `json:"status,omitempty"`
	AccountID      string     `json:"account_id,omitempty"`
	Account        AccountRef `json:"account"`
	Notes          string     `json:"notes,omitempty"`
	Timestamp      time.Time  `json:"timestamp,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LoanPayment is a repayment applied against a loan's outstanding principal.
type LoanPayment struct {
	ID        string     `json:"id"`
	LoanID    string     `json:"loan_id"`
	Amount    float64    `json:"amount"`
	Date      time.Time  `json:"date"`
	AccountID string     `json:"account_id,omitempty"`
	Account   AccountRef `json:"account"`
	Notes     string     `json:"notes,omitempty"`
	Timestamp time.Time  `json:"timestamp,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RecordSet is every source collection loaded and canonicalised in one pass.
type RecordSet struct {
	Accounts     []Account     `json:"accounts"`
	Income       []Income      `json:"income"`
	Expenses     []Expense     `json:"expenses"`
	Investments  []Investment  `json:"investments"`
	Loans        []Loan        `json:"loans"`
	LoanPayments []LoanPayment `json:"loan_payments"`
}

// PaymentsByLoan groups loan payments by loan id, preserving input order.
func (rs *RecordSet) PaymentsByLoan() map[string][]LoanPayment {
	out := make(map[string][]LoanPayment)
	for _, p := range rs.LoanPayments {
		out[p.LoanID] = append(out[p.LoanID], p)
	}
	return out
}
