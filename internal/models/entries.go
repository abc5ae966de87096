package models

import (
	"strings"
	"time"
)

// Income is a single inflow of money.
type Income struct {
	ID        string     `json:"id"`
	Amount    float64    `json:"amount"`
	Date      time.Time  `json:"date"`
	Category  string     `json:"category,omitempty"`
	Source    string     `json:"source,omitempty"`
	AccountID string     `json:"account_id,omitempty"`
	Account   AccountRef `json:"account"`
	Notes     string     `json:"notes,omitempty"`
	Timestamp time.Time  `json:"timestamp,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Label is the category, else the source, else "General".
func (i Income) Label() string {
	return firstNonEmpty(i.Category, i.Source, "General")
}

// Expense status values that mark an expense as still owed.
const (
	ExpensePaid    = "paid"
	ExpensePending = "pending"
	ExpenseUnpaid  = "unpaid"
)

// Expense is a single outflow of money. Status is kept exactly as written.
type Expense struct {
	ID        string     `json:"id"`
	Amount    float64    `json:"amount"`
	Date      time.Time  `json:"date"`
	Category  string     `json:"category,omitempty"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status,omitempty"`
	AccountID string     `json:"account_id,omitempty"`
	Account   AccountRef `json:"account"`
	Notes     string     `json:"notes,omitempty"`
	Timestamp time.Time  `json:"timestamp,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Label is the category, else the title, else "General".
func (e Expense) Label() string {
	return firstNonEmpty(e.Category, e.Title, "General")
}

// IsLiability reports whether the expense is still owed. Only the exact
// spellings Pending/pending/Unpaid/unpaid count; a missing status means paid.
func (e Expense) IsLiability() bool {
	switch e.Status {
	case "Pending", "pending", "Unpaid", "unpaid":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
