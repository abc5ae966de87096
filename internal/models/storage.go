package models

import "time"

// Collection names a record-store collection.
type Collection string

const (
	CollectionIncome       Collection = "income"
	CollectionExpenses     Collection = "expenses"
	CollectionInvestments  Collection = "investments"
	CollectionLoans        Collection = "loans"
	CollectionLoanPayments Collection = "loan_payments"
	CollectionAccounts     Collection = "accounts"
	CollectionAudit        Collection = "audit"
)

// Collections lists every collection the store accepts.
var Collections = []Collection{
	CollectionIncome,
	CollectionExpenses,
	CollectionInvestments,
	CollectionLoans,
	CollectionLoanPayments,
	CollectionAccounts,
	CollectionAudit,
}

// SourceCollections are the collections the ledger derives from (everything except audit).
var SourceCollections = []Collection{
	CollectionAccounts,
	CollectionIncome,
	CollectionExpenses,
	CollectionInvestments,
	CollectionLoans,
	CollectionLoanPayments,
}

// IsCollection reports whether name is a known collection.
func IsCollection(name string) bool {
	for _, c := range Collections {
		if string(c) == name {
			return true
		}
	}
	return false
}

// Record is a generic document record for all user finance data.
// Value holds the JSON document exactly as it was written.
type Record struct {
	UserID     string     `json:"user_id"`
	Collection Collection `json:"collection"`
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
