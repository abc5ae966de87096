package models

import "time"

// AccountType classifies an account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountInvestment AccountType = "investment"
	AccountCash       AccountType = "cash"
	AccountOther      AccountType = "other"
)

// AccountStatus is active or archived.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountArchived AccountStatus = "archived"
)

// Account is a user-owned money container referenced by id from other records.
type Account struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        AccountType   `json:"type"`
	Currency    string        `json:"currency,omitempty"`
	CreditLimit *float64      `json:"credit_limit,omitempty"`
	Status      AccountStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// UnassignedAccountName labels entries with no resolvable account.
const UnassignedAccountName = "Unassigned"

// UnassignedAccountID keys the bucket of entries with no resolved account.
const UnassignedAccountID = "unassigned"

// AccountRefState describes how a record's account reference resolved.
type AccountRefState string

const (
	// RefAssigned points at an account that exists.
	RefAssigned AccountRefState = "assigned"
	// RefDangling names an account id that no longer (or never did) exist.
	RefDangling AccountRefState = "dangling"
	// RefUnassigned carries no account id at all.
	RefUnassigned AccountRefState = "unassigned"
)

// AccountRef is a reconciled account reference. Dangling references keep the
// raw id for provenance but behave as unassigned everywhere else.
type AccountRef struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	State AccountRefState `json:"state"`
}

// ResolveAccountRef reconciles rawID against the loaded accounts.
func ResolveAccountRef(rawID string, accounts map[string]Account) AccountRef {
	if rawID == "" {
		return AccountRef{Name: UnassignedAccountName, State: RefUnassigned}
	}
	acct, ok := accounts[rawID]
	if !ok {
		return AccountRef{ID: rawID, Name: UnassignedAccountName, State: RefDangling}
	}
	name := acct.Name
	if name == "" {
		name = acct.ID
	}
	return AccountRef{ID: acct.ID, Name: name, State: RefAssigned}
}

// AssignedID returns the account id only when the reference resolved.
func (r AccountRef) AssignedID() string {
	if r.State == RefAssigned {
		return r.ID
	}
	return ""
}

// DisplayName returns the account name, or "Unassigned".
func (r AccountRef) DisplayName() string {
	if r.State == RefAssigned {
		return r.Name
	}
	return UnassignedAccountName
}
