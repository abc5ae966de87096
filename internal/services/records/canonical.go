package records

import (
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

// meta carries the store-level fields every canonical model shares.
type meta struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
}

func recordMeta(doc models.Document, rec *models.Record) meta {
	m := meta{id: rec.ID, createdAt: rec.CreatedAt, updatedAt: rec.UpdatedAt}
	if m.id == "" {
		m.id = doc.ID()
	}
	return m
}

func toAccount(doc models.Document, m meta) models.Account {
	acct := models.Account{
		ID:        m.id,
		Name:      str(doc, "name", "title"),
		Type:      accountType(str(doc, "type", "account_type")),
		Currency:  strings.ToUpper(str(doc, "currency")),
		Status:    models.AccountActive,
		CreatedAt: m.createdAt,
		UpdatedAt: m.updatedAt,
	}
	if _, ok := lookup(doc, aliasCreditLimit...); ok {
		limit := amount(doc, aliasCreditLimit...)
		acct.CreditLimit = &limit
	}
	if strings.EqualFold(str(doc, "status"), string(models.AccountArchived)) {
		acct.Status = models.AccountArchived
	}
	return acct
}

func accountType(s string) models.AccountType {
	key := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(s))
	switch key {
	case "checking", "current":
		return models.AccountChecking
	case "savings", "saving":
		return models.AccountSavings
	case "credit_card", "creditcard", "credit":
		return models.AccountCreditCard
	case "investment", "brokerage", "demat":
		return models.AccountInvestment
	case "cash", "wallet":
		return models.AccountCash
	}
	return models.AccountOther
}

func toIncome(doc models.Document, m meta) models.Income {
	return models.Income{
		ID:        m.id,
		Amount:    amount(doc, aliasAmount...),
		Date:      date(doc, aliasDate...),
		Category:  str(doc, "category"),
		Source:    str(doc, "source"),
		AccountID: str(doc, aliasAccountID...),
		Notes:     str(doc, aliasNotes...),
		Timestamp: timestamp(doc, aliasTimestamp...),
		CreatedAt: m.createdAt,
		UpdatedAt: m.updatedAt,
	}
}

func toExpense(doc models.Document, m meta) models.Expense {
	return models.Expense{
		ID:        m.id,
		Amount:    amount(doc, aliasExpenseAmount...),
		Date:      date(doc, aliasDate...),
		Category:  str(doc, "category"),
		Title:     str(doc, "title", "name"),
		Status:    str(doc, "status"),
		AccountID: str(doc, aliasAccountID...),
		Notes:     str(doc, aliasNotes...),
		Timestamp: timestamp(doc, aliasTimestamp...),
		CreatedAt: m.createdAt,
		UpdatedAt: m.updatedAt,
	}
}

func toInvestment(doc models.Document, m meta) models.Investment {
	typ := models.ParseInvestmentType(str(doc, aliasInvestmentType...))
	principal := amount(doc, aliasAmount...)

	inv := models.Investment{
		ID:              m.id,
		Name:            str(doc, "name", "title", "instrument"),
		Type:            typ,
		StartDate:       date(doc, aliasStartDate...),
		MaturityDate:    date(doc, aliasMaturityDate...),
		CashoutAmount:   amount(doc, aliasCashoutAmount...),
		CashoutDate:     date(doc, aliasCashoutDate...),
		StatusHistory:   statusHistory(doc),
		AccountID:       str(doc, aliasAccountID...),
		PayoutAccountID: str(doc, aliasPayoutAccount...),
		Notes:           str(doc, aliasNotes...),
		Timestamp:       timestamp(doc, aliasTimestamp...),
		CreatedAt:       m.createdAt,
		UpdatedAt:       m.updatedAt,
	}

	// An explicit status wins; otherwise the latest history entry.
	if s := str(doc, "status"); s != "" {
		inv.Status = models.ParseInvestmentStatus(s)
	} else if n := len(inv.StatusHistory); n > 0 {
		inv.Status = inv.StatusHistory[n-1].Status
	} else {
		inv.Status = models.StatusCreated
	}

	switch {
	case typ.IsFixedTerm():
		inv.Instrument = models.FixedTerm{
			Principal:          principal,
			Rate:               num(doc, aliasRate...),
			CompoundingPerYear: integer(doc, aliasCompounding...),
			TenureMonths:       integer(doc, aliasTenure...),
			Payout:             models.ParsePayoutMethod(str(doc, aliasPayoutMethod...)),
			PeriodsPerYear:     periodsPerYear(doc),
		}
	case typ.IsMarketLinked():
		u := models.UnitPriced{
			Principal:    principal,
			Units:        num(doc, aliasUnits...),
			UnitCost:     num(doc, aliasUnitCost...),
			CurrentPrice: num(doc, aliasCurrentPrice...),
		}
		if u.Principal == 0 && u.Units > 0 && u.UnitCost > 0 {
			u.Principal = u.Units * u.UnitCost
		}
		inv.Instrument = u
	default:
		inv.Instrument = models.OtherInstrument{Principal: principal}
	}
	return inv
}

func toLoan(doc models.Document, m meta) models.Loan {
	return models.Loan{
		ID:             m.id,
		Lender:         str(doc, "lender", "lender_name", "name"),
		AmountBorrowed: amount(doc, aliasBorrowed...),
		InterestRate:   num(doc, aliasRate...),
		StartDate:      date(doc, aliasStartDate...),
		Status:         str(doc, "status"),
		AccountID:      str(doc, aliasAccountID...),
		Notes:          str(doc, aliasNotes...),
		Timestamp:      timestamp(doc, aliasTimestamp...),
		CreatedAt:      m.createdAt,
		UpdatedAt:      m.updatedAt,
	}
}

func toLoanPayment(doc models.Document, m meta) models.LoanPayment {
	return models.LoanPayment{
		ID:        m.id,
		LoanID:    str(doc, aliasLoanID...),
		Amount:    amount(doc, aliasAmount...),
		Date:      date(doc, aliasDate...),
		AccountID: str(doc, aliasAccountID...),
		Notes:     str(doc, aliasNotes...),
		Timestamp: timestamp(doc, aliasTimestamp...),
		CreatedAt: m.createdAt,
		UpdatedAt: m.updatedAt,
	}
}

// reconcile resolves every account reference against the loaded accounts.
func reconcile(set *models.RecordSet) {
	accounts := make(map[string]models.Account, len(set.Accounts))
	for _, a := range set.Accounts {
		accounts[a.ID] = a
	}
	for i := range set.Income {
		set.Income[i].Account = models.ResolveAccountRef(set.Income[i].AccountID, accounts)
	}
	for i := range set.Expenses {
		set.Expenses[i].Account = models.ResolveAccountRef(set.Expenses[i].AccountID, accounts)
	}
	for i := range set.Investments {
		inv := &set.Investments[i]
		inv.Account = models.ResolveAccountRef(inv.AccountID, accounts)
		inv.PayoutAccount = models.ResolveAccountRef(inv.PayoutAccountID, accounts)
	}
	for i := range set.Loans {
		set.Loans[i].Account = models.ResolveAccountRef(set.Loans[i].AccountID, accounts)
	}
	for i := range set.LoanPayments {
		set.LoanPayments[i].Account = models.ResolveAccountRef(set.LoanPayments[i].AccountID, accounts)
	}
}
