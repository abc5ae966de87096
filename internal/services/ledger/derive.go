package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/finance"
	"github.com/bobmcallan/tally/internal/models"
)

// Category prefixes. A ledger category is the prefix and a label joined by categorySep.
const (
	CategoryIncome             = "Income"
	CategoryExpense            = "Expense"
	CategoryInvestment         = "Investment"
	CategoryInvestmentInterest = "Investment Interest"
	CategoryInvestmentMaturity = "Investment Maturity"
	CategoryInvestmentCashout  = "Investment Cashout"
	CategoryLoan               = "Loan"
	CategoryLoanPrincipal      = "Loan Principal"
	CategoryInterestExpense    = "Interest Expense"
)

// Source subtypes used in transaction ids.
const (
	subtypeIncome    = "income"
	subtypeExpense   = "expense"
	subtypePrincipal = "principal"
	subtypeInterest  = "interest"
	subtypeMaturity  = "maturity"
	subtypeCashout   = "cashout"
	subtypeLoan      = "loan"
	subtypeOrphan    = "orphan"
)

const categorySep = " — "

func category(prefix, label string) string {
	return prefix + categorySep + label
}

// transactionID is "<store>:<id>:<subtype>" with an optional sequence.
func transactionID(store models.Collection, id, subtype string, n int) string {
	if n > 0 {
		return fmt.Sprintf("%s:%s:%s:%d", store, id, subtype, n)
	}
	return fmt.Sprintf("%s:%s:%s", store, id, subtype)
}

// recordTime is the record's timestamp, else its creation time.
func recordTime(ts, createdAt time.Time) time.Time {
	if !ts.IsZero() {
		return ts
	}
	return createdAt
}

// deriver accumulates the entries for one record set.
type deriver struct {
	out []models.Transaction
}

func (d *deriver) emit(t models.Transaction, ref models.AccountRef) {
	t.AccountID = ref.AssignedID()
	t.AccountName = ref.DisplayName()
	d.out = append(d.out, t)
}

// Derive produces every ledger entry for the record set, sorted newest first.
// It is pure: identical inputs give identical output.
func Derive(set *models.RecordSet) []models.Transaction {
	if set == nil {
		return nil
	}
	d := &deriver{}
	for _, inc := range set.Income {
		d.income(inc)
	}
	for _, exp := range set.Expenses {
		d.expense(exp)
	}
	for _, inv := range set.Investments {
		d.investment(inv)
	}
	d.loans(set)
	Sort(d.out)
	return d.out
}

func (d *deriver) income(inc models.Income) {
	d.emit(models.Transaction{
		ID:        transactionID(models.CollectionIncome, inc.ID, subtypeIncome, 0),
		Date:      inc.Date,
		Timestamp: recordTime(inc.Timestamp, inc.CreatedAt),
		Category:  category(CategoryIncome, inc.Label()),
		Kind:      models.KindIncome,
		Inflow:    inc.Amount,
		Notes:     inc.Notes,
		Source:    models.SourceRef{Store: models.CollectionIncome, ID: inc.ID, Subtype: subtypeIncome},
	}, inc.Account)
}

func (d *deriver) expense(exp models.Expense) {
	d.emit(models.Transaction{
		ID:        transactionID(models.CollectionExpenses, exp.ID, subtypeExpense, 0),
		Date:      exp.Date,
		Timestamp: recordTime(exp.Timestamp, exp.CreatedAt),
		Category:  category(CategoryExpense, exp.Label()),
		Kind:      models.KindExpense,
		Outflow:   exp.Amount,
		Notes:     exp.Notes,
		Source:    models.SourceRef{Store: models.CollectionExpenses, ID: exp.ID, Subtype: subtypeExpense},
	}, exp.Account)
}

func (d *deriver) investment(inv models.Investment) {
	ts := recordTime(inv.Timestamp, inv.CreatedAt)
	label := string(inv.Type)
	base := models.Transaction{Timestamp: ts, Notes: inv.Notes}
	src := func(subtype string) models.SourceRef {
		return models.SourceRef{Store: models.CollectionInvestments, ID: inv.ID, Subtype: subtype}
	}

	principal := base
	principal.ID = transactionID(models.CollectionInvestments, inv.ID, subtypePrincipal, 0)
	principal.Date = inv.StartDate
	principal.Category = category(CategoryInvestment, label)
	principal.Kind = models.KindInvestment
	principal.Outflow = inv.Principal()
	principal.Source = src(subtypePrincipal)
	d.emit(principal, inv.Account)

	credit := inv.CreditAccount()
	cashout := func() {
		t := base
		t.ID = transactionID(models.CollectionInvestments, inv.ID, subtypeCashout, 0)
		t.Date = inv.CashoutDate
		t.Category = category(CategoryInvestmentCashout, label)
		t.Kind = models.KindInvestmentCashout
		t.Inflow = inv.CashoutAmount
		t.Source = src(subtypeCashout)
		d.emit(t, credit)
	}

	f, ok := inv.FixedTerm()
	if !ok {
		if inv.HasCashout() {
			cashout()
		}
		return
	}

	maturity := finance.MaturityDate(inv)
	closedEarly := inv.HasCashout() && (maturity.IsZero() || inv.CashoutDate.Before(maturity))

	if monthly := finance.MonthlyAccrual(f); monthly > 0 && !inv.StartDate.IsZero() {
		for m := 1; m <= f.TenureMonths; m++ {
			on := common.AddMonths(inv.StartDate, m)
			if closedEarly && on.After(inv.CashoutDate) {
				break
			}
			t := base
			t.ID = transactionID(models.CollectionInvestments, inv.ID, subtypeInterest, m)
			t.Date = on
			t.Category = category(CategoryInvestmentInterest, label)
			t.Kind = models.KindInvestmentInterest
			t.Inflow = monthly
			t.Source = src(subtypeInterest)
			t.Informational = true
			d.emit(t, credit)
		}
	}

	if closedEarly {
		cashout()
		return
	}
	if maturity.IsZero() {
		return
	}
	t := base
	t.ID = transactionID(models.CollectionInvestments, inv.ID, subtypeMaturity, 0)
	t.Date = maturity
	t.Category = category(CategoryInvestmentMaturity, label)
	t.Kind = models.KindInvestmentMaturity
	t.Inflow = finance.CalculateFixedTerm(f).MaturityValue
	t.Source = src(subtypeMaturity)
	d.emit(t, credit)
}

func (d *deriver) loans(set *models.RecordSet) {
	byLoan := set.PaymentsByLoan()
	known := make(map[string]bool, len(set.Loans))

	for _, loan := range set.Loans {
		known[loan.ID] = true
		lender := loan.Lender
		if lender == "" {
			lender = "Unknown"
		}
		d.emit(models.Transaction{
			ID:        transactionID(models.CollectionLoans, loan.ID, subtypeLoan, 0),
			Date:      loan.StartDate,
			Timestamp: recordTime(loan.Timestamp, loan.CreatedAt),
			Category:  category(CategoryLoan, lender),
			Kind:      models.KindLoan,
			Inflow:    loan.AmountBorrowed,
			Notes:     loan.Notes,
			Source:    models.SourceRef{Store: models.CollectionLoans, ID: loan.ID, Subtype: subtypeLoan},
		}, loan.Account)

		am := finance.AmortizeLoan(loan, byLoan[loan.ID], time.Time{})
		for _, app := range am.Applications {
			p := app.Payment
			ref := paymentAccount(p, loan)
			ts := recordTime(p.Timestamp, p.CreatedAt)
			if app.Principal > 0 {
				d.emit(models.Transaction{
					ID:        transactionID(models.CollectionLoanPayments, p.ID, subtypePrincipal, 0),
					Date:      p.Date,
					Timestamp: ts,
					Category:  CategoryLoanPrincipal,
					Kind:      models.KindLoanPrincipal,
					Outflow:   app.Principal,
					Notes:     p.Notes,
					Source:    models.SourceRef{Store: models.CollectionLoanPayments, ID: p.ID, Subtype: subtypePrincipal},
				}, ref)
			}
			if app.Interest > 0 {
				d.emit(models.Transaction{
					ID:        transactionID(models.CollectionLoanPayments, p.ID, subtypeInterest, 0),
					Date:      p.Date,
					Timestamp: ts,
					Category:  CategoryInterestExpense,
					Kind:      models.KindLoanInterest,
					Outflow:   app.Interest,
					Notes:     p.Notes,
					Source:    models.SourceRef{Store: models.CollectionLoanPayments, ID: p.ID, Subtype: subtypeInterest},
				}, ref)
			}
		}
	}

	// Payments whose loan was deleted still left the account.
	for _, p := range set.LoanPayments {
		if known[p.LoanID] || p.Amount <= 0 {
			continue
		}
		d.emit(models.Transaction{
			ID:        transactionID(models.CollectionLoanPayments, p.ID, subtypeOrphan, 0),
			Date:      p.Date,
			Timestamp: recordTime(p.Timestamp, p.CreatedAt),
			Category:  CategoryLoanPrincipal,
			Kind:      models.KindLoanPrincipal,
			Outflow:   finance.Round2(p.Amount),
			Notes:     p.Notes,
			Source:    models.SourceRef{Store: models.CollectionLoanPayments, ID: p.ID, Subtype: subtypeOrphan},
		}, p.Account)
	}
}

// paymentAccount is the payment's own account when it names one, else the loan's.
func paymentAccount(p models.LoanPayment, loan models.Loan) models.AccountRef {
	if p.AccountID != "" {
		return p.Account
	}
	return loan.Account
}

// Sort orders entries newest first: timestamp desc, date desc, category asc,
// then id so the order is total.
func Sort(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.ID < b.ID
	})
}

// Filter keeps entries inside the window and, when set, on the account.
func Filter(txs []models.Transaction, q models.LedgerQuery) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if !q.Contains(t.Date) {
			continue
		}
		if q.AccountID != "" && t.AccountID != q.AccountID {
			continue
		}
		out = append(out, t)
	}
	return out
}
