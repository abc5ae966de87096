package finance

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

// daysPerYear is the Actual/365 day-count denominator.
const daysPerYear = 365.0

// AccruedInterest is simple interest on principal over the whole days from
// from to to: principal × rate/100 × days/365. Zero or negative inputs, an
// undated bound, or a reversed window yield 0.
func AccruedInterest(principal, annualRatePct float64, from, to time.Time) float64 {
	if principal <= 0 || annualRatePct <= 0 || from.IsZero() || to.IsZero() {
		return 0
	}
	days := common.DaysBetween(from, to)
	if days <= 0 {
		return 0
	}
	return principal * annualRatePct / 100 * float64(days) / daysPerYear
}

// Breakdown splits a payment into its interest and principal portions.
type Breakdown struct {
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
}

// PaymentBreakdown applies a payment interest-first: the interest accrued on
// outstanding between last and current is paid before any principal.
// Both parts are rounded to cents and sum to the rounded payment.
func PaymentBreakdown(payment, outstanding, annualRatePct float64, last, current time.Time) Breakdown {
	if payment <= 0 {
		return Breakdown{}
	}
	accrued := AccruedInterest(outstanding, annualRatePct, last, current)
	interest := Round2(math.Min(payment, accrued))
	return Breakdown{
		Interest:  interest,
		Principal: math.Max(0, sub2(payment, interest)),
	}
}

// PaymentApplication is one payment walked against a loan.
type PaymentApplication struct {
	Payment          models.LoanPayment `json:"payment"`
	Interest         float64            `json:"interest"`
	Principal        float64            `json:"principal"`
	OutstandingAfter float64            `json:"outstanding_after"`
}

// Amortization is the state of a loan after applying its payments.
type Amortization struct {
	Applications    []PaymentApplication `json:"applications"`
	PrincipalRepaid float64              `json:"principal_repaid"`
	Outstanding     float64              `json:"outstanding"`
	LastDate        time.Time            `json:"last_date"`
	Rate            float64              `json:"rate"`
}

// AmortizeLoan applies payments to the loan oldest-first, seeded with the
// borrowed amount at the loan start date. Payments dated after asOf are
// ignored unless asOf is zero. Outstanding never increases and is clamped
// at zero when payments overpay.
func AmortizeLoan(loan models.Loan, payments []models.LoanPayment, asOf time.Time) Amortization {
	ordered := make([]models.LoanPayment, 0, len(payments))
	for _, p := range payments {
		if !asOf.IsZero() && p.Date.After(asOf) {
			continue
		}
		ordered = append(ordered, p)
	}
	SortPayments(ordered)

	am := Amortization{
		Outstanding: math.Max(0, loan.AmountBorrowed),
		LastDate:    loan.StartDate,
		Rate:        loan.InterestRate,
	}
	for _, p := range ordered {
		bd := PaymentBreakdown(p.Amount, am.Outstanding, loan.InterestRate, am.LastDate, p.Date)
		am.Outstanding = math.Max(0, sub2(am.Outstanding, bd.Principal))
		am.PrincipalRepaid = Round2(am.PrincipalRepaid + bd.Principal)
		if p.Date.After(am.LastDate) {
			am.LastDate = p.Date
		}
		am.Applications = append(am.Applications, PaymentApplication{
			Payment:          p,
			Interest:         bd.Interest,
			Principal:        bd.Principal,
			OutstandingAfter: am.Outstanding,
		})
	}
	return am
}

// AccruedSince is the interest accrued on the outstanding principal from the
// last payment (or loan start) to asOf.
func (am Amortization) AccruedSince(asOf time.Time) float64 {
	return AccruedInterest(am.Outstanding, am.Rate, am.LastDate, asOf)
}

// Liability is outstanding principal plus interest accrued to asOf, in cents.
func (am Amortization) Liability(asOf time.Time) float64 {
	return Round2(am.Outstanding + am.AccruedSince(asOf))
}

// SortPayments orders payments by date, then id, so repeated walks agree.
func SortPayments(payments []models.LoanPayment) {
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Date.Equal(payments[j].Date) {
			return payments[i].Date.Before(payments[j].Date)
		}
		return payments[i].ID < payments[j].ID
	})
}
