package finance

import (
	"math"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

const (
	// DefaultCompoundingPerYear applies when a fixed-term instrument omits it (quarterly).
	DefaultCompoundingPerYear = 4
	// DefaultPeriodsPerYear applies to periodic payout when no frequency is set (quarterly).
	DefaultPeriodsPerYear = 4
)

// FixedTermResult is the valuation of a fixed-term instrument.
// For periodic payout MaturityValue is the principal alone: the interest
// was disbursed along the way.
type FixedTermResult struct {
	MaturityValue  float64 `json:"maturity_value"`
	InterestEarned float64 `json:"interest_earned"`
	PeriodicPayout float64 `json:"periodic_payout,omitempty"`
}

func compounding(f models.FixedTerm) float64 {
	if f.CompoundingPerYear > 0 {
		return float64(f.CompoundingPerYear)
	}
	return DefaultCompoundingPerYear
}

func periodsPerYear(f models.FixedTerm) float64 {
	if f.PeriodsPerYear > 0 && f.PeriodsPerYear <= 12 {
		return float64(f.PeriodsPerYear)
	}
	return DefaultPeriodsPerYear
}

func hasTerms(f models.FixedTerm) bool {
	return f.Principal > 0 && f.Rate > 0 && f.TenureMonths > 0
}

// CalculateFixedTerm values the instrument at maturity.
//
// At maturity: P × (1 + r/n)^(n × years), with interest = value − P.
// Periodic: P × r / periods each period for floor(tenure / (12/periods)) periods.
// Missing principal, rate or tenure yields {P, 0}.
func CalculateFixedTerm(f models.FixedTerm) FixedTermResult {
	if !hasTerms(f) {
		return FixedTermResult{MaturityValue: math.Max(0, f.Principal)}
	}

	if f.Payout == models.PayoutPeriodic {
		ppy := periodsPerYear(f)
		payout := f.Principal * (f.Rate / 100) / ppy
		periods := math.Floor(float64(f.TenureMonths) / (12 / ppy))
		return FixedTermResult{
			MaturityValue:  f.Principal,
			InterestEarned: Round2(payout * periods),
			PeriodicPayout: Round2(payout),
		}
	}

	n := compounding(f)
	years := float64(f.TenureMonths) / 12
	value := Round2(f.Principal * math.Pow(1+f.Rate/100/n, n*years))
	return FixedTermResult{
		MaturityValue:  value,
		InterestEarned: value - f.Principal,
	}
}

// AccruedFixedTerm values the instrument as of asOf, capped at maturity.
// At-maturity instruments compound over the elapsed fraction of the tenure.
// Periodic instruments hold the principal and have paid out every completed period.
func AccruedFixedTerm(f models.FixedTerm, start, asOf time.Time) FixedTermResult {
	if !hasTerms(f) || start.IsZero() || asOf.Before(start) {
		return FixedTermResult{MaturityValue: math.Max(0, f.Principal)}
	}

	months := monthsBetween(start, asOf)
	if months >= f.TenureMonths {
		return CalculateFixedTerm(f)
	}

	if f.Payout == models.PayoutPeriodic {
		ppy := periodsPerYear(f)
		payout := f.Principal * (f.Rate / 100) / ppy
		periods := math.Floor(float64(months) / (12 / ppy))
		return FixedTermResult{
			MaturityValue:  f.Principal,
			InterestEarned: Round2(payout * periods),
			PeriodicPayout: Round2(payout),
		}
	}

	n := compounding(f)
	years := float64(common.DaysBetween(start, asOf)) / daysPerYear
	if limit := float64(f.TenureMonths) / 12; years > limit {
		years = limit
	}
	value := Round2(f.Principal * math.Pow(1+f.Rate/100/n, n*years))
	return FixedTermResult{
		MaturityValue:  value,
		InterestEarned: value - f.Principal,
	}
}

// MonthlyAccrual is the simple monthly interest used for monitoring entries.
func MonthlyAccrual(f models.FixedTerm) float64 {
	if !hasTerms(f) {
		return 0
	}
	return Round2(f.Principal * f.Rate / 100 / 12)
}

// monthsBetween counts whole calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if common.AddMonths(a, months).After(b) {
		months--
	}
	return months
}

// PaperValue is units × current price and the gain over principal. ok is
// false when units or price are non-positive: the value cannot be computed,
// which is distinct from a zero gain.
func PaperValue(u models.UnitPriced) (value, pl float64, ok bool) {
	if u.Units <= 0 || u.CurrentPrice <= 0 {
		return 0, 0, false
	}
	value = Round2(u.Units * u.CurrentPrice)
	return value, value - u.Principal, true
}

// MaturityDate is the explicit maturity date, else start + tenure for
// fixed-term instruments. Zero when neither is known.
func MaturityDate(inv models.Investment) time.Time {
	if !inv.MaturityDate.IsZero() {
		return inv.MaturityDate
	}
	if f, ok := inv.FixedTerm(); ok && f.TenureMonths > 0 && !inv.StartDate.IsZero() {
		return common.AddMonths(inv.StartDate, f.TenureMonths)
	}
	return time.Time{}
}

// RealizationDate is the date that locks in the result for the investment's
// status: maturity for Matured, cashout for CashedOut. Zero otherwise.
func RealizationDate(inv models.Investment) time.Time {
	switch inv.Status {
	case models.StatusMatured:
		return MaturityDate(inv)
	case models.StatusCashedOut:
		if !inv.CashoutDate.IsZero() {
			return inv.CashoutDate
		}
		return MaturityDate(inv)
	}
	return time.Time{}
}

// IsRealized reports whether the investment is Matured or CashedOut with
// the relevant date on or before asOf.
func IsRealized(inv models.Investment, asOf time.Time) bool {
	d := RealizationDate(inv)
	return !d.IsZero() && !d.After(asOf)
}

// CurrentValue is what the investment is worth as an asset on asOf. Once the
// maturity or cashout date has passed the proceeds sit in an account, so the
// investment itself is worth 0.
func CurrentValue(inv models.Investment, asOf time.Time) float64 {
	if !inv.StartDate.IsZero() && asOf.Before(inv.StartDate) {
		return 0
	}
	if inv.HasCashout() && !inv.CashoutDate.After(asOf) {
		return 0
	}

	switch v := inv.Instrument.(type) {
	case models.FixedTerm:
		if m := MaturityDate(inv); !m.IsZero() && !m.After(asOf) {
			return 0
		}
		return AccruedFixedTerm(v, inv.StartDate, asOf).MaturityValue
	case models.UnitPriced:
		if value, _, ok := PaperValue(v); ok {
			return value
		}
		return math.Max(0, v.Principal)
	}
	return math.Max(0, inv.Principal())
}
