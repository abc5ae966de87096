package portfolio

import (
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/finance"
	"github.com/bobmcallan/tally/internal/models"
)

// Upcoming maturity bucket limits, in days from asOf.
const (
	bucket30 = 30
	bucket60 = 60
	bucket90 = 90
)

// Analyze builds the portfolio snapshot from investment records as of asOf.
func Analyze(investments []models.Investment, asOf time.Time) *models.PortfolioSnapshot {
	snap := &models.PortfolioSnapshot{
		AsOf:       asOf,
		Allocation: allocation(investments),
		Upcoming: models.UpcomingMaturities{
			D30: []models.MaturityItem{},
			D60: []models.MaturityItem{},
			D90: []models.MaturityItem{},
		},
	}
	for _, slice := range snap.Allocation {
		snap.TotalPrincipal += slice.Value
	}
	snap.TotalPrincipal = finance.Round2(snap.TotalPrincipal)

	for _, inv := range investments {
		realized, unrealized := profitAndLoss(inv, asOf)
		snap.RealizedPL += realized
		snap.UnrealizedPL += unrealized

		if item, ok := upcoming(inv, asOf); ok {
			switch {
			case item.DaysUntil <= bucket30:
				snap.Upcoming.D30 = append(snap.Upcoming.D30, item)
			case item.DaysUntil <= bucket60:
				snap.Upcoming.D60 = append(snap.Upcoming.D60, item)
			default:
				snap.Upcoming.D90 = append(snap.Upcoming.D90, item)
			}
		}
	}
	snap.RealizedPL = finance.Round2(snap.RealizedPL)
	snap.UnrealizedPL = finance.Round2(snap.UnrealizedPL)

	for _, bucket := range [][]models.MaturityItem{snap.Upcoming.D30, snap.Upcoming.D60, snap.Upcoming.D90} {
		sortMaturities(bucket)
	}
	return snap
}

// allocation groups principal by investment type, largest first.
func allocation(investments []models.Investment) []models.AllocationSlice {
	byType := make(map[models.InvestmentType]*models.AllocationSlice)
	var total float64
	for _, inv := range investments {
		p := inv.Principal()
		s, ok := byType[inv.Type]
		if !ok {
			s = &models.AllocationSlice{Type: inv.Type}
			byType[inv.Type] = s
		}
		s.Value += p
		s.Count++
		total += p
	}

	out := make([]models.AllocationSlice, 0, len(byType))
	for _, s := range byType {
		s.Value = finance.Round2(s.Value)
		if total > 0 {
			s.Pct = finance.Round2(s.Value / total * 100)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// profitAndLoss splits an investment's gain into realised and unrealised parts.
// Exactly one of the two is non-zero.
func profitAndLoss(inv models.Investment, asOf time.Time) (realized, unrealized float64) {
	if !inv.StartDate.IsZero() && asOf.Before(inv.StartDate) {
		return 0, 0
	}

	if finance.IsRealized(inv, asOf) {
		if f, ok := inv.FixedTerm(); ok {
			if closedEarly(inv) {
				return inv.CashoutAmount - inv.Principal(), 0
			}
			return finance.CalculateFixedTerm(f).InterestEarned, 0
		}
		if inv.HasCashout() {
			return inv.CashoutAmount - inv.Principal(), 0
		}
		return 0, 0
	}

	switch v := inv.Instrument.(type) {
	case models.FixedTerm:
		return 0, finance.AccruedFixedTerm(v, inv.StartDate, asOf).InterestEarned
	case models.UnitPriced:
		if _, pl, ok := finance.PaperValue(v); ok {
			return 0, pl
		}
	}
	return 0, 0
}

// closedEarly reports a fixed-term investment cashed out before its maturity
// date. A cashout on or after maturity carries only what the terms paid.
func closedEarly(inv models.Investment) bool {
	if !inv.HasCashout() {
		return false
	}
	maturity := finance.MaturityDate(inv)
	return !maturity.IsZero() && inv.CashoutDate.Before(maturity)
}

// upcoming reports a fixed-term investment maturing within 90 days of asOf
// that has not been realised or cashed out.
func upcoming(inv models.Investment, asOf time.Time) (models.MaturityItem, bool) {
	f, ok := inv.FixedTerm()
	if !ok || finance.IsRealized(inv, asOf) {
		return models.MaturityItem{}, false
	}
	if inv.HasCashout() && !inv.CashoutDate.After(asOf) {
		return models.MaturityItem{}, false
	}
	maturity := finance.MaturityDate(inv)
	if maturity.IsZero() {
		return models.MaturityItem{}, false
	}
	days := common.DaysBetween(asOf, maturity)
	if days < 0 || days > bucket90 {
		return models.MaturityItem{}, false
	}
	name := inv.Name
	if name == "" {
		name = inv.ID
	}
	return models.MaturityItem{
		InvestmentID:  inv.ID,
		Name:          name,
		Type:          inv.Type,
		MaturityDate:  maturity,
		DaysUntil:     days,
		MaturityValue: finance.CalculateFixedTerm(f).MaturityValue,
	}, true
}

func sortMaturities(items []models.MaturityItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DaysUntil != items[j].DaysUntil {
			return items[i].DaysUntil < items[j].DaysUntil
		}
		return items[i].Name < items[j].Name
	})
}
