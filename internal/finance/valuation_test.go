package finance

import (
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateFixedTerm_AtMaturity(t *testing.T) {
	res := CalculateFixedTerm(models.FixedTerm{
		Principal:          100000,
		Rate:               6,
		TenureMonths:       12,
		CompoundingPerYear: 4,
	})

	assert.Greater(t, res.MaturityValue, 100000.0)
	assert.Equal(t, 106136.36, res.MaturityValue)
	assert.Equal(t, res.MaturityValue-100000, res.InterestEarned)
}

func TestCalculateFixedTerm_DefaultCompounding(t *testing.T) {
	explicit := CalculateFixedTerm(models.FixedTerm{Principal: 10000, Rate: 6, TenureMonths: 12, CompoundingPerYear: 4})
	defaulted := CalculateFixedTerm(models.FixedTerm{Principal: 10000, Rate: 6, TenureMonths: 12})
	assert.Equal(t, explicit, defaulted)
	assert.Equal(t, 10613.64, defaulted.MaturityValue)
}

func TestCalculateFixedTerm_Periodic(t *testing.T) {
	tests := []struct {
		name     string
		ppy      int
		tenure   int
		payout   float64
		interest float64
	}{
		{"quarterly default", 0, 12, 1500, 6000},
		{"monthly", 12, 12, 500, 6000},
		{"annual", 1, 24, 6000, 12000},
		{"partial final quarter", 4, 10, 1500, 4500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateFixedTerm(models.FixedTerm{
				Principal:      100000,
				Rate:           6,
				TenureMonths:   tt.tenure,
				Payout:         models.PayoutPeriodic,
				PeriodsPerYear: tt.ppy,
			})
			assert.Equal(t, 100000.0, res.MaturityValue, "principal only at maturity")
			assert.Equal(t, tt.payout, res.PeriodicPayout)
			assert.Equal(t, tt.interest, res.InterestEarned)
		})
	}
}

func TestCalculateFixedTerm_MissingData(t *testing.T) {
	res := CalculateFixedTerm(models.FixedTerm{Principal: 1000})
	assert.Equal(t, FixedTermResult{MaturityValue: 1000, InterestEarned: 0}, res)

	res = CalculateFixedTerm(models.FixedTerm{Rate: 5, TenureMonths: 12})
	assert.Equal(t, FixedTermResult{}, res)
}

func TestPaperValue(t *testing.T) {
	value, pl, ok := PaperValue(models.UnitPriced{Principal: 5000, Units: 50, UnitCost: 100, CurrentPrice: 120})
	assert.True(t, ok)
	assert.Equal(t, 6000.0, value)
	assert.Equal(t, 1000.0, pl)

	_, _, ok = PaperValue(models.UnitPriced{})
	assert.False(t, ok, "no units or price cannot be valued")

	_, _, ok = PaperValue(models.UnitPriced{Units: 10, CurrentPrice: -1})
	assert.False(t, ok)
}

func TestAccruedFixedTerm(t *testing.T) {
	f := models.FixedTerm{Principal: 10000, Rate: 6, TenureMonths: 12}
	start := day("2025-01-01")

	before := AccruedFixedTerm(f, start, day("2024-12-01"))
	assert.Equal(t, 10000.0, before.MaturityValue)
	assert.Zero(t, before.InterestEarned)

	mid := AccruedFixedTerm(f, start, day("2025-07-01"))
	assert.Greater(t, mid.MaturityValue, 10000.0)
	assert.Less(t, mid.MaturityValue, 10613.64)

	after := AccruedFixedTerm(f, start, day("2027-01-01"))
	assert.Equal(t, CalculateFixedTerm(f), after, "capped at maturity")

	periodic := f
	periodic.Payout = models.PayoutPeriodic
	half := AccruedFixedTerm(periodic, start, day("2025-07-15"))
	assert.Equal(t, 10000.0, half.MaturityValue)
	assert.Equal(t, 300.0, half.InterestEarned, "two quarters paid out")
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 1, monthsBetween(day("2025-01-31"), day("2025-02-28")))
	assert.Equal(t, 0, monthsBetween(day("2025-01-15"), day("2025-02-14")))
	assert.Equal(t, 12, monthsBetween(day("2025-01-01"), day("2026-01-01")))
	assert.Equal(t, 0, monthsBetween(day("2025-03-01"), day("2025-01-01")))
}

func TestMaturityDate(t *testing.T) {
	inv := models.Investment{
		StartDate:  day("2025-01-31"),
		Instrument: models.FixedTerm{Principal: 1000, Rate: 5, TenureMonths: 1},
	}
	assert.Equal(t, day("2025-02-28"), MaturityDate(inv))

	inv.MaturityDate = day("2025-06-30")
	assert.Equal(t, day("2025-06-30"), MaturityDate(inv), "explicit date wins")

	market := models.Investment{StartDate: day("2025-01-01"), Instrument: models.UnitPriced{Principal: 100}}
	assert.True(t, MaturityDate(market).IsZero())
}

func TestIsRealized(t *testing.T) {
	asOf := day("2025-11-20")
	fd := models.Investment{
		StartDate:  day("2025-01-01"),
		Instrument: models.FixedTerm{Principal: 10000, Rate: 6, TenureMonths: 12},
	}

	fd.Status = models.StatusRunning
	assert.False(t, IsRealized(fd, asOf))

	fd.Status = models.StatusMatured
	assert.False(t, IsRealized(fd, asOf), "maturity 2026-01-01 is after as-of")
	assert.True(t, IsRealized(fd, day("2026-01-01")))

	mf := models.Investment{
		Status:        models.StatusCashedOut,
		CashoutAmount: 4500,
		CashoutDate:   day("2025-11-01"),
		Instrument:    models.UnitPriced{Principal: 4000},
	}
	assert.True(t, IsRealized(mf, asOf))
	assert.False(t, IsRealized(mf, day("2025-10-31")))

	mf.CashoutDate = time.Time{}
	assert.False(t, IsRealized(mf, asOf), "no realisation date")
}

func TestCurrentValue(t *testing.T) {
	fd := models.Investment{
		StartDate:  day("2025-01-01"),
		Instrument: models.FixedTerm{Principal: 10000, Rate: 6, TenureMonths: 12},
	}
	assert.Zero(t, CurrentValue(fd, day("2024-12-31")), "not started")
	assert.Greater(t, CurrentValue(fd, day("2025-06-01")), 10000.0)
	assert.Zero(t, CurrentValue(fd, day("2026-01-01")), "proceeds moved to account at maturity")

	mf := models.Investment{
		StartDate:  day("2025-01-01"),
		Instrument: models.UnitPriced{Principal: 5000, Units: 50, CurrentPrice: 120},
	}
	assert.Equal(t, 6000.0, CurrentValue(mf, day("2025-06-01")))

	mf.Instrument = models.UnitPriced{Principal: 5000}
	assert.Equal(t, 5000.0, CurrentValue(mf, day("2025-06-01")), "unpriced falls back to principal")

	mf.CashoutAmount = 5200
	mf.CashoutDate = day("2025-05-01")
	assert.Zero(t, CurrentValue(mf, day("2025-06-01")))
	assert.Equal(t, 5000.0, CurrentValue(mf, day("2025-04-30")))

	other := models.Investment{Instrument: models.OtherInstrument{Principal: 750}}
	assert.Equal(t, 750.0, CurrentValue(other, day("2025-06-01")))
}
