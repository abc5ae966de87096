package finance

import (
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 2.5, Round2(2.499999))
	assert.Equal(t, 0.0, Round2(0.004))
}

func TestAccruedInterest(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		from, to  string
		want      float64
	}{
		{"full year", 10000, 10, "2025-01-01", "2026-01-01", 1000},
		{"73 days", 36500, 10, "2025-01-01", "2025-03-15", 730},
		{"zero principal", 0, 10, "2025-01-01", "2026-01-01", 0},
		{"zero rate", 10000, 0, "2025-01-01", "2026-01-01", 0},
		{"reversed window", 10000, 10, "2026-01-01", "2025-01-01", 0},
		{"same day", 10000, 10, "2025-01-01", "2025-01-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccruedInterest(tt.principal, tt.rate, day(tt.from), day(tt.to))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	assert.Zero(t, AccruedInterest(1000, 5, time.Time{}, day("2025-01-01")), "undated bound")
}

func TestPaymentBreakdown_InterestFirst(t *testing.T) {
	// 10000 at 12% for 31 days accrues 101.92 (rounded).
	bd := PaymentBreakdown(500, 10000, 12, day("2025-01-01"), day("2025-02-01"))
	assert.Equal(t, 101.92, bd.Interest)
	assert.Equal(t, 398.08, bd.Principal)

	// Payment smaller than accrued interest pays interest only.
	bd = PaymentBreakdown(50, 10000, 12, day("2025-01-01"), day("2025-02-01"))
	assert.Equal(t, 50.0, bd.Interest)
	assert.Equal(t, 0.0, bd.Principal)

	// No rate: everything is principal.
	bd = PaymentBreakdown(250, 10000, 0, day("2025-01-01"), day("2025-02-01"))
	assert.Equal(t, Breakdown{Interest: 0, Principal: 250}, bd)

	assert.Equal(t, Breakdown{}, PaymentBreakdown(0, 10000, 12, day("2025-01-01"), day("2025-02-01")))
}

func TestPaymentBreakdown_Conservation(t *testing.T) {
	payments := []float64{0.01, 1, 33.33, 99.99, 100, 1234.56, 5000, 25000.75}
	principals := []float64{0, 100, 3333.33, 10000, 250000}
	rates := []float64{0, 1.5, 7.25, 12, 36}
	windows := [][2]string{
		{"2025-01-01", "2025-01-01"},
		{"2025-01-01", "2025-01-17"},
		{"2025-01-01", "2025-04-30"},
		{"2024-02-29", "2025-03-01"},
	}

	for _, amount := range payments {
		for _, principal := range principals {
			for _, rate := range rates {
				for _, w := range windows {
					bd := PaymentBreakdown(amount, principal, rate, day(w[0]), day(w[1]))
					assert.InDelta(t, amount, bd.Interest+bd.Principal, 0.005,
						"amount=%v principal=%v rate=%v window=%v", amount, principal, rate, w)
					assert.GreaterOrEqual(t, bd.Interest, 0.0)
					assert.GreaterOrEqual(t, bd.Principal, 0.0)
				}
			}
		}
	}
}

func TestAmortizeLoan_OldestFirst(t *testing.T) {
	loan := models.Loan{ID: "loan_1", AmountBorrowed: 12000, InterestRate: 10, StartDate: day("2025-01-01")}
	payments := []models.LoanPayment{
		{ID: "pay_b", LoanID: "loan_1", Amount: 1000, Date: day("2025-03-01")},
		{ID: "pay_a", LoanID: "loan_1", Amount: 1000, Date: day("2025-02-01")},
	}

	am := AmortizeLoan(loan, payments, time.Time{})
	require.Len(t, am.Applications, 2)
	assert.Equal(t, "pay_a", am.Applications[0].Payment.ID)
	assert.Equal(t, "pay_b", am.Applications[1].Payment.ID)

	// 12000 × 10% × 31/365 = 101.92
	assert.Equal(t, 101.92, am.Applications[0].Interest)
	assert.Equal(t, 898.08, am.Applications[0].Principal)
	assert.Equal(t, 11101.92, am.Applications[0].OutstandingAfter)

	assert.Equal(t, day("2025-03-01"), am.LastDate)
	assert.InDelta(t, 12000-am.PrincipalRepaid, am.Outstanding, 0.001)

	prev := loan.AmountBorrowed
	for _, app := range am.Applications {
		assert.LessOrEqual(t, app.OutstandingAfter, prev, "outstanding never increases")
		prev = app.OutstandingAfter
	}
}

func TestAmortizeLoan_OverpayClampsToZero(t *testing.T) {
	loan := models.Loan{AmountBorrowed: 1000, StartDate: day("2025-01-01")}
	payments := []models.LoanPayment{{ID: "pay_1", Amount: 5000, Date: day("2025-01-10")}}

	am := AmortizeLoan(loan, payments, time.Time{})
	assert.Equal(t, 0.0, am.Outstanding)
	assert.Equal(t, 0.0, am.Liability(day("2026-01-01")))
}

func TestAmortizeLoan_AsOfSkipsLaterPayments(t *testing.T) {
	loan := models.Loan{AmountBorrowed: 1000, InterestRate: 0, StartDate: day("2025-01-01")}
	payments := []models.LoanPayment{
		{ID: "pay_1", Amount: 100, Date: day("2025-02-01")},
		{ID: "pay_2", Amount: 100, Date: day("2025-04-01")},
	}

	am := AmortizeLoan(loan, payments, day("2025-03-01"))
	assert.Len(t, am.Applications, 1)
	assert.Equal(t, 900.0, am.Outstanding)
}

func TestAmortization_Liability(t *testing.T) {
	loan := models.Loan{AmountBorrowed: 36500, InterestRate: 10, StartDate: day("2025-01-01")}
	am := AmortizeLoan(loan, nil, time.Time{})

	// 36500 × 10% × 73/365 = 730
	assert.Equal(t, 37230.0, am.Liability(day("2025-03-15")))
	assert.Equal(t, 36500.0, am.Liability(day("2024-12-01")))
}
