package display

import (
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/stretchr/testify/assert"
)

func usd() *Formatter {
	return NewFormatter(common.DisplayConfig{CurrencyCode: "usd", Locale: "en-US"})
}

func TestMoney(t *testing.T) {
	f := usd()
	assert.Equal(t, "USD", f.CurrencyCode)
	assert.Equal(t, "$1,234.50", f.Money(1234.5))
	assert.Equal(t, "-$40.00", f.Money(-40))
	assert.Equal(t, "$0.01", f.Money(0.005))
}

func TestSignedMoney(t *testing.T) {
	f := usd()
	assert.Equal(t, "+$10.00", f.SignedMoney(10))
	assert.Equal(t, "-", f.SignedMoney(0))
	assert.Equal(t, "-$10.00", f.SignedMoney(-10))
}

func TestNewFormatter_Fallbacks(t *testing.T) {
	f := NewFormatter(common.DisplayConfig{CurrencyCode: "XYZ", Locale: "not a locale!"})
	assert.Equal(t, "USD", f.CurrencyCode)
	assert.Equal(t, "en", f.Locale)
}

func TestPercentAndCount(t *testing.T) {
	f := NewFormatter(common.DisplayConfig{CurrencyCode: "USD", Locale: "en"})
	assert.Equal(t, "47.37%", f.Percent(47.368))
	assert.Equal(t, "1,234,567", f.Count(1234567))
	assert.Equal(t, "-", f.Date(time.Time{}))
}

func TestBalanceSheetMarkdown(t *testing.T) {
	sheet := &models.BalanceSheet{
		AsOf: common.ParseDate("2025-06-30"),
		Assets: models.Assets{
			Accounts:      []models.BalanceLine{{ID: "acct_1", Name: "Bank", Kind: "account", Amount: 100}},
			AccountsTotal: 100,
			Total:         100,
		},
		Equity: models.Equity{NetWorth: 100},
		Check:  models.BalanceCheck{Balanced: true},
	}
	out := usd().BalanceSheet(sheet)
	assert.True(t, strings.HasPrefix(out, "# Balance Sheet as of 2025-06-30"))
	assert.Contains(t, out, "| Bank | account | $100.00 |")
	assert.Contains(t, out, "**Net Worth:** $100.00")
	assert.Contains(t, out, "Balance check: balanced")
}

func TestTransactionsMarkdown(t *testing.T) {
	out := usd().Transactions([]models.Transaction{
		{Date: common.ParseDate("2025-02-01"), Category: "Income — Salary", AccountName: "Bank", Inflow: 3000},
		{Date: common.ParseDate("2025-02-01"), Category: "Investment Interest — FD", AccountName: "Bank", Inflow: 50, Informational: true},
	})
	assert.Contains(t, out, "# Transactions (2)")
	assert.Contains(t, out, "| 2025-02-01 | Income — Salary | Bank | $3,000.00 |  |")
	assert.Contains(t, out, "_(accrual)_")
}
