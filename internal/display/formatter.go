// Package display renders raw amounts for people. The core never formats;
// only the CLI and markdown reports come through here.
package display

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// fallbackCurrency is used when the configured code is not an ISO 4217 currency.
const fallbackCurrency = money.USD

// Formatter formats amounts in one currency and numbers in one locale.
type Formatter struct {
	CurrencyCode string
	Locale       string

	currency money.Currency
	printer  *message.Printer
}

// NewFormatter builds a formatter from display settings.
func NewFormatter(cfg common.DisplayConfig) *Formatter {
	code := strings.ToUpper(strings.TrimSpace(cfg.CurrencyCode))
	if money.GetCurrency(code) == nil {
		code = fallbackCurrency
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{
		CurrencyCode: code,
		Locale:       tag.String(),
		currency:     *money.New(0, code).Currency(),
		printer:      message.NewPrinter(tag),
	}
}

// Money renders amount with the currency symbol, e.g. "$1,234.50".
func (f *Formatter) Money(amount float64) string {
	minor := decimal.NewFromFloat(amount).Shift(int32(f.currency.Fraction)).Round(0)
	return f.currency.Formatter().Format(minor.IntPart())
}

// SignedMoney prefixes positive amounts with "+". Zero renders as "-".
func (f *Formatter) SignedMoney(amount float64) string {
	switch {
	case amount == 0:
		return "-"
	case amount > 0:
		return "+" + f.Money(amount)
	}
	return f.Money(amount)
}

// Percent renders p (already in percent) with two decimals.
func (f *Formatter) Percent(p float64) string {
	return f.printer.Sprintf("%.2f%%", p)
}

// Count renders an integer with locale grouping.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Date renders a calendar date, or "-" when unset.
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return common.FormatDate(t)
}
