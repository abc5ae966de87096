package records

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

// Field aliases accepted from writers. The first name is canonical.
var (
	aliasAmount         = []string{"amount", "principal", "inflow", "value"}
	aliasExpenseAmount  = []string{"amount", "outflow", "value"}
	aliasRate           = []string{"rate", "interest_rate", "interestRate"}
	aliasTenure         = []string{"tenure_months", "tenureMonths", "tenure"}
	aliasCompounding    = []string{"compounding_per_year", "compoundingPerYear", "compounding", "compounding_frequency"}
	aliasStartDate      = []string{"start_date", "startDate", "date"}
	aliasMaturityDate   = []string{"maturity_date", "maturityDate"}
	aliasUnits          = []string{"units", "quantity"}
	aliasUnitCost       = []string{"unit_cost", "unitCost", "purchase_price"}
	aliasCurrentPrice   = []string{"current_unit_price", "currentUnitPrice", "current_price"}
	aliasCashoutAmount  = []string{"cashout_amount", "cashoutAmount"}
	aliasCashoutDate    = []string{"cashout_date", "cashoutDate"}
	aliasAccountID      = []string{"account_id", "accountId"}
	aliasPayoutAccount  = []string{"payout_account_id", "payoutAccountId"}
	aliasBorrowed       = []string{"amount_borrowed", "amountBorrowed", "principal", "amount"}
	aliasPayoutMethod   = []string{"interest_payout_method", "interestPayoutMethod", "payout_method"}
	aliasPayoutFreq     = []string{"payout_frequency", "payoutFrequency"}
	aliasLoanID         = []string{"loan_id", "loanId"}
	aliasStatusHistory  = []string{"status_history", "statusHistory"}
	aliasCreditLimit    = []string{"credit_limit", "creditLimit"}
	aliasInvestmentType = []string{"type", "investment_type", "investmentType"}
	aliasDate           = []string{"date"}
	aliasNotes          = []string{"notes", "note", "description"}
	aliasTimestamp      = []string{"timestamp"}
)

// primaryDate is the field a creation defaults to today when it is absent.
var primaryDate = map[models.Collection][]string{
	models.CollectionIncome:       aliasDate,
	models.CollectionExpenses:     aliasDate,
	models.CollectionLoanPayments: aliasDate,
	models.CollectionInvestments:  aliasStartDate,
	models.CollectionLoans:        aliasStartDate,
}

// lookup returns the first present, non-null value among keys.
func lookup(doc models.Document, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func str(doc models.Document, keys ...string) string {
	v, ok := lookup(doc, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// num coerces a JSON number or numeric string to float64. Anything else is 0.
func num(doc models.Document, keys ...string) float64 {
	v, ok := lookup(doc, keys...)
	if !ok {
		return 0
	}
	return toFloat(v)
}

func toFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		f, _ = strconv.ParseFloat(s, 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// amount is a non-negative monetary value. Writers sometimes store outflows
// as negative numbers; the direction comes from the record type, not the sign.
func amount(doc models.Document, keys ...string) float64 {
	return math.Abs(num(doc, keys...))
}

func integer(doc models.Document, keys ...string) int {
	return int(math.Round(num(doc, keys...)))
}

func date(doc models.Document, keys ...string) time.Time {
	return common.ParseDate(str(doc, keys...))
}

func timestamp(doc models.Document, keys ...string) time.Time {
	t, _ := common.ParseTimestamp(str(doc, keys...))
	return t
}

// periodsPerYear reads a payout frequency given either as a count or a name.
func periodsPerYear(doc models.Document) int {
	v, ok := lookup(doc, aliasPayoutFreq...)
	if !ok {
		return 0
	}
	if s, isStr := v.(string); isStr {
		switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
		case "monthly":
			return 12
		case "quarterly":
			return 4
		case "half_yearly", "halfyearly", "semi_annual", "semiannual":
			return 2
		case "annual", "annually", "yearly":
			return 1
		}
	}
	return int(math.Round(toFloat(v)))
}

func statusHistory(doc models.Document) []models.StatusChange {
	v, ok := lookup(doc, aliasStatusHistory...)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []models.StatusChange
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := models.Document(entry)
		out = append(out, models.StatusChange{
			Status: models.ParseInvestmentStatus(str(d, "status")),
			Date:   date(d, "date", "timestamp"),
		})
	}
	return out
}
