package models

import (
	"encoding/json"
	"strings"
	"time"
)

// InvestmentType is the instrument kind as entered by the user.
type InvestmentType string

const (
	InvestmentFD     InvestmentType = "FD"
	InvestmentRD     InvestmentType = "RD"
	InvestmentBond   InvestmentType = "BOND"
	InvestmentMF     InvestmentType = "MF"
	InvestmentStock  InvestmentType = "STOCK"
	InvestmentCrypto InvestmentType = "CRYPTO"
	InvestmentGold   InvestmentType = "GOLD"
	InvestmentOther  InvestmentType = "OTHER"
)

// ParseInvestmentType upper-cases s and maps unknown values to OTHER.
func ParseInvestmentType(s string) InvestmentType {
	t := InvestmentType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case InvestmentFD, InvestmentRD, InvestmentBond,
		InvestmentMF, InvestmentStock, InvestmentCrypto, InvestmentGold:
		return t
	}
	return InvestmentOther
}

// IsFixedTerm reports whether the type is deposit-like (FD, RD, BOND).
func (t InvestmentType) IsFixedTerm() bool {
	return t == InvestmentFD || t == InvestmentRD || t == InvestmentBond
}

// IsMarketLinked reports whether the type is unit-priced (MF, STOCK, CRYPTO, GOLD).
func (t InvestmentType) IsMarketLinked() bool {
	return t == InvestmentMF || t == InvestmentStock || t == InvestmentCrypto || t == InvestmentGold
}

// InvestmentStatus is the lifecycle stage of an investment.
type InvestmentStatus string

const (
	StatusCreated   InvestmentStatus = "Created"
	StatusRunning   InvestmentStatus = "Running"
	StatusStashed   InvestmentStatus = "Stashed"
	StatusMatured   InvestmentStatus = "Matured"
	StatusCashedOut InvestmentStatus = "CashedOut"
	StatusClosed    InvestmentStatus = "Closed"
)

// ParseInvestmentStatus normalises case and separators ("cashed_out",
// "Cashed-Out", "CASHEDOUT" all map to CashedOut). Unknown values map to Running,
// and an empty value maps to Created.
func ParseInvestmentStatus(s string) InvestmentStatus {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "", "created":
		return StatusCreated
	case "running", "active":
		return StatusRunning
	case "stashed":
		return StatusStashed
	case "matured":
		return StatusMatured
	case "cashedout":
		return StatusCashedOut
	case "closed":
		return StatusClosed
	}
	return StatusRunning
}

// StatusChange is one entry of an investment's status history.
type StatusChange struct {
	Status InvestmentStatus `json:"status"`
	Date   time.Time        `json:"date"`
}

// PayoutMethod selects how a fixed-term instrument pays its interest.
type PayoutMethod string

const (
	// PayoutAtMaturity compounds interest and pays it with the principal.
	PayoutAtMaturity PayoutMethod = "at_maturity"
	// PayoutPeriodic pays simple interest each sub-period and only the principal at maturity.
	PayoutPeriodic PayoutMethod = "periodic"
)

// ParsePayoutMethod maps loosely written values onto a PayoutMethod.
func ParsePayoutMethod(s string) PayoutMethod {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "periodic", "payout", "noncumulative", "monthly", "quarterly", "annual", "yearly":
		return PayoutPeriodic
	}
	return PayoutAtMaturity
}

// Instrument is the valuation regime of an investment: FixedTerm, UnitPriced
// or OtherInstrument.
type Instrument interface {
	InstrumentPrincipal() float64
	instrument()
}

// FixedTerm is a deposit-like instrument valued by compound interest.
type FixedTerm struct {
	Principal          float64      `json:"principal"`
	Rate               float64      `json:"rate"`
	CompoundingPerYear int          `json:"compounding_per_year"`
	TenureMonths       int          `json:"tenure_months"`
	Payout             PayoutMethod `json:"payout"`
	PeriodsPerYear     int          `json:"periods_per_year,omitempty"`
}

// UnitPriced is a market-linked instrument valued at units × price.
type UnitPriced struct {
	Principal    float64 `json:"principal"`
	Units        float64 `json:"units"`
	UnitCost     float64 `json:"unit_cost"`
	CurrentPrice float64 `json:"current_price"`
}

// OtherInstrument carries only a principal.
type OtherInstrument struct {
	Principal float64 `json:"principal"`
}

func (f FixedTerm) InstrumentPrincipal() float64       { return f.Principal }
func (u UnitPriced) InstrumentPrincipal() float64      { return u.Principal }
func (o OtherInstrument) InstrumentPrincipal() float64 { return o.Principal }

func (FixedTerm) instrument()       {}
func (UnitPriced) instrument()      {}
func (OtherInstrument) instrument() {}

// Investment is a canonicalised investment record.
type Investment struct {
	ID              string           `json:"id"`
	Name            string           `json:"name,omitempty"`
	Type            InvestmentType   `json:"type"`
	Instrument      Instrument       `json:"-"`
	StartDate       time.Time        `json:"start_date"`
	MaturityDate    time.Time        `json:"maturity_date,omitempty"`
	CashoutAmount   float64          `json:"cashout_amount,omitempty"`
	CashoutDate     time.Time        `json:"cashout_date,omitempty"`
	Status          InvestmentStatus `json:"status"`
	StatusHistory   []StatusChange   `json:"status_history,omitempty"`
	AccountID       string           `json:"account_id,omitempty"`
	PayoutAccountID string           `json:"payout_account_id,omitempty"`
	Account         AccountRef       `json:"account"`
	PayoutAccount   AccountRef       `json:"payout_account"`
	Notes           string           `json:"notes,omitempty"`
	Timestamp       time.Time        `json:"timestamp,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Principal returns the amount committed to the investment.
func (inv Investment) Principal() float64 {
	if inv.Instrument == nil {
		return 0
	}
	return inv.Instrument.InstrumentPrincipal()
}

// FixedTerm returns the fixed-term terms when the instrument is deposit-like.
func (inv Investment) FixedTerm() (FixedTerm, bool) {
	f, ok := inv.Instrument.(FixedTerm)
	return f, ok
}

// UnitPriced returns the unit-priced terms when the instrument is market-linked.
func (inv Investment) UnitPriced() (UnitPriced, bool) {
	u, ok := inv.Instrument.(UnitPriced)
	return u, ok
}

// HasCashout reports whether a cashout with a date and positive amount is recorded.
func (inv Investment) HasCashout() bool {
	return !inv.CashoutDate.IsZero() && inv.CashoutAmount > 0
}

// CreditAccount is where interest, maturity and cashout proceeds land:
// the payout account when it resolved, else the debit account.
func (inv Investment) CreditAccount() AccountRef {
	if inv.PayoutAccount.State == RefAssigned {
		return inv.PayoutAccount
	}
	if inv.PayoutAccountID == "" {
		return inv.Account
	}
	return inv.PayoutAccount
}

// MarshalJSON writes the instrument under its category name.
func (inv Investment) MarshalJSON() ([]byte, error) {
	type alias Investment
	out := struct {
		alias
		Principal  float64     `json:"principal"`
		FixedTerm  *FixedTerm  `json:"fixed_term,omitempty"`
		UnitPriced *UnitPriced `json:"unit_priced,omitempty"`
	}{alias: alias(inv), Principal: inv.Principal()}
	switch v := inv.Instrument.(type) {
	case FixedTerm:
		out.FixedTerm = &v
	case UnitPriced:
		out.UnitPriced = &v
	}
	return json.Marshal(out)
}
