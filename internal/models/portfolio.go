package models

import "time"

// AllocationSlice is the principal held in one investment type.
type AllocationSlice struct {
	Type  InvestmentType `json:"type"`
	Value float64        `json:"value"`
	Pct   float64        `json:"pct"`
	Count int            `json:"count"`
}

// MaturityItem is a fixed-term investment approaching maturity.
type MaturityItem struct {
	InvestmentID  string         `json:"investment_id"`
	Name          string         `json:"name"`
	Type          InvestmentType `json:"type"`
	MaturityDate  time.Time      `json:"maturity_date"`
	DaysUntil     int            `json:"days_until"`
	MaturityValue float64        `json:"maturity_value"`
}

// UpcomingMaturities buckets unrealised fixed-term investments by days until maturity.
type UpcomingMaturities struct {
	D30 []MaturityItem `json:"d30"`
	D60 []MaturityItem `json:"d60"`
	D90 []MaturityItem `json:"d90"`
}

// PortfolioSnapshot is the allocation and P&L view of all investments.
type PortfolioSnapshot struct {
	AsOf           time.Time          `json:"as_of"`
	Allocation     []AllocationSlice  `json:"allocation"`
	TotalPrincipal float64            `json:"total_principal"`
	RealizedPL     float64            `json:"realized_pl"`
	UnrealizedPL   float64            `json:"unrealized_pl"`
	Upcoming       UpcomingMaturities `json:"upcoming"`
}
