package models

import "time"

// PriceFeedStatus reports the state of the background price feed.
type PriceFeedStatus struct {
	Enabled     bool      `json:"enabled"`
	Running     bool      `json:"running"`
	Paused      bool      `json:"paused"`
	Interval    string    `json:"interval"`
	MaxDriftPct float64   `json:"max_drift_pct"`
	Ticks       int       `json:"ticks"`
	LastTick    time.Time `json:"last_tick,omitempty"`
	LastUpdated int       `json:"last_updated"`
}
