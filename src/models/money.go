package models

import "github.com/shopspring/decimal"

// MonetaryAmount is a single currency-tagged figure supplied by a caller.
// Value is always non-negative in source data; direction is carried by
// Liability and applied at aggregation time.
type MonetaryAmount struct {
	Label     string          `json:"label,omitempty"`
	Value     decimal.Decimal `json:"value"`
	Currency  Currency        `json:"currency"`
	Liability bool            `json:"liability,omitempty"`
}

// Breakdown decomposes one aggregate figure for one month into labeled
// lists of contributing amounts (e.g. "capitalGains" built from several
// per-account amounts in different currencies).
type Breakdown struct {
	Month  MonthKey                    `json:"month"`
	Labels map[string][]MonetaryAmount `json:"labels"`
}

// MonthlySummary is the fixed-shape breakdown the net-worth views are
// built from. All four lists are implicitly tied to Month.
type MonthlySummary struct {
	Month        MonthKey         `json:"month"`
	Income       []MonetaryAmount `json:"income"`
	Savings      []MonetaryAmount `json:"savings"`
	Spending     []MonetaryAmount `json:"spending"`
	CapitalGains []MonetaryAmount `json:"capitalGains"`
}
