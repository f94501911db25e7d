package fx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/models"
)

// BalanceTotal is a set of balances reduced to one signed figure in the
// display currency.
type BalanceTotal struct {
	Month    models.MonthKey `json:"month"`
	Currency models.Currency `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Degraded bool            `json:"degraded"`
}

// Share is one balance's slice of a percentage-composition view.
type Share struct {
	Label    string          `json:"label,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Percent  decimal.Decimal `json:"percent"`
	Degraded bool            `json:"degraded,omitempty"`
}

// ConvertedBreakdown is a Breakdown with every leaf converted and each
// label re-summed in the display currency.
type ConvertedBreakdown struct {
	Month    models.MonthKey            `json:"month"`
	Currency models.Currency            `json:"currency"`
	Totals   map[string]decimal.Decimal `json:"totals"`
	Degraded bool                       `json:"degraded"`
}

// ConvertedSummary is a MonthlySummary reduced to per-label sums in the
// display currency, with the derived figures recomputed from those sums.
// Ratios are not invariant under conversion when the currency mix differs
// across labels, so TotalIncome and SavingsRate are never carried over
// from the source data.
type ConvertedSummary struct {
	Month        models.MonthKey `json:"month"`
	Currency     models.Currency `json:"currency"`
	Income       decimal.Decimal `json:"income"`
	Savings      decimal.Decimal `json:"savings"`
	Spending     decimal.Decimal `json:"spending"`
	CapitalGains decimal.Decimal `json:"capitalGains"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	SavingsRate  decimal.Decimal `json:"savingsRate"`
	Degraded     bool            `json:"degraded"`
}

var hundred = decimal.NewFromInt(100)

// Aggregator applies currency conversion across the shapes the domain
// needs. It owns no data; everything flows through the converter.
type Aggregator struct {
	converter *Converter
}

func NewAggregator(converter *Converter) *Aggregator {
	return &Aggregator{converter: converter}
}

// TotalBalance converts each balance to the display currency and reduces
// them under the liability sign rule: liabilities subtract, assets add.
// The sign is applied after conversion. Negative source values are a
// contract violation and panic.
func (a *Aggregator) TotalBalance(balances []models.MonetaryAmount, to models.Currency, month models.MonthKey) BalanceTotal {
	out := BalanceTotal{Month: month, Currency: to}
	for _, b := range balances {
		res := a.convertAmount(b, to, month)
		out.Degraded = out.Degraded || res.Degraded
		if b.Liability {
			out.Total = out.Total.Sub(res.Value)
		} else {
			out.Total = out.Total.Add(res.Value)
		}
	}
	return out
}

// PercentShares converts each balance and expresses it as a percentage of
// the sum of absolute converted values. The denominator is always
// recomputed post-conversion; a cached pre-conversion ratio would be
// wrong whenever the inputs mix currencies.
func (a *Aggregator) PercentShares(balances []models.MonetaryAmount, to models.Currency, month models.MonthKey) []Share {
	shares := make([]Share, 0, len(balances))
	denom := decimal.Zero
	for _, b := range balances {
		res := a.convertAmount(b, to, month)
		v := res.Value
		if b.Liability {
			v = v.Neg()
		}
		shares = append(shares, Share{Label: b.Label, Value: v, Degraded: res.Degraded})
		denom = denom.Add(v.Abs())
	}
	if denom.IsZero() {
		return shares
	}
	for i := range shares {
		shares[i].Percent = shares[i].Value.Div(denom).Mul(hundred)
	}
	return shares
}

// ConvertBreakdown converts every leaf amount of a breakdown and re-sums
// each label in the display currency. Leaves inside a breakdown are
// directional by label, so the liability rule does not apply here.
func (a *Aggregator) ConvertBreakdown(b models.Breakdown, to models.Currency) ConvertedBreakdown {
	out := ConvertedBreakdown{
		Month:    b.Month,
		Currency: to,
		Totals:   make(map[string]decimal.Decimal, len(b.Labels)),
	}
	for label, amounts := range b.Labels {
		sum := decimal.Zero
		for _, amt := range amounts {
			res := a.convertAmount(amt, to, b.Month)
			out.Degraded = out.Degraded || res.Degraded
			sum = sum.Add(res.Value)
		}
		out.Totals[label] = sum
	}
	return out
}

// ConvertSummary converts a monthly summary and recomputes its derived
// figures strictly from the converted sums:
//
//	totalIncome = income + capitalGains
//	savingsRate = savings / income * 100 (zero when income is zero)
func (a *Aggregator) ConvertSummary(s models.MonthlySummary, to models.Currency) ConvertedSummary {
	out := ConvertedSummary{Month: s.Month, Currency: to}
	out.Income = a.sumConverted(s.Income, to, s.Month, &out.Degraded)
	out.Savings = a.sumConverted(s.Savings, to, s.Month, &out.Degraded)
	out.Spending = a.sumConverted(s.Spending, to, s.Month, &out.Degraded)
	out.CapitalGains = a.sumConverted(s.CapitalGains, to, s.Month, &out.Degraded)

	out.TotalIncome = out.Income.Add(out.CapitalGains)
	if !out.Income.IsZero() {
		out.SavingsRate = out.Savings.Div(out.Income).Mul(hundred)
	}
	return out
}

// ConvertSeries converts a time series point by point. Each point uses
// its own month's rate; there is no smoothing or carry-over between
// points.
func (a *Aggregator) ConvertSeries(points []models.MonthlySummary, to models.Currency) []ConvertedSummary {
	out := make([]ConvertedSummary, 0, len(points))
	for _, p := range points {
		out = append(out, a.ConvertSummary(p, to))
	}
	return out
}

func (a *Aggregator) sumConverted(amounts []models.MonetaryAmount, to models.Currency, month models.MonthKey, degraded *bool) decimal.Decimal {
	sum := decimal.Zero
	for _, amt := range amounts {
		res := a.convertAmount(amt, to, month)
		*degraded = *degraded || res.Degraded
		sum = sum.Add(res.Value)
	}
	return sum
}

func (a *Aggregator) convertAmount(amt models.MonetaryAmount, to models.Currency, month models.MonthKey) Result {
	if amt.Value.IsNegative() {
		panic(fmt.Sprintf("fx: negative source amount %s %s; direction belongs in the liability flag", amt.Value, amt.Currency))
	}
	return a.converter.Convert(amt.Value, amt.Currency, to, month)
}
