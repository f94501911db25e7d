package fx

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/models"
)

// RateRecord holds the rates for every supported currency for one month,
// expressed as "1 pivot = X currency". Rates[pivot] is exactly 1. A record
// is created only when all non-pivot currencies resolved, and is never
// mutated afterwards.
type RateRecord struct {
	Month    models.MonthKey                     `json:"month"`
	Rates    map[models.Currency]decimal.Decimal `json:"rates"`
	Degraded bool                                `json:"degraded,omitempty"`
}

// Complete reports whether the record carries a strictly positive rate
// for every supported currency with the pivot pinned at 1. Zero or
// negative rates can arrive from an externally written store row and
// would make conversion divide by zero, so they never enter the table.
func (r RateRecord) Complete() bool {
	if !r.Month.Valid() {
		return false
	}
	pivot, ok := r.Rates[models.PivotCurrency]
	if !ok || !pivot.Equal(decimal.NewFromInt(1)) {
		return false
	}
	for _, c := range models.NonPivotCurrencies {
		rate, ok := r.Rates[c]
		if !ok || !rate.IsPositive() {
			return false
		}
	}
	return true
}

// Table is the in-memory rate cache for one session. It only ever grows:
// Merge inserts records for months not yet present and never overwrites,
// so a reader observing a month sees it complete and final.
type Table struct {
	mu      sync.RWMutex
	records map[models.MonthKey]RateRecord
}

// NewTable builds a table, optionally pre-seeded from records the caller
// already resolved elsewhere (e.g. a server-provided snapshot).
// Incomplete seed records are dropped.
func NewTable(seed ...RateRecord) *Table {
	t := &Table{records: make(map[models.MonthKey]RateRecord, len(seed))}
	t.Merge(seed...)
	return t
}

// Get returns the record for a month, if present.
func (t *Table) Get(month models.MonthKey) (RateRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[month]
	return rec, ok
}

// Has reports whether a month is already cached.
func (t *Table) Has(month models.MonthKey) bool {
	_, ok := t.Get(month)
	return ok
}

// Merge inserts records as an idempotent union: existing months keep
// their original record. Incomplete records are ignored so a
// half-populated month can never masquerade as resolved.
func (t *Table) Merge(records ...RateRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		if !rec.Complete() {
			continue
		}
		if _, exists := t.records[rec.Month]; exists {
			continue
		}
		t.records[rec.Month] = rec
	}
}

// Months returns the cached month keys in chronological order.
func (t *Table) Months() []models.MonthKey {
	t.mu.RLock()
	defer t.mu.RUnlock()
	months := make([]models.MonthKey, 0, len(t.records))
	for m := range t.records {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}

// Snapshot returns every cached record in chronological order, for
// handing to a client that wants to seed its own table.
func (t *Table) Snapshot() []RateRecord {
	months := t.Months()
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RateRecord, 0, len(months))
	for _, m := range months {
		out = append(out, t.records[m])
	}
	return out
}
