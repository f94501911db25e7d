package fx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/models"
)

// Rate is a resolved month/currency rate. Degraded marks a rate that came
// from a substituted (older) store record rather than an exact match.
type Rate struct {
	Value    decimal.Decimal
	Degraded bool
}

// Resolver answers rate lookups from a Table. It knows exactly two
// fallbacks: the exact month, and the "latest" sentinel which picks the
// greatest month key present. Substituting a different month's rate is
// deliberately not done here; that belongs to the provider's store search.
type Resolver struct {
	table *Table
}

func NewResolver(table *Table) *Resolver {
	return &Resolver{table: table}
}

var one = decimal.NewFromInt(1)

// Resolve returns the rate for (month, currency), or ok=false when the
// month is not cached. The pivot currency always resolves to exactly 1
// without touching the table. An invalid currency is a caller bug and
// panics.
func (r *Resolver) Resolve(month models.MonthKey, currency models.Currency) (Rate, bool) {
	if !currency.Valid() {
		panic(fmt.Sprintf("fx: unknown currency %q", currency))
	}
	if currency == models.PivotCurrency {
		return Rate{Value: one}, true
	}

	var rec RateRecord
	var ok bool
	if month.IsLatest() {
		rec, ok = r.latest()
	} else {
		rec, ok = r.table.Get(month)
	}
	if !ok {
		return Rate{}, false
	}
	return Rate{Value: rec.Rates[currency], Degraded: rec.Degraded}, true
}

// latest returns the record with the lexicographically greatest month key.
// Month keys are string-sortable, so this is the chronologically newest.
func (r *Resolver) latest() (RateRecord, bool) {
	months := r.table.Months()
	if len(months) == 0 {
		return RateRecord{}, false
	}
	return r.table.Get(months[len(months)-1])
}
