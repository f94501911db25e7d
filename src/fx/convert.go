package fx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/models"
)

// Result carries a converted value together with its availability side
// channel. Converted=false means the rate was unavailable and Value is
// the original amount untouched; Degraded covers both that case and a
// conversion through a substituted-month rate.
type Result struct {
	Value     decimal.Decimal `json:"value"`
	Converted bool            `json:"converted"`
	Degraded  bool            `json:"degraded"`
}

// Converter converts scalar amounts between currencies for a given month
// by pivoting through the base currency. It is stateless and only reads
// whatever the resolver's table holds at call time.
type Converter struct {
	resolver *Resolver
}

func NewConverter(resolver *Resolver) *Converter {
	return &Converter{resolver: resolver}
}

// Convert converts amount from one currency to another at the given
// month's rate. A missing rate fails soft: the original amount comes back
// unchanged with Converted=false rather than an error, because a stale
// dashboard number beats a broken one. Unknown currencies panic; they
// cannot be produced by external data once parsed at the boundary.
//
// No rounding happens here. Display rounding belongs to the formatting
// layer so repeated conversions do not compound error.
func (c *Converter) Convert(amount decimal.Decimal, from, to models.Currency, month models.MonthKey) Result {
	if !from.Valid() || !to.Valid() {
		panic(fmt.Sprintf("fx: convert called with unknown currency %q -> %q", from, to))
	}
	if from == to {
		return Result{Value: amount, Converted: true}
	}

	degraded := false

	inPivot := amount
	if from != models.PivotCurrency {
		rate, ok := c.resolver.Resolve(month, from)
		if !ok {
			return Result{Value: amount, Converted: false, Degraded: true}
		}
		inPivot = amount.Div(rate.Value)
		degraded = degraded || rate.Degraded
	}

	out := inPivot
	if to != models.PivotCurrency {
		rate, ok := c.resolver.Resolve(month, to)
		if !ok {
			return Result{Value: amount, Converted: false, Degraded: true}
		}
		out = inPivot.Mul(rate.Value)
		degraded = degraded || rate.Degraded
	}

	return Result{Value: out, Converted: true, Degraded: degraded}
}
