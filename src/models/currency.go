package models

import "fmt"

// Currency is one of the fixed set of currencies the application supports.
// GBP is the pivot: every stored rate means "1 GBP = X currency".
type Currency string

const (
	GBP Currency = "GBP"
	USD Currency = "USD"
	EUR Currency = "EUR"
	AUD Currency = "AUD"
)

// PivotCurrency is the currency all cross-currency conversions route through.
const PivotCurrency = GBP

// AllCurrencies lists every supported currency, pivot first.
var AllCurrencies = []Currency{GBP, USD, EUR, AUD}

// NonPivotCurrencies lists the currencies that need a stored rate.
var NonPivotCurrencies = []Currency{USD, EUR, AUD}

// Valid reports whether c is a member of the supported set.
func (c Currency) Valid() bool {
	switch c {
	case GBP, USD, EUR, AUD:
		return true
	}
	return false
}

// ParseCurrency converts an external currency code into a Currency.
// Unknown codes are a caller-input error, not a panic.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(code)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency code %q", code)
	}
	return c, nil
}
