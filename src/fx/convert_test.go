package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/networth/backend/src/models"
)

func newTestConverter(records ...RateRecord) *Converter {
	return NewConverter(NewResolver(NewTable(records...)))
}

func TestConvert_Identity(t *testing.T) {
	// Same-currency conversion is exact and needs no rates at all.
	c := newTestConverter()
	for _, cur := range models.AllCurrencies {
		res := c.Convert(dec("123.456"), cur, cur, "2025-03")
		require.True(t, res.Converted)
		assert.False(t, res.Degraded)
		assert.True(t, res.Value.Equal(dec("123.456")))
	}
}

func TestConvert_PivotCorrectness(t *testing.T) {
	c := newTestConverter(testRecord("2025-03", "1.25", "1.15", "1.9"))

	// USD -> EUR routes through GBP: 100 / 1.25 * 1.15 = 92.
	res := c.Convert(dec("100"), models.USD, models.EUR, "2025-03")
	require.True(t, res.Converted)
	assert.True(t, res.Value.Equal(dec("92")), "got %s", res.Value)

	// From pivot: only the target leg applies.
	res = c.Convert(dec("100"), models.GBP, models.USD, "2025-03")
	require.True(t, res.Converted)
	assert.True(t, res.Value.Equal(dec("125")))

	// To pivot: only the source leg applies.
	res = c.Convert(dec("125"), models.USD, models.GBP, "2025-03")
	require.True(t, res.Converted)
	assert.True(t, res.Value.Equal(dec("100")))
}

func TestConvert_RoundTrip(t *testing.T) {
	c := newTestConverter(testRecord("2025-03", "1.2713", "1.1547", "1.9381"))

	orig := dec("1234.56")
	there := c.Convert(orig, models.USD, models.AUD, "2025-03")
	back := c.Convert(there.Value, models.AUD, models.USD, "2025-03")
	require.True(t, back.Converted)

	drift := back.Value.Sub(orig).Abs()
	assert.True(t, drift.LessThan(dec("0.0000001")), "round-trip drift %s", drift)
}

func TestConvert_FailsSoftWhenRateMissing(t *testing.T) {
	c := newTestConverter() // empty table

	res := c.Convert(dec("55"), models.USD, models.GBP, "2025-03")
	assert.False(t, res.Converted)
	assert.True(t, res.Degraded)
	assert.True(t, res.Value.Equal(dec("55")), "original amount must come back unchanged")

	// Target leg missing behaves the same.
	res = c.Convert(dec("55"), models.GBP, models.EUR, "2025-03")
	assert.False(t, res.Converted)
	assert.True(t, res.Value.Equal(dec("55")))
}

func TestConvert_DegradedRatePropagates(t *testing.T) {
	rec := testRecord("2025-01", "1.23", "1.16", "1.88")
	rec.Degraded = true
	c := newTestConverter(rec)

	res := c.Convert(dec("10"), models.USD, models.EUR, "2025-01")
	require.True(t, res.Converted)
	assert.True(t, res.Degraded, "substituted-month rate must mark the result degraded")
}

func TestConvert_UnknownCurrencyPanics(t *testing.T) {
	c := newTestConverter(testRecord("2025-03", "1.25", "1.15", "1.9"))

	assert.Panics(t, func() { c.Convert(dec("1"), models.Currency("BTC"), models.GBP, "2025-03") })
	assert.Panics(t, func() { c.Convert(dec("1"), models.GBP, models.Currency(""), "2025-03") })
}

func TestConvert_NoRoundingInsideConverter(t *testing.T) {
	c := newTestConverter(testRecord("2025-03", "3", "1.15", "1.9"))

	// 10 / 3 keeps full division precision; nothing is rounded to display
	// precision inside the converter.
	res := c.Convert(dec("10"), models.USD, models.GBP, "2025-03")
	require.True(t, res.Converted)
	assert.True(t, res.Value.Equal(decimal.NewFromInt(10).Div(decimal.NewFromInt(3))))
}
