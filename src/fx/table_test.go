package fx

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/networth/backend/src/logger"
	"github.com/username/networth/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testRecord(month models.MonthKey, usd, eur, aud string) RateRecord {
	return RateRecord{
		Month: month,
		Rates: map[models.Currency]decimal.Decimal{
			models.GBP: decimal.NewFromInt(1),
			models.USD: dec(usd),
			models.EUR: dec(eur),
			models.AUD: dec(aud),
		},
	}
}

func TestTable_MergeAndGet(t *testing.T) {
	table := NewTable()
	require.False(t, table.Has("2025-03"))

	table.Merge(testRecord("2025-03", "1.25", "1.15", "1.9"))
	rec, ok := table.Get("2025-03")
	require.True(t, ok)
	assert.True(t, rec.Rates[models.USD].Equal(dec("1.25")))
}

func TestTable_MergeDoesNotOverwrite(t *testing.T) {
	table := NewTable(testRecord("2025-03", "1.25", "1.15", "1.9"))

	table.Merge(testRecord("2025-03", "9.99", "9.99", "9.99"))

	rec, ok := table.Get("2025-03")
	require.True(t, ok)
	assert.True(t, rec.Rates[models.USD].Equal(dec("1.25")), "existing record must win")
}

func TestTable_MergeRejectsIncompleteRecords(t *testing.T) {
	table := NewTable()

	missing := testRecord("2025-03", "1.25", "1.15", "1.9")
	delete(missing.Rates, models.EUR)
	table.Merge(missing)
	assert.False(t, table.Has("2025-03"), "record without all currencies must not be cached")

	badPivot := testRecord("2025-04", "1.25", "1.15", "1.9")
	badPivot.Rates[models.GBP] = dec("2")
	table.Merge(badPivot)
	assert.False(t, table.Has("2025-04"), "record with pivot != 1 must not be cached")

	table.Merge(RateRecord{Month: "march", Rates: missing.Rates})
	assert.Empty(t, table.Months())
}

func TestTable_MergeRejectsNonPositiveRates(t *testing.T) {
	table := NewTable()

	zero := testRecord("2025-03", "0", "1.15", "1.9")
	table.Merge(zero)
	assert.False(t, table.Has("2025-03"), "a zero rate would divide by zero during conversion")

	negative := testRecord("2025-04", "1.25", "-1.15", "1.9")
	table.Merge(negative)
	assert.False(t, table.Has("2025-04"))
}

func TestTable_MonthsSortedChronologically(t *testing.T) {
	table := NewTable(
		testRecord("2025-03", "1.25", "1.15", "1.9"),
		testRecord("2024-12", "1.22", "1.14", "1.85"),
		testRecord("2025-01", "1.23", "1.16", "1.88"),
	)

	assert.Equal(t, []models.MonthKey{"2024-12", "2025-01", "2025-03"}, table.Months())

	snap := table.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, models.MonthKey("2024-12"), snap[0].Month)
	assert.Equal(t, models.MonthKey("2025-03"), snap[2].Month)
}

func TestTable_SeedsFromSnapshot(t *testing.T) {
	seed := []RateRecord{
		testRecord("2025-02", "1.24", "1.17", "1.92"),
		testRecord("2025-03", "1.25", "1.15", "1.9"),
	}
	table := NewTable(seed...)

	assert.True(t, table.Has("2025-02"))
	assert.True(t, table.Has("2025-03"))
}
