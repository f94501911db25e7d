package model

import (
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/networth/backend/src/logger"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE monthly_rates (
			date TEXT PRIMARY KEY,
			rate_usd REAL NOT NULL,
			rate_eur REAL NOT NULL,
			rate_aud REAL NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	require.NoError(t, err)
	return db
}

func seedRates(t *testing.T, db *sql.DB, dates ...string) {
	t.Helper()
	for i, d := range dates {
		require.NoError(t, InsertRate(db, MonthlyRate{
			Date:    d,
			RateUSD: 1.2 + float64(i)/100,
			RateEUR: 1.1,
			RateAUD: 1.9,
		}))
	}
}

func TestGetRateByDate(t *testing.T) {
	db := newTestDB(t)
	seedRates(t, db, "2025-03-31")

	row, ok, err := GetRateByDate(db, "2025-03-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-03-31", row.Date)
	assert.InDelta(t, 1.2, row.RateUSD, 1e-9)

	_, ok, err = GetRateByDate(db, "2025-04-30")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetRateByMonth_NewestDayWins(t *testing.T) {
	db := newTestDB(t)
	seedRates(t, db, "2025-03-14", "2025-03-28")

	row, ok, err := GetRateByMonth(db, "2025-03")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-03-28", row.Date)

	_, ok, err = GetRateByMonth(db, "2025-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetLatestRateBefore(t *testing.T) {
	db := newTestDB(t)
	seedRates(t, db, "2024-11-30", "2024-12-31")

	row, ok, err := GetLatestRateBefore(db, "2025-03-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-12-31", row.Date)

	_, ok, err = GetLatestRateBefore(db, "2024-11-30")
	require.NoError(t, err)
	assert.False(t, ok, "strictly-before must exclude the date itself")
}

func TestInsertRate_Upserts(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, InsertRate(db, MonthlyRate{Date: "2025-03-31", RateUSD: 1.25, RateEUR: 1.15, RateAUD: 1.9}))
	require.NoError(t, InsertRate(db, MonthlyRate{Date: "2025-03-31", RateUSD: 1.26, RateEUR: 1.16, RateAUD: 1.91}))

	row, ok, err := GetRateByDate(db, "2025-03-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.26, row.RateUSD, 1e-9)
}

func TestGetRecentRates_NewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	seedRates(t, db, "2025-01-31", "2025-02-28", "2025-03-31")

	rows, err := GetRecentRates(db, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-31", rows[0].Date)
	assert.Equal(t, "2025-02-28", rows[1].Date)
}
