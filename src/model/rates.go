package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/networth/backend/src/logger"
)

// MonthlyRate represents a row in the monthly_rates table: the GBP pivot
// rates observed on one calendar day, normally the last day of a month.
type MonthlyRate struct {
	Date      string // YYYY-MM-DD
	RateUSD   float64
	RateEUR   float64
	RateAUD   float64
	UpdatedAt time.Time
}

// GetRateByDate retrieves the rate row recorded exactly on the given date.
// The second return value is false when no row exists for that date.
func GetRateByDate(db *sql.DB, date string) (MonthlyRate, bool, error) {
	query := `SELECT date, rate_usd, rate_eur, rate_aud, updated_at FROM monthly_rates WHERE date = ?`
	return scanRate(db.QueryRow(query, date))
}

// GetRateByMonth retrieves the newest rate row within a month ("YYYY-MM"),
// ignoring the exact day. Covers stores that only record trading-day dates.
func GetRateByMonth(db *sql.DB, month string) (MonthlyRate, bool, error) {
	query := `SELECT date, rate_usd, rate_eur, rate_aud, updated_at FROM monthly_rates
		WHERE date LIKE ? ORDER BY date DESC LIMIT 1`
	return scanRate(db.QueryRow(query, month+"-%"))
}

// GetLatestRateBefore retrieves the most recent rate row strictly before
// the given date.
func GetLatestRateBefore(db *sql.DB, date string) (MonthlyRate, bool, error) {
	query := `SELECT date, rate_usd, rate_eur, rate_aud, updated_at FROM monthly_rates
		WHERE date < ? ORDER BY date DESC LIMIT 1`
	return scanRate(db.QueryRow(query, date))
}

// GetRecentRates retrieves up to limit rate rows, newest first. Used to
// seed the in-memory rate table at startup.
func GetRecentRates(db *sql.DB, limit int) ([]MonthlyRate, error) {
	query := `SELECT date, rate_usd, rate_eur, rate_aud, updated_at FROM monthly_rates
		ORDER BY date DESC LIMIT ?`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []MonthlyRate
	for rows.Next() {
		var r MonthlyRate
		if err := rows.Scan(&r.Date, &r.RateUSD, &r.RateEUR, &r.RateAUD, &r.UpdatedAt); err != nil {
			logger.L.Error("Error scanning monthly rate row", "error", err)
			continue
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// InsertRate saves a rate row, updating if one already exists for that day.
func InsertRate(db *sql.DB, r MonthlyRate) error {
	query := `
        INSERT INTO monthly_rates (date, rate_usd, rate_eur, rate_aud, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(date) DO UPDATE SET
            rate_usd = excluded.rate_usd,
            rate_eur = excluded.rate_eur,
            rate_aud = excluded.rate_aud,
            updated_at = excluded.updated_at;
    `
	_, err := db.Exec(query, r.Date, r.RateUSD, r.RateEUR, r.RateAUD, time.Now())
	if err != nil {
		logger.L.Error("Failed to insert or update monthly rate", "date", r.Date, "error", err)
	}
	return err
}

func scanRate(row *sql.Row) (MonthlyRate, bool, error) {
	var r MonthlyRate
	err := row.Scan(&r.Date, &r.RateUSD, &r.RateEUR, &r.RateAUD, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return MonthlyRate{}, false, nil
	}
	if err != nil {
		return MonthlyRate{}, false, err
	}
	return r, true, nil
}
