package services

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/fx"
	"github.com/username/networth/backend/src/logger"
	"github.com/username/networth/backend/src/model"
	"github.com/username/networth/backend/src/models"
)

// SQLRateStore adapts the monthly_rates table to the fx.RateStore
// boundary. Rows hold float64 columns; values become decimals on the way
// out and floats again on the way in, mirroring the JSON boundary.
type SQLRateStore struct {
	db *sql.DB
}

func NewSQLRateStore(db *sql.DB) *SQLRateStore {
	return &SQLRateStore{db: db}
}

func (s *SQLRateStore) RateByDate(ctx context.Context, date string) (fx.StoreRate, bool, error) {
	row, ok, err := model.GetRateByDate(s.db, date)
	if err != nil || !ok {
		return fx.StoreRate{}, false, err
	}
	return storeRateFromRow(row), true, nil
}

func (s *SQLRateStore) RateByMonth(ctx context.Context, month string) (fx.StoreRate, bool, error) {
	row, ok, err := model.GetRateByMonth(s.db, month)
	if err != nil || !ok {
		return fx.StoreRate{}, false, err
	}
	return storeRateFromRow(row), true, nil
}

func (s *SQLRateStore) LatestRateBefore(ctx context.Context, date string) (fx.StoreRate, bool, error) {
	row, ok, err := model.GetLatestRateBefore(s.db, date)
	if err != nil || !ok {
		return fx.StoreRate{}, false, err
	}
	return storeRateFromRow(row), true, nil
}

func (s *SQLRateStore) SaveRate(ctx context.Context, r fx.StoreRate) error {
	return model.InsertRate(s.db, model.MonthlyRate{
		Date:    r.Date,
		RateUSD: r.Rates[models.USD].InexactFloat64(),
		RateEUR: r.Rates[models.EUR].InexactFloat64(),
		RateAUD: r.Rates[models.AUD].InexactFloat64(),
	})
}

// SeedRecords loads up to limit stored months as complete rate records,
// for pre-seeding the in-memory table at startup. Rows arrive newest
// first, so when a month has several trading-day rows the newest wins.
func (s *SQLRateStore) SeedRecords(limit int) []fx.RateRecord {
	rows, err := model.GetRecentRates(s.db, limit)
	if err != nil {
		logger.L.Warn("Failed to load rate snapshot from store", "error", err)
		return nil
	}
	records := make([]fx.RateRecord, 0, len(rows))
	seen := make(map[models.MonthKey]struct{}, len(rows))
	for _, row := range rows {
		month := models.MonthKeyOf(row.Date)
		if _, dup := seen[month]; dup {
			continue
		}
		seen[month] = struct{}{}
		rec := storeRateFromRow(row)
		records = append(records, fx.RateRecord{
			Month: month,
			Rates: map[models.Currency]decimal.Decimal{
				models.PivotCurrency: decimal.NewFromInt(1),
				models.USD:           rec.Rates[models.USD],
				models.EUR:           rec.Rates[models.EUR],
				models.AUD:           rec.Rates[models.AUD],
			},
		})
	}
	return records
}

func storeRateFromRow(row model.MonthlyRate) fx.StoreRate {
	return fx.StoreRate{
		Date: row.Date,
		Rates: map[models.Currency]decimal.Decimal{
			models.USD: decimal.NewFromFloat(row.RateUSD),
			models.EUR: decimal.NewFromFloat(row.RateEUR),
			models.AUD: decimal.NewFromFloat(row.RateAUD),
		},
	}
}
