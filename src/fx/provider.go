package fx

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/logger"
	"github.com/username/networth/backend/src/models"
	"golang.org/x/sync/singleflight"
)

// StoreRate is one durable-store row: rates for every non-pivot currency
// observed on a specific calendar day.
type StoreRate struct {
	Date  string
	Rates map[models.Currency]decimal.Decimal
}

// RateStore is the durable rate store boundary. Lookups return ok=false
// when no row matches; errors are reserved for connectivity failures.
type RateStore interface {
	// RateByDate looks up the row recorded exactly on date (YYYY-MM-DD).
	RateByDate(ctx context.Context, date string) (StoreRate, bool, error)
	// RateByMonth looks up any row within the month (YYYY-MM), newest day
	// first. Covers stores that only record trading-day dates.
	RateByMonth(ctx context.Context, month string) (StoreRate, bool, error)
	// LatestRateBefore returns the most recent row strictly before date.
	LatestRateBefore(ctx context.Context, date string) (StoreRate, bool, error)
	// SaveRate persists a freshly fetched row.
	SaveRate(ctx context.Context, r StoreRate) error
}

// PairFetcher fetches one currency-pair mid-rate from the remote pricing
// service for a specific date.
type PairFetcher interface {
	FetchRate(ctx context.Context, from, to models.Currency, date string) (decimal.Decimal, error)
}

// Provider fills the rate table for requested months from the durable
// store and, failing that, the remote pricing service. Concurrent
// requests for the same month share one in-flight fetch.
type Provider struct {
	table  *Table
	store  RateStore
	remote PairFetcher
	group  singleflight.Group
}

func NewProvider(table *Table, store RateStore, remote PairFetcher) *Provider {
	return &Provider{table: table, store: store, remote: remote}
}

// Ensure makes the table contain a record for every requested month that
// can be resolved. Months already cached cost no I/O; the rest are
// fetched concurrently. Months that cannot be resolved anywhere are
// logged and simply left absent; lookups for them keep failing soft
// until a later Ensure succeeds.
//
// If the caller's context is abandoned mid-flight, the fetches run to
// completion on a detached context so the table still gains the records
// for future callers; only the wait is cut short.
func (p *Provider) Ensure(ctx context.Context, months []models.MonthKey) error {
	missing := p.missing(months)
	if len(missing) == 0 {
		return nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})
	var wg sync.WaitGroup
	for _, month := range missing {
		wg.Add(1)
		go func(m models.MonthKey) {
			defer wg.Done()
			p.fetchMonth(fetchCtx, m)
		}(month)
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// missing filters the request down to valid, uncached months, deduped.
func (p *Provider) missing(months []models.MonthKey) []models.MonthKey {
	seen := make(map[models.MonthKey]struct{}, len(months))
	out := make([]models.MonthKey, 0, len(months))
	for _, m := range months {
		if m.IsLatest() || !m.Valid() {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if p.table.Has(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// fetchMonth resolves one month and merges the result into the table.
// Deduplicated per month key: callers racing on the same month await the
// same operation instead of issuing a second fetch.
func (p *Provider) fetchMonth(ctx context.Context, month models.MonthKey) {
	p.group.Do(string(month), func() (any, error) {
		if p.table.Has(month) {
			return nil, nil
		}
		rec, ok := p.resolveMonth(ctx, month)
		if ok {
			p.table.Merge(rec)
		}
		return nil, nil
	})
}

// resolveMonth walks the fallback chain for one month: exact last-day
// store row, any same-month store row, the most recent prior store row
// (a substitute, flagged degraded), then a live remote fetch of all
// non-pivot pairs persisted only when complete.
func (p *Provider) resolveMonth(ctx context.Context, month models.MonthKey) (RateRecord, bool) {
	lastDay, err := month.LastDay()
	if err != nil {
		return RateRecord{}, false
	}

	if row, ok, err := p.store.RateByDate(ctx, lastDay); err != nil {
		logger.L.Warn("Rate store lookup failed", "month", month, "error", err)
	} else if ok {
		return recordFromStore(month, row, false), true
	}

	if row, ok, err := p.store.RateByMonth(ctx, string(month)); err != nil {
		logger.L.Warn("Rate store month lookup failed", "month", month, "error", err)
	} else if ok {
		return recordFromStore(month, row, false), true
	}

	firstDay, _ := month.FirstDay()
	if row, ok, err := p.store.LatestRateBefore(ctx, firstDay); err != nil {
		logger.L.Warn("Rate store prior lookup failed", "month", month, "error", err)
	} else if ok {
		logger.L.Warn("Substituting prior rate for month", "month", month, "substituteDate", row.Date)
		return recordFromStore(month, row, true), true
	}

	return p.fetchRemote(ctx, month, lastDay)
}

// fetchRemote fetches every non-pivot pair for the month. Partial
// results are rejected rather than cached: a month either resolves
// completely or not at all.
func (p *Provider) fetchRemote(ctx context.Context, month models.MonthKey, date string) (RateRecord, bool) {
	rates := map[models.Currency]decimal.Decimal{models.PivotCurrency: one}
	for _, cur := range models.NonPivotCurrencies {
		rate, err := p.remote.FetchRate(ctx, models.PivotCurrency, cur, date)
		if err != nil {
			logger.L.Warn("Remote rate fetch failed, discarding month",
				"month", month, "currency", cur, "error", err)
			return RateRecord{}, false
		}
		rates[cur] = rate
	}

	if err := p.store.SaveRate(ctx, StoreRate{Date: date, Rates: rates}); err != nil {
		// The record is still usable in-memory; persistence is best effort.
		logger.L.Warn("Failed to persist fetched rates", "month", month, "error", err)
	}
	logger.L.Info("Fetched rates from remote service", "month", month, "date", date)
	return RateRecord{Month: month, Rates: rates}, true
}

func recordFromStore(month models.MonthKey, row StoreRate, degraded bool) RateRecord {
	rates := make(map[models.Currency]decimal.Decimal, len(row.Rates)+1)
	rates[models.PivotCurrency] = one
	for cur, v := range row.Rates {
		rates[cur] = v
	}
	return RateRecord{Month: month, Rates: rates, Degraded: degraded}
}
