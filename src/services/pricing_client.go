package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/logger"
	"github.com/username/networth/backend/src/models"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const userAgent = "networth-backend/1.0"

// historicalRateResponse is the remote service's body for one pair/date.
// Rate arrives as a JSON number; keeping it as json.Number avoids a float
// round trip before it becomes a decimal.
type historicalRateResponse struct {
	Pair string      `json:"pair"`
	Date string      `json:"date"`
	Rate json.Number `json:"rate"`
}

type pricingClientImpl struct {
	httpClient http.Client
	baseURL    string
	limiter    *rate.Limiter
	memo       *cache.Cache
}

// NewPricingClient builds a client for the remote pricing service.
// Consecutive pair requests are paced by pairInterval to respect the
// provider's implicit rate limit, and successful pair results are
// memoized for cacheTTL so a month retried after a partial failure does
// not re-fetch the pairs that already succeeded.
func NewPricingClient(baseURL string, pairInterval, timeout, cacheTTL time.Duration) PricingClient {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &pricingClientImpl{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(pairInterval), 1),
		memo:    cache.New(cacheTTL, 2*cacheTTL),
	}
}

// FetchRate fetches the mid-rate for one currency pair on one date.
// A non-2xx response or an unparsable body means this pair is
// unavailable; it is reported as ErrRateUnavailable, not a hard failure.
func (c *pricingClientImpl) FetchRate(ctx context.Context, from, to models.Currency, date string) (decimal.Decimal, error) {
	pair := string(from) + string(to)
	memoKey := fmt.Sprintf("rate-%s-%s", pair, date)
	if cached, found := c.memo.Get(memoKey); found {
		return cached.(decimal.Decimal), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	reqURL := fmt.Sprintf("%s/v1/historical?pair=%s&date=%s", c.baseURL, url.QueryEscape(pair), url.QueryEscape(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to call pricing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.L.Warn("Pricing service returned non-OK status", "pair", pair, "date", date, "status", resp.Status)
		return decimal.Zero, fmt.Errorf("%w: %s on %s (status %d)", ErrRateUnavailable, pair, date, resp.StatusCode)
	}

	var body historicalRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.L.Warn("Failed to decode pricing service response", "pair", pair, "date", date, "error", err)
		return decimal.Zero, fmt.Errorf("%w: %s on %s: %v", ErrRateUnavailable, pair, date, err)
	}

	value, err := decimal.NewFromString(body.Rate.String())
	if err != nil || !value.IsPositive() {
		logger.L.Warn("Pricing service returned unusable rate", "pair", pair, "date", date, "rate", body.Rate)
		return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrRateUnavailable, pair, date)
	}

	c.memo.Set(memoKey, value, cache.DefaultExpiration)
	return value, nil
}
