package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/models"
)

// Common service errors.
var (
	// ErrRateUnavailable means the remote service had no usable rate for
	// one pair/date. Callers treat it as data unavailability, never as a
	// failure of the whole batch.
	ErrRateUnavailable = errors.New("rate unavailable")
)

// PricingClient fetches a single currency-pair mid-rate from the remote
// pricing service for a specific date. There is no batching; callers are
// expected to sequence pair requests and the implementation paces them.
type PricingClient interface {
	FetchRate(ctx context.Context, from, to models.Currency, date string) (decimal.Decimal, error)
}
