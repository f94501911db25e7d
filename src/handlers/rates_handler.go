package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/fx"
	"github.com/username/networth/backend/src/logger"
	"github.com/username/networth/backend/src/models"
	"github.com/username/networth/backend/src/utils"
)

type RatesHandler struct {
	table    *fx.Table
	resolver *fx.Resolver
	provider *fx.Provider
}

func NewRatesHandler(table *fx.Table, resolver *fx.Resolver, provider *fx.Provider) *RatesHandler {
	return &RatesHandler{table: table, resolver: resolver, provider: provider}
}

type ensureRequest struct {
	Months []models.MonthKey `json:"months"`
}

type ensureResponse struct {
	Resolved []models.MonthKey `json:"resolved"`
	Missing  []models.MonthKey `json:"missing"`
}

// HandleEnsureRates populates the rate table for the requested months.
// This is the only side-effecting operation on the query surface. Months
// that could not be resolved anywhere come back under "missing"; the
// response never fails because of them.
func (h *RatesHandler) HandleEnsureRates(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req ensureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, m := range req.Months {
		if !m.Valid() {
			utils.SendJSONError(w, fmt.Sprintf("invalid month key %q", m), http.StatusBadRequest)
			return
		}
	}

	if err := h.provider.Ensure(r.Context(), req.Months); err != nil {
		ctxLogger.Warn("Ensure aborted by caller", "error", err)
		utils.SendJSONError(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	resp := ensureResponse{Resolved: []models.MonthKey{}, Missing: []models.MonthKey{}}
	seen := make(map[models.MonthKey]struct{}, len(req.Months))
	for _, m := range req.Months {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if h.table.Has(m) {
			resp.Resolved = append(resp.Resolved, m)
		} else {
			resp.Missing = append(resp.Missing, m)
		}
	}
	utils.SendJSON(w, resp, http.StatusOK)
}

type rateResponse struct {
	Month     models.MonthKey `json:"month"`
	Currency  models.Currency `json:"currency"`
	Available bool            `json:"available"`
	Rate      decimal.Decimal `json:"rate"`
	Degraded  bool            `json:"degraded,omitempty"`
}

// HandleGetRate resolves one (month, currency) rate from the table.
// month may be "latest". An unresolved month is not an error condition:
// the body says available=false and the caller falls back to showing the
// unconverted figure.
func (h *RatesHandler) HandleGetRate(w http.ResponseWriter, r *http.Request) {
	month := models.MonthKey(r.URL.Query().Get("month"))
	if !month.IsLatest() && !month.Valid() {
		utils.SendJSONError(w, fmt.Sprintf("invalid month key %q", month), http.StatusBadRequest)
		return
	}
	currency, err := models.ParseCurrency(r.URL.Query().Get("currency"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := rateResponse{Month: month, Currency: currency}
	if rate, ok := h.resolver.Resolve(month, currency); ok {
		resp.Available = true
		resp.Rate = rate.Value
		resp.Degraded = rate.Degraded
	}
	utils.SendJSON(w, resp, http.StatusOK)
}

type snapshotResponse struct {
	Records []fx.RateRecord `json:"records"`
}

// HandleGetSnapshot returns every cached rate record so a client can seed
// its own table without re-fetching months the server already resolved.
func (h *RatesHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, snapshotResponse{Records: h.table.Snapshot()}, http.StatusOK)
}
