package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/networth/backend/src/fx"
	"github.com/username/networth/backend/src/models"
	"github.com/username/networth/backend/src/utils"
)

type ConvertHandler struct {
	provider   *fx.Provider
	converter  *fx.Converter
	aggregator *fx.Aggregator
}

func NewConvertHandler(provider *fx.Provider, converter *fx.Converter, aggregator *fx.Aggregator) *ConvertHandler {
	return &ConvertHandler{provider: provider, converter: converter, aggregator: aggregator}
}

type convertAmountRequest struct {
	Value decimal.Decimal `json:"value"`
	From  models.Currency `json:"from"`
	To    models.Currency `json:"to"`
	Month models.MonthKey `json:"month"`
}

type convertAmountResponse struct {
	Month     models.MonthKey `json:"month"`
	From      models.Currency `json:"from"`
	To        models.Currency `json:"to"`
	Value     decimal.Decimal `json:"value"`
	Converted bool            `json:"converted"`
	Degraded  bool            `json:"degraded"`
}

// HandleConvertAmount converts one scalar amount between two currencies
// at the requested month's rate. An unavailable rate degrades to the
// original value with converted=false; it is never a 5xx.
func (h *ConvertHandler) HandleConvertAmount(w http.ResponseWriter, r *http.Request) {
	var req convertAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validateMonth(req.Month); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.From.Valid() || !req.To.Valid() {
		utils.SendJSONError(w, "unsupported currency code", http.StatusBadRequest)
		return
	}

	h.ensureMonths(r, req.Month)
	res := h.converter.Convert(req.Value, req.From, req.To, req.Month)
	utils.SendJSON(w, convertAmountResponse{
		Month:     req.Month,
		From:      req.From,
		To:        req.To,
		Value:     res.Value,
		Converted: res.Converted,
		Degraded:  res.Degraded,
	}, http.StatusOK)
}

type convertBalancesRequest struct {
	Balances    []models.MonetaryAmount `json:"balances"`
	To          models.Currency         `json:"to"`
	Month       models.MonthKey         `json:"month"`
	Percentages bool                    `json:"percentages,omitempty"`
}

// HandleConvertBalances reduces a set of liability-flagged balances to a
// signed total in the display currency, or to a percentage-composition
// view when percentages=true.
func (h *ConvertHandler) HandleConvertBalances(w http.ResponseWriter, r *http.Request) {
	var req convertBalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validateMonth(req.Month); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.To.Valid() {
		utils.SendJSONError(w, "unsupported display currency", http.StatusBadRequest)
		return
	}
	if err := validateAmounts(req.Balances); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.ensureMonths(r, req.Month)
	if req.Percentages {
		shares := h.aggregator.PercentShares(req.Balances, req.To, req.Month)
		utils.SendJSON(w, map[string]any{"month": req.Month, "currency": req.To, "shares": shares}, http.StatusOK)
		return
	}
	utils.SendJSON(w, h.aggregator.TotalBalance(req.Balances, req.To, req.Month), http.StatusOK)
}

type convertBreakdownRequest struct {
	Breakdown models.Breakdown `json:"breakdown"`
	To        models.Currency  `json:"to"`
}

// HandleConvertBreakdown converts every leaf of a labeled breakdown and
// re-sums each label in the display currency.
func (h *ConvertHandler) HandleConvertBreakdown(w http.ResponseWriter, r *http.Request) {
	var req convertBreakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validateMonth(req.Breakdown.Month); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.To.Valid() {
		utils.SendJSONError(w, "unsupported display currency", http.StatusBadRequest)
		return
	}
	for _, amounts := range req.Breakdown.Labels {
		if err := validateAmounts(amounts); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	h.ensureMonths(r, req.Breakdown.Month)
	utils.SendJSON(w, h.aggregator.ConvertBreakdown(req.Breakdown, req.To), http.StatusOK)
}

type convertSummaryRequest struct {
	Summary models.MonthlySummary `json:"summary"`
	To      models.Currency       `json:"to"`
}

// HandleConvertSummary converts one monthly summary, recomputing its
// derived figures from the converted sums.
func (h *ConvertHandler) HandleConvertSummary(w http.ResponseWriter, r *http.Request) {
	var req convertSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validateSummary(req.Summary); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.To.Valid() {
		utils.SendJSONError(w, "unsupported display currency", http.StatusBadRequest)
		return
	}

	h.ensureMonths(r, req.Summary.Month)
	utils.SendJSON(w, h.aggregator.ConvertSummary(req.Summary, req.To), http.StatusOK)
}

type convertSeriesRequest struct {
	Points []models.MonthlySummary `json:"points"`
	To     models.Currency         `json:"to"`
}

// HandleConvertSeries converts a time series of monthly summaries, each
// point at its own month's rate.
func (h *ConvertHandler) HandleConvertSeries(w http.ResponseWriter, r *http.Request) {
	var req convertSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.To.Valid() {
		utils.SendJSONError(w, "unsupported display currency", http.StatusBadRequest)
		return
	}
	months := make([]models.MonthKey, 0, len(req.Points))
	for _, p := range req.Points {
		if err := validateSummary(p); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		months = append(months, p.Month)
	}

	h.ensureMonths(r, months...)
	utils.SendJSON(w, map[string]any{
		"currency": req.To,
		"points":   h.aggregator.ConvertSeries(req.Points, req.To),
	}, http.StatusOK)
}

// ensureMonths best-effort populates the rate table before converting.
// Failures here are not surfaced: conversion itself degrades gracefully
// on whatever is missing.
func (h *ConvertHandler) ensureMonths(r *http.Request, months ...models.MonthKey) {
	_ = h.provider.Ensure(r.Context(), months)
}

func validateMonth(m models.MonthKey) error {
	if !m.IsLatest() && !m.Valid() {
		return fmt.Errorf("invalid month key %q", m)
	}
	return nil
}

// validateAmounts rejects malformed external data at the boundary so the
// core's contract checks only ever fire on programmer error.
func validateAmounts(amounts []models.MonetaryAmount) error {
	for _, a := range amounts {
		if !a.Currency.Valid() {
			return fmt.Errorf("unsupported currency code %q", a.Currency)
		}
		if a.Value.IsNegative() {
			return fmt.Errorf("negative amount %s; use the liability flag for direction", a.Value)
		}
	}
	return nil
}

func validateSummary(s models.MonthlySummary) error {
	if err := validateMonth(s.Month); err != nil {
		return err
	}
	for _, list := range [][]models.MonetaryAmount{s.Income, s.Savings, s.Spending, s.CapitalGains} {
		if err := validateAmounts(list); err != nil {
			return err
		}
	}
	return nil
}
