package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/salesdash/internal/metrics"
	"github.com/Simplici0/salesdash/internal/sales"
	"github.com/Simplici0/salesdash/internal/unitecon"
)

var errUnknownItem = errors.New("unknown item")

type unitResult struct {
	Breakdown unitecon.CostBreakdown
}

type unitViewData struct {
	baseViewData
	Items        []itemOption
	Item         string
	AveragePrice string
	Params       unitecon.CostParameters
	Tariff       unitecon.Tariff
	Result       *unitResult
}

type unitRequest struct {
	Item   string                  `json:"item"`
	Price  *float64                `json:"price,omitempty"`
	Params unitecon.CostParameters `json:"params"`
}

type unitResponse struct {
	Item             string                  `json:"item,omitempty"`
	AverageUnitPrice float64                 `json:"average_unit_price"`
	Params           unitecon.CostParameters `json:"params"`
	Breakdown        unitecon.CostBreakdown  `json:"breakdown"`
	Profitable       bool                    `json:"profitable"`
	Margin           float64                 `json:"margin"`
}

// itemPrice resolves the historical average price of an item.
func (s *server) itemPrice(ctx context.Context, item string) (float64, error) {
	items, err := s.repo.Items(ctx)
	if err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}
	found := false
	for _, candidate := range items {
		if candidate == item {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w %q", errUnknownItem, item)
	}
	return sales.AverageUnitPrice(ctx, s.repo, item)
}

func (s *server) evaluate(price float64, params unitecon.CostParameters) (unitecon.CostBreakdown, error) {
	breakdown, err := s.engine.Evaluate(unitecon.PriceContext{AverageUnitPrice: price}, params)
	switch {
	case err != nil:
		s.metrics.ObserveEvaluation(metrics.OutcomeInvalid)
	case breakdown.Profitable():
		s.metrics.ObserveEvaluation(metrics.OutcomeProfit)
	default:
		s.metrics.ObserveEvaluation(metrics.OutcomeLoss)
	}
	return breakdown, err
}

// unitPage prepares the calculator view for item, falling back to the first
// known item.
func (s *server) unitPage(ctx context.Context, item string) (unitViewData, float64, error) {
	data := unitViewData{
		baseViewData: baseViewData{AuthEnabled: s.auth != nil},
		Params:       s.defaults,
		Tariff:       s.engine.Tariff(),
	}

	items, err := s.repo.Items(ctx)
	if err != nil {
		return data, 0, fmt.Errorf("load items: %w", err)
	}
	if len(items) == 0 {
		data.ErrorMessage = "No transactions loaded."
		return data, 0, nil
	}
	if item == "" {
		item = items[0]
	}
	for _, candidate := range items {
		data.Items = append(data.Items, itemOption{ID: candidate, Selected: candidate == item})
	}
	data.Item = item

	price, err := s.itemPrice(ctx, item)
	if err != nil {
		return data, 0, err
	}
	data.AveragePrice = formatMoney(price)
	return data, price, nil
}

func (s *server) handleUnitForm(w http.ResponseWriter, r *http.Request) {
	data, _, err := s.unitPage(r.Context(), strings.TrimSpace(r.URL.Query().Get("item")))
	if errors.Is(err, errUnknownItem) {
		data.ErrorMessage = "Unknown item."
		s.renderTemplate(w, http.StatusNotFound, "unit.html", data)
		return
	}
	if err != nil {
		s.logger.Error("failed to load calculator", zap.Error(err))
		http.Error(w, "failed to load calculator", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "unit.html", data)
}

func (s *server) handleUnitSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data, price, err := s.unitPage(r.Context(), strings.TrimSpace(r.PostForm.Get("item")))
	if errors.Is(err, errUnknownItem) {
		data.ErrorMessage = "Unknown item."
		s.renderTemplate(w, http.StatusNotFound, "unit.html", data)
		return
	}
	if err != nil {
		s.logger.Error("failed to load calculator", zap.Error(err))
		http.Error(w, "failed to load calculator", http.StatusInternalServerError)
		return
	}
	if data.Item == "" {
		s.renderTemplate(w, http.StatusUnprocessableEntity, "unit.html", data)
		return
	}

	params, err := parseUnitForm(r.PostForm, s.defaults)
	data.Params = params
	if err != nil {
		data.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusBadRequest, "unit.html", data)
		return
	}

	breakdown, err := s.evaluate(price, params)
	if err != nil {
		data.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusUnprocessableEntity, "unit.html", data)
		return
	}

	data.Result = &unitResult{Breakdown: breakdown}
	s.renderTemplate(w, http.StatusOK, "unit.html", data)
}

func (s *server) handleUnitAPI(w http.ResponseWriter, r *http.Request) {
	req := unitRequest{Params: s.defaults}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}
	req.Item = strings.TrimSpace(req.Item)
	if err := validateParams(req.Params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var price float64
	switch {
	case req.Price != nil:
		price = *req.Price
	case req.Item == "":
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "item or price is required"})
		return
	default:
		var err error
		price, err = s.itemPrice(r.Context(), req.Item)
		if errors.Is(err, errUnknownItem) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		if err != nil {
			s.logger.Error("failed to load item price", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load item price"})
			return
		}
	}

	breakdown, err := s.evaluate(price, req.Params)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, unitResponse{
		Item:             req.Item,
		AverageUnitPrice: price,
		Params:           req.Params,
		Breakdown:        breakdown,
		Profitable:       breakdown.Profitable(),
		Margin:           breakdown.Margin(),
	})
}
