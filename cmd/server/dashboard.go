package main

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/salesdash/internal/report"
	"github.com/Simplici0/salesdash/internal/sales"
)

const dateLayout = "2006-01-02"

type itemOption struct {
	ID       string
	Selected bool
}

type dashboardViewData struct {
	baseViewData
	Items        []itemOption
	From         string
	To           string
	Quantity     string
	Revenue      string
	AveragePrice string
	Query        template.URL
	MonthLabel   string
}

type summaryResponse struct {
	Items        []string `json:"items"`
	From         string   `json:"from,omitempty"`
	To           string   `json:"to,omitempty"`
	Quantity     float64  `json:"quantity"`
	Revenue      float64  `json:"revenue"`
	AveragePrice float64  `json:"average_price"`
}

type chartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type filterError struct {
	field string
	err   error
}

func (e *filterError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.field, e.err)
}

func parseFilter(values url.Values) (sales.Filter, error) {
	var f sales.Filter
	for _, raw := range values["item"] {
		if item := strings.TrimSpace(raw); item != "" {
			f.Items = append(f.Items, item)
		}
	}

	var err error
	if f.From, err = parseOptionalDate(values.Get("from")); err != nil {
		return sales.Filter{}, &filterError{field: "from", err: err}
	}
	if f.To, err = parseOptionalDate(values.Get("to")); err != nil {
		return sales.Filter{}, &filterError{field: "to", err: err}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return sales.Filter{}, &filterError{field: "to", err: fmt.Errorf("%s is before %s", values.Get("to"), values.Get("from"))}
	}
	return f, nil
}

func parseOptionalDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, raw, time.UTC)
}

func filterQuery(f sales.Filter) url.Values {
	values := url.Values{}
	for _, item := range f.Items {
		values.Add("item", item)
	}
	if !f.From.IsZero() {
		values.Set("from", f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		values.Set("to", f.To.Format(dateLayout))
	}
	return values
}

func (s *server) monthLabel() string {
	return time.Date(s.chartYear, s.chartMonth, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardViewData{
		baseViewData: baseViewData{AuthEnabled: s.auth != nil},
		MonthLabel:   s.monthLabel(),
	}

	f, err := parseFilter(r.URL.Query())
	if err != nil {
		data.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusBadRequest, "dashboard.html", data)
		return
	}

	items, err := s.repo.Items(r.Context())
	if err != nil {
		s.logger.Error("failed to load items", zap.Error(err))
		http.Error(w, "failed to load items", http.StatusInternalServerError)
		return
	}

	if f.From.IsZero() || f.To.IsZero() {
		from, to, err := s.repo.Bounds(r.Context())
		if err != nil {
			s.logger.Error("failed to load date bounds", zap.Error(err))
			http.Error(w, "failed to load date bounds", http.StatusInternalServerError)
			return
		}
		if f.From.IsZero() {
			f.From = from
		}
		if f.To.IsZero() {
			f.To = to
		}
	}

	records, err := s.repo.Records(r.Context(), f)
	if err != nil {
		s.logger.Error("failed to load records", zap.Error(err))
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	summary := sales.Summarize(records)

	selected := make(map[string]bool, len(f.Items))
	for _, item := range f.Items {
		selected[item] = true
	}
	for _, item := range items {
		data.Items = append(data.Items, itemOption{ID: item, Selected: selected[item]})
	}
	if !f.From.IsZero() {
		data.From = f.From.Format(dateLayout)
	}
	if !f.To.IsZero() {
		data.To = f.To.Format(dateLayout)
	}
	data.Quantity = summary.Quantity.String()
	data.Revenue = formatMoney(summary.Revenue.InexactFloat64())
	data.AveragePrice = formatMoney(summary.AveragePrice.InexactFloat64())
	data.Query = template.URL(filterQuery(f).Encode())
	if len(records) == 0 {
		data.SuccessMessage = "No transactions match the selected filters."
	}

	s.renderTemplate(w, http.StatusOK, "dashboard.html", data)
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := s.repo.Records(r.Context(), f)
	if err != nil {
		s.logger.Error("failed to load records", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load records"})
		return
	}
	summary := sales.Summarize(records)

	resp := summaryResponse{
		Items:        f.Items,
		Quantity:     summary.Quantity.InexactFloat64(),
		Revenue:      summary.Revenue.InexactFloat64(),
		AveragePrice: summary.AveragePrice.Round(2).InexactFloat64(),
	}
	if resp.Items == nil {
		resp.Items = []string{}
	}
	if !f.From.IsZero() {
		resp.From = f.From.Format(dateLayout)
	}
	if !f.To.IsZero() {
		resp.To = f.To.Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	series := chi.URLParam(r, "series")
	var pick func(sales.DailyPoint) decimal.Decimal
	switch series {
	case "quantity":
		pick = func(p sales.DailyPoint) decimal.Decimal { return p.Quantity }
	case "revenue":
		pick = func(p sales.DailyPoint) decimal.Decimal { return p.Revenue }
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown series %q", series)})
		return
	}

	daily, _, err := s.monthDaily(r)
	if err != nil {
		s.writeFilterError(w, err)
		return
	}

	points := make([]chartPoint, 0, len(daily))
	for _, point := range daily {
		points = append(points, chartPoint{Date: point.Date.Format(dateLayout), Value: pick(point).InexactFloat64()})
	}
	writeJSON(w, http.StatusOK, points)
}

// monthDaily applies the request filter and then narrows to the chart month.
func (s *server) monthDaily(r *http.Request) ([]sales.DailyPoint, sales.Filter, error) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		return nil, sales.Filter{}, err
	}
	records, err := s.repo.Records(r.Context(), f)
	if err != nil {
		return nil, f, fmt.Errorf("load records: %w", err)
	}
	return sales.Daily(sales.InMonth(records, s.chartYear, s.chartMonth)), f, nil
}

func (s *server) writeFilterError(w http.ResponseWriter, err error) {
	var fe *filterError
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Error("failed to load records", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load records"})
}

func (s *server) buildReport(r *http.Request) (report.Report, error) {
	daily, f, err := s.monthDaily(r)
	if err != nil {
		return report.Report{}, err
	}
	records, err := s.repo.Records(r.Context(), f)
	if err != nil {
		return report.Report{}, fmt.Errorf("load records: %w", err)
	}
	return report.Report{
		Filter:      f,
		Summary:     sales.Summarize(records),
		Month:       s.monthLabel(),
		Daily:       daily,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.BuildXLSX)
}

func (s *server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "pdf", "application/pdf", report.BuildPDF)
}

func (s *server) serveReport(w http.ResponseWriter, r *http.Request, ext, contentType string, build func(report.Report) ([]byte, error)) {
	rep, err := s.buildReport(r)
	if err != nil {
		s.writeFilterError(w, err)
		return
	}

	body, err := build(rep)
	if err != nil {
		s.logger.Error("failed to build report", zap.String("format", ext), zap.Error(err))
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-report-%s.%s"`, rep.GeneratedAt.Format("20060102"), ext))
	_, _ = w.Write(body)
}
