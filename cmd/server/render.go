package main

import (
	"bytes"
	"encoding/json"
	"html/template"
	"math"
	"net/http"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Simplici0/salesdash/web"
)

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
	AuthEnabled    bool
}

type loginViewData struct {
	baseViewData
}

type errorResponse struct {
	Error string `json:"error"`
}

var templateFuncs = template.FuncMap{
	"money":   formatMoney,
	"percent": formatPercent,
}

// formatMoney renders amounts as "1,234.56 ₽".
func formatMoney(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.##", value) + " ₽"
}

func formatPercent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.#", value*100) + "%"
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(web.Templates, "templates/layout.html", "templates/"+page)
	if err != nil {
		s.logger.Error("template parse failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// writeJSON buffers the payload; encoding failures surface as a 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
