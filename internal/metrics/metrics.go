package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const metricPrefix = "salesdash_"

// Evaluation outcomes.
const (
	OutcomeProfit  = "profit"
	OutcomeLoss    = "loss"
	OutcomeInvalid = "invalid"
)

// Counter reports a row count for a gauge.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Metrics groups the dashboard collectors.
type Metrics struct {
	evaluations     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. transactions may be nil.
func New(reg prometheus.Registerer, transactions Counter, logger *zap.Logger) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "unit_evaluations_total",
			Help: "Unit economics evaluations by outcome",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(m.evaluations, m.requestDuration)

	if transactions != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "transactions",
				Help: "Transactions in the loaded dataset",
			},
			func() float64 {
				count, err := transactions.Count(context.Background())
				if err != nil {
					logger.Warn("metrics query failed", zap.Error(err))
					return 0
				}
				return float64(count)
			},
		))
	}

	return m
}

// ObserveEvaluation counts one calculator run.
func (m *Metrics) ObserveEvaluation(outcome string) {
	m.evaluations.WithLabelValues(outcome).Inc()
}

// Middleware records request latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
