package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/salesdash/internal/config"
	"github.com/Simplici0/salesdash/internal/db"
	"github.com/Simplici0/salesdash/internal/logger"
	"github.com/Simplici0/salesdash/internal/metrics"
	"github.com/Simplici0/salesdash/internal/migrations"
	"github.com/Simplici0/salesdash/internal/sales"
	"github.com/Simplici0/salesdash/internal/seed"
	"github.com/Simplici0/salesdash/internal/store"
	"github.com/Simplici0/salesdash/internal/unitecon"
	"github.com/Simplici0/salesdash/web"
)

type server struct {
	auth       *authService
	db         *sql.DB
	repo       sales.Repository
	engine     *unitecon.Engine
	defaults   unitecon.CostParameters
	metrics    *metrics.Metrics
	logger     *zap.Logger
	chartYear  int
	chartMonth time.Month
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	database, err := db.Open(ctx, cfg.DBPath, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	stats, err := seed.Run(ctx, database, seed.Config{
		AnalystEmail:    cfg.AnalystEmail,
		AnalystPassword: cfg.AnalystPassword,
		DataPath:        cfg.DataPath,
	}, log)
	if err != nil {
		log.Fatal("failed to seed database", zap.Error(err))
	}
	log.Info("seed finished", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	presets, err := config.LoadPresets(cfg.PresetsPath)
	if err != nil {
		log.Fatal("failed to load calculator presets", zap.Error(err))
	}

	year, month, err := sales.ParseMonth(cfg.ChartMonth)
	if err != nil {
		log.Fatal("invalid CHART_MONTH", zap.Error(err))
	}

	transactions := store.NewTransactions(database)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &server{
		db:         database,
		repo:       transactions,
		engine:     unitecon.NewEngine(presets.Tariff),
		defaults:   presets.Parameters,
		metrics:    metrics.New(registry, transactions, log),
		logger:     log,
		chartYear:  year,
		chartMonth: month,
	}
	if cfg.AuthEnabled() {
		srv.auth = newAuthService(database, cfg.SessionSecret)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", httpServer.Addr), zap.Bool("auth", cfg.AuthEnabled()))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server shut down")
}

func (s *server) routes(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(s.requestLogger)
	r.Use(s.authMiddleware)

	static, _ := fs.Sub(web.Static, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metricsHandler)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Get("/", s.handleDashboard)
	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/charts/{series}", s.handleChart)
	r.Get("/report.xlsx", s.handleReportXLSX)
	r.Get("/report.pdf", s.handleReportPDF)

	r.Get("/unit", s.handleUnitForm)
	r.Post("/unit", s.handleUnitSubmit)
	r.Post("/api/unit", s.handleUnitAPI)

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type healthResponse struct {
	Status        string `json:"status"`
	SchemaVersion int64  `json:"schema_version,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	version, err := migrations.Version(r.Context(), s.db)
	if err != nil {
		s.logger.Warn("schema version unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", SchemaVersion: version})
}
