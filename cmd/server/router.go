package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lineage/internal/identity/handler"
	"lineage/internal/platform/metrics"
	"lineage/internal/platform/middleware"
	"lineage/pkg/platform/httputil"
)

type routerDeps struct {
	service  handler.Service
	tokens   middleware.ReviewerValidator
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	db       *sql.DB
	logger   *slog.Logger
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Latency(deps.metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.db != nil {
			if err := deps.db.PingContext(r.Context()); err != nil {
				deps.logger.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	handler.New(deps.service, deps.tokens, deps.logger).Register(r)
	return r
}
