package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymetrics "lineage/internal/identity/metrics"
	"lineage/internal/identity/service"
	"lineage/internal/identity/store/memory"
	jwttoken "lineage/internal/jwt_token"
	"lineage/internal/platform/metrics"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.New()
	svc := service.New(db, db,
		service.WithLogger(log),
		service.WithMetrics(identitymetrics.NewWithRegistry(reg)),
	)
	return newRouter(routerDeps{
		service:  svc,
		tokens:   jwttoken.NewJWTService("test-key", "lineage", "lineage-review"),
		metrics:  metrics.NewWithRegistry(reg),
		gatherer: reg,
		logger:   log,
	})
}

func TestRouterServesHealthAndAPI(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"full_name":"William Key"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/occurrences/resolve", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"action":"created_new"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/occurrences/resolve")
}

func TestRouterRequiresReviewerForQueueMutations(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/queue/6f1c2b4e-2b0a-4f7e-9a55-0d6f3b9c1a11/dismiss", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
