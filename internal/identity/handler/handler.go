// Package handler exposes the identity core over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lineage/internal/identity/models"
	"lineage/internal/identity/search"
	"lineage/internal/identity/service"
	"lineage/internal/platform/middleware"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/httputil"
	"lineage/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

// Service is the identity core as the HTTP layer sees it.
type Service interface {
	ResolveOrCreate(ctx context.Context, occ models.NameOccurrence) (*models.ResolveResult, error)
	FindCandidates(ctx context.Context, fullName string, loc search.Context) (models.Candidates, error)
	CreateCanonical(ctx context.Context, fullName string, attrs models.CanonicalAttributes) (*models.CanonicalPerson, error)
	GetCanonical(ctx context.Context, id models.CanonicalID) (*service.CanonicalDetails, error)
	AddVariant(ctx context.Context, canonicalID models.CanonicalID, variantName string, attrs models.VariantAttributes) (*models.NameVariant, error)
	SearchSimilar(ctx context.Context, query string, limit int) (*models.SimilarResults, error)
	QueueItems(ctx context.Context, status models.QueueStatus, limit int) ([]*models.ReviewQueueItem, error)
	ResolveQueueItem(ctx context.Context, id models.QueueItemID, req service.ResolveRequest) (*models.ReviewQueueItem, error)
	DismissQueueItem(ctx context.Context, id models.QueueItemID, dismissedBy, notes string) (*models.ReviewQueueItem, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// Handler wires identity endpoints to the service.
type Handler struct {
	service   Service
	reviewers middleware.ReviewerValidator
	logger    *slog.Logger
}

// New constructs a Handler. Queue mutations require a bearer token accepted
// by reviewers.
func New(svc Service, reviewers middleware.ReviewerValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		reviewers: reviewers,
		logger:    logger,
	}
}

// Register mounts the identity endpoints under /v1.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/occurrences/resolve", h.HandleResolveOccurrence)
		r.Get("/candidates", h.HandleFindCandidates)
		r.Post("/canonicals", h.HandleCreateCanonical)
		r.Get("/canonicals/{id}", h.HandleGetCanonical)
		r.Post("/canonicals/{id}/variants", h.HandleAddVariant)
		r.Get("/search", h.HandleSearchSimilar)
		r.Get("/queue", h.HandleListQueue)
		r.Get("/stats", h.HandleStats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireReviewer(h.reviewers, h.logger))
			r.Post("/queue/{id}/resolve", h.HandleResolveQueueItem)
			r.Post("/queue/{id}/dismiss", h.HandleDismissQueueItem)
		})
	})
}

// HandleResolveOccurrence handles POST /v1/occurrences/resolve.
func (h *Handler) HandleResolveOccurrence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResolveOccurrenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ResolveOrCreate(ctx, req.NameOccurrence)
	if err != nil {
		h.writeServiceError(ctx, w, "resolve occurrence failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleFindCandidates handles GET /v1/candidates?name=&state=&county=.
func (h *Handler) HandleFindCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	candidates, err := h.service.FindCandidates(ctx, q.Get("name"), search.Context{
		State:  q.Get("state"),
		County: q.Get("county"),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "find candidates failed", err)
		return
	}
	if candidates == nil {
		candidates = models.Candidates{}
	}
	httputil.WriteJSON(w, http.StatusOK, CandidatesResponse{Candidates: candidates, Count: len(candidates)})
}

// HandleCreateCanonical handles POST /v1/canonicals.
func (h *Handler) HandleCreateCanonical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateCanonicalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	canonical, err := h.service.CreateCanonical(ctx, req.FullName, req.CanonicalAttributes)
	if err != nil {
		h.writeServiceError(ctx, w, "create canonical failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, canonical)
}

// HandleGetCanonical handles GET /v1/canonicals/{id}.
func (h *Handler) HandleGetCanonical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := models.ParseCanonicalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	details, err := h.service.GetCanonical(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "get canonical failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

// HandleAddVariant handles POST /v1/canonicals/{id}/variants.
func (h *Handler) HandleAddVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := models.ParseCanonicalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddVariantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = requestcontext.Reviewer(ctx)
	}

	variant, err := h.service.AddVariant(ctx, id, req.VariantName, req.VariantAttributes)
	if err != nil {
		h.writeServiceError(ctx, w, "add variant failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, variant)
}

// HandleSearchSimilar handles GET /v1/search?q=&limit=.
func (h *Handler) HandleSearchSimilar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	results, err := h.service.SearchSimilar(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeServiceError(ctx, w, "search failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

// HandleListQueue handles GET /v1/queue?status=&limit=.
func (h *Handler) HandleListQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.service.QueueItems(ctx, models.QueueStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		h.writeServiceError(ctx, w, "list queue failed", err)
		return
	}
	if items == nil {
		items = []*models.ReviewQueueItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, QueueResponse{Items: items, Count: len(items)})
}

// HandleResolveQueueItem handles POST /v1/queue/{id}/resolve.
func (h *Handler) HandleResolveQueueItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := models.ParseQueueItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveQueueItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.ResolveQueueItem(ctx, id, service.ResolveRequest{
		Resolution: req.Resolution(),
		ResolvedBy: req.ResolvedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "resolve queue item failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

// HandleDismissQueueItem handles POST /v1/queue/{id}/dismiss.
func (h *Handler) HandleDismissQueueItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := models.ParseQueueItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DismissQueueItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.DismissQueueItem(ctx, id, req.DismissedBy, req.Notes)
	if err != nil {
		h.writeServiceError(ctx, w, "dismiss queue item failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

// HandleStats handles GET /v1/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "stats failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// writeServiceError logs server-side failures and writes the mapped response.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
	}
	return n, nil
}
