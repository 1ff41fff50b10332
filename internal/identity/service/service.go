// Package service orchestrates the identity core: resolving occurrences,
// maintaining canonicals and variants, adjudicating the review queue and
// reporting counts. Every mutation runs as one unit of work.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"lineage/internal/identity/metrics"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
	dErrors "lineage/pkg/domain-errors"
)

// Default resolution thresholds on the best candidate's confidence.
const (
	DefaultMatchThreshold  = 0.85
	DefaultReviewThreshold = 0.60
)

var tracer = otel.Tracer("lineage/internal/identity/service")

// Service is the identity core's public surface.
type Service struct {
	uow             store.UnitOfWork
	counter         store.Counter
	searcher        *search.Searcher
	matchThreshold  float64
	reviewThreshold float64
	logger          *slog.Logger
	metrics         *metrics.Metrics
	tracer          trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithSearcher(searcher *search.Searcher) Option {
	return func(s *Service) {
		s.searcher = searcher
	}
}

// WithThresholds overrides the match and review thresholds. Values outside
// 0 < review <= match <= 1 are ignored.
func WithThresholds(match, review float64) Option {
	return func(s *Service) {
		if review > 0 && review <= match && match <= 1 {
			s.matchThreshold, s.reviewThreshold = match, review
		}
	}
}

// New constructs a Service.
func New(uow store.UnitOfWork, counter store.Counter, opts ...Option) *Service {
	s := &Service{
		uow:             uow,
		counter:         counter,
		searcher:        search.New(),
		matchThreshold:  DefaultMatchThreshold,
		reviewThreshold: DefaultReviewThreshold,
		logger:          slog.Default(),
		tracer:          tracer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// translateStoreError converts store sentinels into domain errors. Errors
// that already carry a domain code pass through.
func translateStoreError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrSerialization):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	case errors.Is(err, store.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// invariantAsInput reports constructor invariant violations as bad input:
// they are caused by the name the caller supplied.
func invariantAsInput(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeInvalidInput, err.Error())
	}
	return err
}

func (s *Service) logError(ctx context.Context, msg string, err error, args ...any) {
	if dErrors.HasCode(err, dErrors.CodeInvalidInput) || dErrors.HasCode(err, dErrors.CodeValidation) ||
		dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeInvalidState) {
		return
	}
	s.logger.ErrorContext(ctx, msg, append(args, "error", err)...)
}
