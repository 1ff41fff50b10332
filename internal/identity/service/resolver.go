package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lineage/internal/identity/models"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
	"lineage/pkg/requestcontext"
)

// ResolveOrCreate decides whether occ refers to a known canonical, needs
// human review, or is a new person, and records that decision atomically:
//
//   - best confidence >= match threshold: matched; the spelling is recorded
//     as an auto_soundex variant unless it is the canonical's own spelling
//     or already recorded
//   - best confidence >= review threshold: queued_for_review with the top
//     candidates
//   - otherwise: created_new with a fresh auto_created canonical
//
// A failed or cancelled call writes nothing. Concurrent calls for a name not
// yet stored may each create a canonical; review absorbs those duplicates.
func (s *Service) ResolveOrCreate(ctx context.Context, occ models.NameOccurrence) (result *models.ResolveResult, err error) {
	occ = occ.Normalized()
	ctx, span := s.tracer.Start(ctx, "ResolveOrCreate",
		trace.WithAttributes(attribute.String("lineage.name", occ.FullName)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		span.SetAttributes(
			attribute.String("lineage.action", string(result.Action)),
			attribute.Float64("lineage.confidence", result.Confidence),
		)
		if s.metrics != nil {
			s.metrics.ObserveResolve(start)
			s.metrics.IncrementResolution(result.Action)
		}
	}()

	if err := occ.Validate(); err != nil {
		return nil, err
	}

	err = s.uow.RunInTx(ctx, store.ReadWrite, func(ctx context.Context, st store.Stores) error {
		candidates, err := s.searcher.Find(ctx, st, occ.FullName, search.Context{State: occ.State, County: occ.County})
		if err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ObserveCandidates(len(candidates))
		}
		best, ok := candidates.Best()
		switch {
		case ok && best.Confidence >= s.matchThreshold:
			result, err = s.linkOccurrence(ctx, st, occ, best)
		case ok && best.Confidence >= s.reviewThreshold:
			result, err = s.queueOccurrence(ctx, st, occ, candidates)
		default:
			result, err = s.createFromOccurrence(ctx, st, occ)
		}
		return err
	})
	if err != nil {
		err = translateStoreError(err, "failed to resolve occurrence")
		s.logError(ctx, "resolve occurrence failed", err, "name", occ.FullName)
		return nil, err
	}

	s.logger.DebugContext(ctx, "occurrence resolved",
		"name", occ.FullName,
		"action", result.Action,
		"confidence", result.Confidence,
	)
	return result, nil
}

func (s *Service) linkOccurrence(ctx context.Context, st store.Stores, occ models.NameOccurrence, best models.Candidate) (*models.ResolveResult, error) {
	canonical := best.Canonical
	if !models.IsSelfVariant(canonical, occ.FullName) {
		exists, err := st.VariantExists(ctx, canonical.ID, occ.FullName)
		if err != nil {
			return nil, err
		}
		if !exists {
			variant, err := models.NewNameVariant(models.NewVariantID(), canonical, occ.FullName, models.VariantAttributes{
				SourceType:      occ.SourceType,
				SourceURL:       occ.SourceURL,
				MatchMethod:     models.MatchMethodAutoSoundex,
				MatchConfidence: best.Confidence,
				CreatedBy:       occ.CreatedBy,
			}, requestcontext.Now(ctx))
			if err != nil {
				return nil, err
			}
			if err := s.insertVariant(ctx, st, variant); err != nil {
				return nil, err
			}
		}
	}
	id := canonical.ID
	return &models.ResolveResult{
		Action:      models.ActionMatched,
		CanonicalID: &id,
		Confidence:  best.Confidence,
	}, nil
}

func (s *Service) queueOccurrence(ctx context.Context, st store.Stores, occ models.NameOccurrence, candidates models.Candidates) (*models.ResolveResult, error) {
	item, err := models.NewReviewQueueItem(models.NewQueueItemID(), occ.FullName,
		candidates.ForQueue(models.MaxQueueCandidates),
		models.QueueProvenance{
			SourceURL:       occ.SourceURL,
			SourceContext:   occ.SourceContext,
			LocationContext: occ.LocationContext(),
		}, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	id, inserted, err := st.InsertQueueItem(ctx, item)
	if err != nil {
		return nil, err
	}
	if !inserted {
		s.logger.DebugContext(ctx, "pending review item already exists", "queue_id", id, "name", occ.FullName)
	}
	best, _ := candidates.Best()
	return &models.ResolveResult{
		Action:      models.ActionQueuedForReview,
		QueueItemID: &id,
		Candidates:  item.Candidates,
		Confidence:  best.Confidence,
	}, nil
}

func (s *Service) createFromOccurrence(ctx context.Context, st store.Stores, occ models.NameOccurrence) (*models.ResolveResult, error) {
	canonical, err := models.NewCanonicalPerson(models.NewCanonicalID(), occ.FullName, occ.CanonicalAttributes(), requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantAsInput(err)
	}
	if err := st.InsertCanonical(ctx, canonical); err != nil {
		return nil, err
	}
	id := canonical.ID
	return &models.ResolveResult{
		Action:      models.ActionCreatedNew,
		CanonicalID: &id,
		Confidence:  1.0,
	}, nil
}

// insertVariant writes v, treating an existing identical spelling as success.
func (s *Service) insertVariant(ctx context.Context, st store.Stores, v *models.NameVariant) error {
	inserted, err := st.InsertVariant(ctx, v)
	if err != nil {
		return err
	}
	if !inserted && s.metrics != nil {
		s.metrics.IncrementVariantAbsorbed()
	}
	return nil
}
