package service

import (
	"context"
	"strings"

	"lineage/internal/identity/models"
	"lineage/internal/identity/store"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/requestcontext"
)

const (
	DefaultQueueLimit = 50
	MaxQueueLimit     = 500
)

// ResolveRequest is a reviewer's adjudication of a pending queue item.
type ResolveRequest struct {
	Resolution models.Resolution
	ResolvedBy string
	Notes      string
}

// QueueItems lists queue items by priority desc, created_at asc. An empty
// status lists pending items.
func (s *Service) QueueItems(ctx context.Context, status models.QueueStatus, limit int) ([]*models.ReviewQueueItem, error) {
	if status == "" {
		status = models.QueueStatusPending
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown queue status")
	}
	limit = clampLimit(limit, DefaultQueueLimit, MaxQueueLimit)

	var items []*models.ReviewQueueItem
	err := s.uow.RunInTx(ctx, store.ReadOnly, func(ctx context.Context, st store.Stores) error {
		var err error
		items, err = st.ListQueueItems(ctx, status, limit)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to list queue items")
	}
	return items, nil
}

// ResolveQueueItem moves a pending item to resolved.
//
//   - linked_existing records the queued name as a human_confirmed variant
//     of the chosen canonical with confidence 0.99
//   - created_new links to the given canonical, or creates a
//     human_confirmed canonical from the queued name when none is given
//   - not_a_person and deferred close the item without linkage
//
// The transition and its writes commit together.
func (s *Service) ResolveQueueItem(ctx context.Context, id models.QueueItemID, req ResolveRequest) (*models.ReviewQueueItem, error) {
	if err := req.Resolution.Validate(); err != nil {
		return nil, err
	}
	resolvedBy := strings.TrimSpace(req.ResolvedBy)
	if resolvedBy == "" {
		resolvedBy = requestcontext.Reviewer(ctx)
	}

	var item *models.ReviewQueueItem
	err := s.uow.RunInTx(ctx, store.ReadWrite, func(ctx context.Context, st store.Stores) error {
		var err error
		item, err = st.FindQueueItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := item.CanTransition(); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		res := req.Resolution

		switch res.Type {
		case models.ResolutionLinkedExisting:
			if err := s.linkQueuedName(ctx, st, item, *res.CanonicalID, resolvedBy); err != nil {
				return err
			}
		case models.ResolutionCreatedNew:
			canonicalID, err := s.canonicalForQueuedName(ctx, st, item, res.CanonicalID, resolvedBy)
			if err != nil {
				return err
			}
			res.CanonicalID = &canonicalID
		}

		if err := item.ApplyResolution(res, resolvedBy, req.Notes, now); err != nil {
			return err
		}
		return st.UpdateQueueItem(ctx, item)
	})
	if err != nil {
		err = translateStoreError(err, "failed to resolve queue item")
		s.logError(ctx, "resolve queue item failed", err, "queue_id", id)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementAdjudication(string(item.Resolution.Type))
	}
	s.logger.InfoContext(ctx, "queue item resolved",
		"queue_id", id,
		"resolution", item.Resolution.Type,
		"resolved_by", resolvedBy,
	)
	return item, nil
}

// DismissQueueItem closes a pending item administratively, with no linkage.
func (s *Service) DismissQueueItem(ctx context.Context, id models.QueueItemID, dismissedBy, notes string) (*models.ReviewQueueItem, error) {
	dismissedBy = strings.TrimSpace(dismissedBy)
	if dismissedBy == "" {
		dismissedBy = requestcontext.Reviewer(ctx)
	}

	var item *models.ReviewQueueItem
	err := s.uow.RunInTx(ctx, store.ReadWrite, func(ctx context.Context, st store.Stores) error {
		var err error
		item, err = st.FindQueueItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := item.ApplyDismissal(dismissedBy, notes, requestcontext.Now(ctx)); err != nil {
			return err
		}
		return st.UpdateQueueItem(ctx, item)
	})
	if err != nil {
		err = translateStoreError(err, "failed to dismiss queue item")
		s.logError(ctx, "dismiss queue item failed", err, "queue_id", id)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementAdjudication(string(models.QueueStatusDismissed))
	}
	s.logger.InfoContext(ctx, "queue item dismissed", "queue_id", id, "dismissed_by", dismissedBy)
	return item, nil
}

func (s *Service) linkQueuedName(ctx context.Context, st store.Stores, item *models.ReviewQueueItem, canonicalID models.CanonicalID, reviewer string) error {
	canonical, err := st.FindCanonicalByID(ctx, canonicalID)
	if err != nil {
		return translateStoreError(err, "linked canonical not found")
	}
	if models.IsSelfVariant(canonical, item.UnconfirmedName) {
		return nil
	}
	variant, err := models.NewNameVariant(models.NewVariantID(), canonical, item.UnconfirmedName, models.VariantAttributes{
		SourceURL:       item.SourceURL,
		MatchMethod:     models.MatchMethodHumanConfirmed,
		MatchConfidence: models.HumanConfirmedConfidence,
		CreatedBy:       reviewer,
	}, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	return s.insertVariant(ctx, st, variant)
}

// canonicalForQueuedName returns the canonical a created_new adjudication
// points at, creating it from the queued name when the reviewer gave none.
func (s *Service) canonicalForQueuedName(ctx context.Context, st store.Stores, item *models.ReviewQueueItem, given *models.CanonicalID, reviewer string) (models.CanonicalID, error) {
	if given != nil {
		if _, err := st.FindCanonicalByID(ctx, *given); err != nil {
			return models.CanonicalID{}, translateStoreError(err, "created canonical not found")
		}
		return *given, nil
	}
	canonical, err := models.NewCanonicalPerson(models.NewCanonicalID(), item.UnconfirmedName, models.CanonicalAttributes{
		VerificationStatus: models.VerificationHumanConfirmed,
		CreatedBy:          reviewer,
	}, requestcontext.Now(ctx))
	if err != nil {
		return models.CanonicalID{}, invariantAsInput(err)
	}
	if err := st.InsertCanonical(ctx, canonical); err != nil {
		return models.CanonicalID{}, err
	}
	return canonical.ID, nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
