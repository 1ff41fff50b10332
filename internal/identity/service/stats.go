package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"lineage/internal/identity/models"
	"lineage/internal/identity/store"
)

// Stats computes the five counts concurrently and independently. A count
// whose table is missing is reported as 0; any other failure fails the call.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	counts := []struct {
		name  string
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{"canonicals", &stats.Canonicals, s.counter.CountCanonicals},
		{"variants", &stats.Variants, s.counter.CountVariants},
		{"pending_queue", &stats.PendingQueue, func(ctx context.Context) (int64, error) {
			return s.counter.CountQueueItems(ctx, models.QueueStatusPending)
		}},
		{"resolved_queue", &stats.ResolvedQueue, func(ctx context.Context) (int64, error) {
			return s.counter.CountQueueItems(ctx, models.QueueStatusResolved)
		}},
		{"unconfirmed", &stats.Unconfirmed, s.counter.CountLeads},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := c.count(gctx)
			if errors.Is(err, store.ErrMissingTable) {
				s.logger.WarnContext(ctx, "stats table missing; reporting zero", "count", c.name)
				return nil
			}
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, translateStoreError(err, "failed to compute stats")
	}
	return &stats, nil
}
