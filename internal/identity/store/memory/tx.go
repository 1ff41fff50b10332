package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"lineage/internal/identity/models"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
)

// Tx is the view of the state inside one unit of work. It takes no locks;
// DB.RunInTx holds the lock for its lifetime.
type Tx struct {
	state *state
}

var _ store.Stores = (*Tx)(nil)

func (t *Tx) InsertCanonical(_ context.Context, c *models.CanonicalPerson) error {
	if _, ok := t.state.canonicals[c.ID]; ok {
		return fmt.Errorf("canonical %s: %w", c.ID, store.ErrConflict)
	}
	t.state.canonicals[c.ID] = *c
	return nil
}

func (t *Tx) FindCanonicalByID(_ context.Context, id models.CanonicalID) (*models.CanonicalPerson, error) {
	c, ok := t.state.canonicals[id]
	if !ok {
		return nil, fmt.Errorf("canonical %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (t *Tx) FindCanonicalsByIDs(_ context.Context, ids []models.CanonicalID) ([]*models.CanonicalPerson, error) {
	out := make([]*models.CanonicalPerson, 0, len(ids))
	for _, id := range ids {
		if c, ok := t.state.canonicals[id]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (t *Tx) FindCanonicalCandidates(_ context.Context, q search.Query) ([]*models.CanonicalPerson, error) {
	var out []*models.CanonicalPerson
	for _, c := range t.state.canonicals {
		if q.MatchesCanonical(&c) {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (t *Tx) SimilarCanonicals(_ context.Context, q store.SimilarQuery) ([]*models.CanonicalPerson, error) {
	var out []*models.CanonicalPerson
	for _, c := range t.state.canonicals {
		if similarName(q, c.CanonicalName, c.LastSoundex) {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.CanonicalPerson) int {
		return cmp.Compare(a.CanonicalName, b.CanonicalName)
	})
	return limited(out, q.Limit), nil
}

func (t *Tx) InsertVariant(_ context.Context, v *models.NameVariant) (bool, error) {
	if _, ok := t.state.canonicals[v.CanonicalID]; !ok {
		return false, fmt.Errorf("variant canonical %s: %w", v.CanonicalID, store.ErrNotFound)
	}
	key := models.VariantKey(v.CanonicalID, v.VariantName)
	if _, ok := t.state.variantKeys[key]; ok {
		return false, nil
	}
	t.state.variants[v.ID] = *v
	t.state.variantKeys[key] = v.ID
	return true, nil
}

func (t *Tx) VariantExists(_ context.Context, canonicalID models.CanonicalID, variantName string) (bool, error) {
	_, ok := t.state.variantKeys[models.VariantKey(canonicalID, variantName)]
	return ok, nil
}

func (t *Tx) ListVariants(_ context.Context, canonicalID models.CanonicalID) ([]*models.NameVariant, error) {
	var out []*models.NameVariant
	for _, v := range t.state.variants {
		if v.CanonicalID == canonicalID {
			out = append(out, &v)
		}
	}
	slices.SortFunc(out, func(a, b *models.NameVariant) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (t *Tx) FindVariantCandidates(_ context.Context, q search.Query) ([]*models.NameVariant, error) {
	var out []*models.NameVariant
	for _, v := range t.state.variants {
		if q.MatchesVariant(&v) {
			out = append(out, &v)
		}
	}
	return out, nil
}

func (t *Tx) SimilarVariants(_ context.Context, q store.SimilarQuery) ([]models.SimilarVariant, error) {
	var out []models.SimilarVariant
	for _, v := range t.state.variants {
		if !similarName(q, v.VariantName, v.LastSoundex) {
			continue
		}
		out = append(out, models.SimilarVariant{
			Variant:       &v,
			CanonicalName: t.state.canonicals[v.CanonicalID].CanonicalName,
		})
	}
	slices.SortFunc(out, func(a, b models.SimilarVariant) int {
		return cmp.Compare(a.Variant.VariantName, b.Variant.VariantName)
	})
	return limited(out, q.Limit), nil
}

func (t *Tx) InsertQueueItem(_ context.Context, item *models.ReviewQueueItem) (models.QueueItemID, bool, error) {
	key := models.QueueDedupKey(item.UnconfirmedName, item.SourceURL)
	if existing, ok := t.state.pendingKeys[key]; ok {
		return existing, false, nil
	}
	if _, ok := t.state.queue[item.ID]; ok {
		return models.QueueItemID{}, false, fmt.Errorf("queue item %s: %w", item.ID, store.ErrConflict)
	}
	t.state.queue[item.ID] = copyQueueItem(*item)
	t.state.pendingKeys[key] = item.ID
	return item.ID, true, nil
}

func (t *Tx) FindQueueItemForUpdate(_ context.Context, id models.QueueItemID) (*models.ReviewQueueItem, error) {
	item, ok := t.state.queue[id]
	if !ok {
		return nil, fmt.Errorf("queue item %s: %w", id, store.ErrNotFound)
	}
	item = copyQueueItem(item)
	return &item, nil
}

func (t *Tx) UpdateQueueItem(_ context.Context, item *models.ReviewQueueItem) error {
	if _, ok := t.state.queue[item.ID]; !ok {
		return fmt.Errorf("queue item %s: %w", item.ID, store.ErrNotFound)
	}
	t.state.queue[item.ID] = copyQueueItem(*item)
	if item.Status != models.QueueStatusPending {
		key := models.QueueDedupKey(item.UnconfirmedName, item.SourceURL)
		if t.state.pendingKeys[key] == item.ID {
			delete(t.state.pendingKeys, key)
		}
	}
	return nil
}

func (t *Tx) ListQueueItems(_ context.Context, status models.QueueStatus, limit int) ([]*models.ReviewQueueItem, error) {
	var out []*models.ReviewQueueItem
	for _, item := range t.state.queue {
		if status != "" && item.Status != status {
			continue
		}
		item = copyQueueItem(item)
		out = append(out, &item)
	}
	slices.SortFunc(out, func(a, b *models.ReviewQueueItem) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return limited(out, limit), nil
}

func similarName(q store.SimilarQuery, name, lastSoundex string) bool {
	if strings.Contains(strings.ToLower(name), q.Pattern) {
		return true
	}
	return q.LastSoundex != "" && q.LastSoundex == lastSoundex
}

func copyQueueItem(item models.ReviewQueueItem) models.ReviewQueueItem {
	item.Candidates = slices.Clone(item.Candidates)
	if item.Resolution != nil {
		res := *item.Resolution
		item.Resolution = &res
	}
	return item
}

func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
