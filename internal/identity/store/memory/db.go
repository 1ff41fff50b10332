// Package memory is an in-process implementation of the identity stores for
// tests, local development and small batch runs.
//
// Error Contract:
//   - ErrNotFound when the requested entity does not exist
//   - ErrConflict when a unique key rejects a write
//   - ErrMissingTable from counts of tables disabled with WithoutTable
//
// One mutex serialises units of work. A unit of work mutates a private copy
// of the state that replaces the shared state only when fn succeeds, so a
// failed or cancelled unit of work leaves nothing behind.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"lineage/internal/identity/models"
	"lineage/internal/identity/store"
	dErrors "lineage/pkg/domain-errors"
)

// Table names, for WithoutTable.
const (
	TableCanonicals = "canonical_persons"
	TableVariants   = "name_variants"
	TableQueue      = "name_match_queue"
	TableLeads      = "unconfirmed_persons"
)

type state struct {
	canonicals  map[models.CanonicalID]models.CanonicalPerson
	variants    map[models.VariantID]models.NameVariant
	variantKeys map[string]models.VariantID
	queue       map[models.QueueItemID]models.ReviewQueueItem
	pendingKeys map[string]models.QueueItemID
	leads       []models.UnconfirmedPerson
}

func newState() *state {
	return &state{
		canonicals:  make(map[models.CanonicalID]models.CanonicalPerson),
		variants:    make(map[models.VariantID]models.NameVariant),
		variantKeys: make(map[string]models.VariantID),
		queue:       make(map[models.QueueItemID]models.ReviewQueueItem),
		pendingKeys: make(map[string]models.QueueItemID),
	}
}

func (s *state) clone() *state {
	out := &state{
		canonicals:  make(map[models.CanonicalID]models.CanonicalPerson, len(s.canonicals)),
		variants:    make(map[models.VariantID]models.NameVariant, len(s.variants)),
		variantKeys: make(map[string]models.VariantID, len(s.variantKeys)),
		queue:       make(map[models.QueueItemID]models.ReviewQueueItem, len(s.queue)),
		pendingKeys: make(map[string]models.QueueItemID, len(s.pendingKeys)),
		leads:       s.leads,
	}
	for k, v := range s.canonicals {
		out.canonicals[k] = v
	}
	for k, v := range s.variants {
		out.variants[k] = v
	}
	for k, v := range s.variantKeys {
		out.variantKeys[k] = v
	}
	for k, v := range s.queue {
		out.queue[k] = v
	}
	for k, v := range s.pendingKeys {
		out.pendingKeys[k] = v
	}
	return out
}

var (
	_ store.UnitOfWork = (*DB)(nil)
	_ store.Counter    = (*DB)(nil)
	_ store.LeadSource = (*DB)(nil)
)

// DB holds every identity table in memory.
type DB struct {
	mu      sync.RWMutex
	state   *state
	missing map[string]bool
}

type Option func(*DB)

// WithoutTable makes counts over the named table fail with ErrMissingTable,
// mimicking a deployment where that table was never created.
func WithoutTable(name string) Option {
	return func(db *DB) {
		db.missing[name] = true
	}
}

// New constructs an empty DB.
func New(opts ...Option) *DB {
	db := &DB{state: newState(), missing: make(map[string]bool)}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// RunInTx runs fn against a private copy of the state and publishes it when
// fn returns nil. The mode is accepted for interface parity; every unit of
// work here is fully serialised.
func (db *DB) RunInTx(ctx context.Context, _ store.TxMode, fn func(ctx context.Context, stores store.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	work := &Tx{state: db.state.clone()}
	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	db.state = work.state
	return nil
}

// AddLeads appends scraper leads, assigning sequential lead ids.
func (db *DB) AddLeads(occurrences ...models.NameOccurrence) {
	db.mu.Lock()
	defer db.mu.Unlock()
	leads := append([]models.UnconfirmedPerson(nil), db.state.leads...)
	for _, o := range occurrences {
		leads = append(leads, models.UnconfirmedPerson{
			LeadID:     int64(len(leads) + 1),
			Occurrence: o,
		})
	}
	db.state.leads = leads
}

func (db *DB) CountCanonicals(_ context.Context) (int64, error) {
	return db.count(TableCanonicals, func(s *state) int { return len(s.canonicals) })
}

func (db *DB) CountVariants(_ context.Context) (int64, error) {
	return db.count(TableVariants, func(s *state) int { return len(s.variants) })
}

func (db *DB) CountQueueItems(_ context.Context, status models.QueueStatus) (int64, error) {
	return db.count(TableQueue, func(s *state) int {
		n := 0
		for _, item := range s.queue {
			if status == "" || item.Status == status {
				n++
			}
		}
		return n
	})
}

func (db *DB) CountLeads(_ context.Context) (int64, error) {
	return db.count(TableLeads, func(s *state) int { return len(s.leads) })
}

func (db *DB) CountMatchingLeads(_ context.Context, q store.SimilarQuery) (int64, error) {
	return db.count(TableLeads, func(s *state) int {
		n := 0
		for _, lead := range s.leads {
			if strings.Contains(strings.ToLower(lead.Occurrence.FullName), q.Pattern) {
				n++
			}
		}
		return n
	})
}

// ListLeads returns up to limit leads after skipping offset; limit <= 0
// means the rest.
func (db *DB) ListLeads(_ context.Context, offset, limit int) ([]models.UnconfirmedPerson, error) {
	if db.missing[TableLeads] {
		return nil, fmt.Errorf("list leads: %w", store.ErrMissingTable)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	leads := db.state.leads
	if offset >= len(leads) {
		return nil, nil
	}
	end := len(leads)
	if limit > 0 {
		end = min(end, offset+limit)
	}
	return append([]models.UnconfirmedPerson(nil), leads[offset:end]...), nil
}

func (db *DB) count(table string, fn func(*state) int) (int64, error) {
	if db.missing[table] {
		return 0, fmt.Errorf("count %s: %w", table, store.ErrMissingTable)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return int64(fn(db.state)), nil
}
