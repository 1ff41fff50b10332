// Package store declares the persistence contracts of the identity core.
// Implementations live in store/memory and store/postgres; both return the
// sentinel errors from pkg/platform/sentinel.
package store

import (
	"context"

	"lineage/internal/identity/models"
	"lineage/internal/identity/search"
	"lineage/pkg/platform/sentinel"
)

// Re-exported so callers depend on one package.
var (
	ErrNotFound      = sentinel.ErrNotFound
	ErrConflict      = sentinel.ErrConflict
	ErrUnavailable   = sentinel.ErrUnavailable
	ErrSerialization = sentinel.ErrSerialization
	ErrMissingTable  = sentinel.ErrMissingTable
)

// CanonicalStore owns canonical persons.
type CanonicalStore interface {
	// InsertCanonical persists c with its phonetic keys. ErrConflict on a
	// duplicate id.
	InsertCanonical(ctx context.Context, c *models.CanonicalPerson) error
	FindCanonicalByID(ctx context.Context, id models.CanonicalID) (*models.CanonicalPerson, error)
	SimilarCanonicals(ctx context.Context, q SimilarQuery) ([]*models.CanonicalPerson, error)
}

// VariantStore owns name variants.
type VariantStore interface {
	// InsertVariant reports false without error when (canonical_id,
	// lower(variant_name)) already exists. ErrNotFound when the canonical
	// does not exist.
	InsertVariant(ctx context.Context, v *models.NameVariant) (bool, error)
	VariantExists(ctx context.Context, canonicalID models.CanonicalID, variantName string) (bool, error)
	ListVariants(ctx context.Context, canonicalID models.CanonicalID) ([]*models.NameVariant, error)
	SimilarVariants(ctx context.Context, q SimilarQuery) ([]models.SimilarVariant, error)
}

// QueueStore owns review queue items.
type QueueStore interface {
	// InsertQueueItem stores a pending item unless a pending item with the
	// same lowercased name and source url exists; it returns the id of the
	// stored or existing item and whether a row was written.
	InsertQueueItem(ctx context.Context, item *models.ReviewQueueItem) (models.QueueItemID, bool, error)
	// FindQueueItemForUpdate loads an item and locks it for the rest of the
	// transaction.
	FindQueueItemForUpdate(ctx context.Context, id models.QueueItemID) (*models.ReviewQueueItem, error)
	UpdateQueueItem(ctx context.Context, item *models.ReviewQueueItem) error
	// ListQueueItems orders by priority desc, created_at asc. An empty status
	// lists every status.
	ListQueueItems(ctx context.Context, status models.QueueStatus, limit int) ([]*models.ReviewQueueItem, error)
}

// LeadSource pages through the scraper-owned unconfirmed_persons table in
// lead id order. It runs outside any unit of work.
type LeadSource interface {
	ListLeads(ctx context.Context, offset, limit int) ([]models.UnconfirmedPerson, error)
}

// Stores is everything a unit of work can touch.
type Stores interface {
	search.Reader
	CanonicalStore
	VariantStore
	QueueStore
}

// TxMode selects the isolation of a unit of work.
type TxMode int

const (
	// ReadWrite runs at repeatable read so the search and the write that
	// follows it see one snapshot.
	ReadWrite TxMode = iota
	// ReadOnly is a repeatable-read, read-only snapshot.
	ReadOnly
)

// UnitOfWork runs fn atomically: every write made through stores commits
// together or not at all.
type UnitOfWork interface {
	RunInTx(ctx context.Context, mode TxMode, fn func(ctx context.Context, stores Stores) error) error
}

// Counter computes counts outside any unit of work, each on its own, so a
// missing table fails only that count, with ErrMissingTable.
type Counter interface {
	CountCanonicals(ctx context.Context) (int64, error)
	CountVariants(ctx context.Context) (int64, error)
	CountQueueItems(ctx context.Context, status models.QueueStatus) (int64, error)
	CountLeads(ctx context.Context) (int64, error)
	CountMatchingLeads(ctx context.Context, q SimilarQuery) (int64, error)
}

// SimilarQuery is a free-text lookup over names.
type SimilarQuery struct {
	// Pattern is the lowercased text matched as a substring.
	Pattern string
	// LastSoundex widens the lookup to phonetic surname matches when set.
	LastSoundex string
	Limit       int
}
