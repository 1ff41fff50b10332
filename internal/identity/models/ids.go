package models

import (
	"strings"

	"github.com/google/uuid"

	dErrors "lineage/pkg/domain-errors"
)

// Typed identifiers keep canonical, variant and queue ids from being mixed up.
type (
	CanonicalID uuid.UUID
	VariantID   uuid.UUID
	QueueItemID uuid.UUID
)

func NewCanonicalID() CanonicalID { return CanonicalID(uuid.New()) }
func NewVariantID() VariantID     { return VariantID(uuid.New()) }
func NewQueueItemID() QueueItemID { return QueueItemID(uuid.New()) }

func (id CanonicalID) String() string { return uuid.UUID(id).String() }
func (id VariantID) String() string   { return uuid.UUID(id).String() }
func (id QueueItemID) String() string { return uuid.UUID(id).String() }

func (id CanonicalID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id QueueItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id CanonicalID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id VariantID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id QueueItemID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *CanonicalID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *VariantID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *QueueItemID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ParseCanonicalID parses a canonical id at a trust boundary.
func ParseCanonicalID(s string) (CanonicalID, error) {
	u, err := parseUUID(s, "canonical_id")
	return CanonicalID(u), err
}

// ParseQueueItemID parses a queue item id at a trust boundary.
func ParseQueueItemID(s string) (QueueItemID, error) {
	u, err := parseUUID(s, "queue_id")
	return QueueItemID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	return u, nil
}

// CompareCanonicalIDs orders ids bytewise; used as the final ranking tie-break.
func CompareCanonicalIDs(a, b CanonicalID) int {
	return strings.Compare(string(a[:]), string(b[:]))
}
