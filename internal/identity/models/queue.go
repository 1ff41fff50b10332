package models

import (
	"strings"
	"time"

	"lineage/internal/identity/names"
	dErrors "lineage/pkg/domain-errors"
)

// MaxQueueCandidates bounds the candidates carried by a queue item.
const MaxQueueCandidates = 5

const (
	MinPriority = 1
	MaxPriority = 10
)

// QueueCandidate is a candidate canonical attached to a queue item, best first.
type QueueCandidate struct {
	CanonicalID   CanonicalID `json:"canonical_id"`
	CanonicalName string      `json:"canonical_name,omitempty"`
	Score         float64     `json:"score"`
}

// Resolution is a reviewer's decision on a queue item.
type Resolution struct {
	Type        ResolutionType `json:"type"`
	CanonicalID *CanonicalID   `json:"canonical_id,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// Validate checks that the resolution carries what its type requires.
// created_new may omit the canonical id; the service then creates one.
func (r Resolution) Validate() error {
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown resolution type")
	}
	if r.Type == ResolutionLinkedExisting && (r.CanonicalID == nil || r.CanonicalID.IsNil()) {
		return dErrors.New(dErrors.CodeValidation, "linked_existing requires canonical_id")
	}
	if (r.Type == ResolutionNotAPerson || r.Type == ResolutionDeferred) && r.CanonicalID != nil {
		return dErrors.New(dErrors.CodeValidation, string(r.Type)+" must not carry canonical_id")
	}
	return nil
}

// QueueProvenance describes where a queued name was seen.
type QueueProvenance struct {
	SourceURL       string
	SourceContext   string
	LocationContext string
}

// ReviewQueueItem is an undecided resolution awaiting human adjudication.
//
// Lifecycle: created pending; pending -> resolved (with Resolution) or
// pending -> dismissed. Resolved and dismissed are terminal.
type ReviewQueueItem struct {
	ID              QueueItemID      `json:"id"`
	UnconfirmedName string           `json:"unconfirmed_name"`
	Candidates      []QueueCandidate `json:"candidates"`
	SourceURL       string           `json:"source_url"`
	SourceContext   string           `json:"source_context"`
	LocationContext string           `json:"location_context"`
	Priority        int              `json:"priority"`
	Status          QueueStatus      `json:"status"`
	Resolution      *Resolution      `json:"resolution,omitempty"`
	ResolvedBy      string           `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	ResolutionNotes string           `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// PriorityFor maps the best candidate confidence to a review priority.
// Borderline auto-matches are the most valuable to review.
func PriorityFor(best float64, hasCandidates bool) int {
	switch {
	case !hasCandidates:
		return 3
	case best >= 0.80 && best < 0.85:
		return 8
	case best >= 0.70 && best < 0.80:
		return 6
	case best >= 0.60 && best < 0.70:
		return 4
	default:
		return 3
	}
}

// NewReviewQueueItem builds a pending item. Candidates beyond
// MaxQueueCandidates are dropped; the caller passes them best first.
func NewReviewQueueItem(id QueueItemID, unconfirmedName string, candidates []QueueCandidate, prov QueueProvenance, now time.Time) (*ReviewQueueItem, error) {
	name := names.Normalize(unconfirmedName)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "queued name cannot be empty")
	}
	if len(candidates) > MaxQueueCandidates {
		candidates = candidates[:MaxQueueCandidates]
	}
	best, has := 0.0, len(candidates) > 0
	if has {
		best = candidates[0].Score
	}
	return &ReviewQueueItem{
		ID:              id,
		UnconfirmedName: name,
		Candidates:      append([]QueueCandidate(nil), candidates...),
		SourceURL:       prov.SourceURL,
		SourceContext:   prov.SourceContext,
		LocationContext: prov.LocationContext,
		Priority:        PriorityFor(best, has),
		Status:          QueueStatusPending,
		CreatedAt:       now,
	}, nil
}

// CanTransition checks the item is still pending.
func (q *ReviewQueueItem) CanTransition() error {
	if q.Status != QueueStatusPending {
		return dErrors.New(dErrors.CodeInvalidState, "queue item is already "+string(q.Status))
	}
	return nil
}

// ApplyResolution moves a pending item to resolved.
func (q *ReviewQueueItem) ApplyResolution(res Resolution, resolvedBy, notes string, now time.Time) error {
	if err := q.CanTransition(); err != nil {
		return err
	}
	if err := res.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(resolvedBy) == "" {
		return dErrors.New(dErrors.CodeValidation, "resolved_by is required")
	}
	q.Status = QueueStatusResolved
	q.Resolution = &res
	q.ResolvedBy = resolvedBy
	q.ResolvedAt = &now
	q.ResolutionNotes = notes
	return nil
}

// ApplyDismissal closes a pending item administratively, with no linkage.
func (q *ReviewQueueItem) ApplyDismissal(dismissedBy, notes string, now time.Time) error {
	if err := q.CanTransition(); err != nil {
		return err
	}
	if strings.TrimSpace(dismissedBy) == "" {
		return dErrors.New(dErrors.CodeValidation, "dismissed_by is required")
	}
	q.Status = QueueStatusDismissed
	q.ResolvedBy = dismissedBy
	q.ResolvedAt = &now
	q.ResolutionNotes = notes
	return nil
}

// QueueDedupKey identifies pending items that would duplicate each other.
func QueueDedupKey(unconfirmedName, sourceURL string) string {
	return strings.ToLower(names.Normalize(unconfirmedName)) + "|" + sourceURL
}
