package models

import "iter"

// Candidate is a canonical retrieved for a query, with its retrieval label,
// integer retrieval score, Scorer confidence and Levenshtein similarity.
// LocationMatch is informational and does not affect ranking.
type Candidate struct {
	Canonical     *CanonicalPerson `json:"canonical"`
	MatchType     MatchType        `json:"match_type"`
	MatchScore    int              `json:"match_score"`
	Confidence    float64          `json:"confidence"`
	Similarity    float64          `json:"similarity"`
	MatchedName   string           `json:"matched_name"`
	LocationMatch bool             `json:"location_match"`
}

// Candidates is a ranked candidate list, best first, without duplicate canonicals.
type Candidates []Candidate

// All yields candidates in rank order.
func (c Candidates) All() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, cand := range c {
			if !yield(cand) {
				return
			}
		}
	}
}

// Best returns the top-ranked candidate.
func (c Candidates) Best() (Candidate, bool) {
	if len(c) == 0 {
		return Candidate{}, false
	}
	return c[0], true
}

// ForQueue returns the top n candidates as queue entries.
func (c Candidates) ForQueue(n int) []QueueCandidate {
	n = min(n, len(c))
	out := make([]QueueCandidate, 0, n)
	for _, cand := range c[:n] {
		out = append(out, QueueCandidate{
			CanonicalID:   cand.Canonical.ID,
			CanonicalName: cand.Canonical.CanonicalName,
			Score:         cand.Confidence,
		})
	}
	return out
}

// ResolveResult is the outcome of resolving one occurrence.
type ResolveResult struct {
	Action      Action           `json:"action"`
	CanonicalID *CanonicalID     `json:"canonical_id,omitempty"`
	QueueItemID *QueueItemID     `json:"queue_item_id,omitempty"`
	Candidates  []QueueCandidate `json:"candidates,omitempty"`
	Confidence  float64          `json:"confidence"`
}

// Stats are independent row counts; a missing backing table counts as 0.
type Stats struct {
	Canonicals    int64 `json:"canonicals"`
	Variants      int64 `json:"variants"`
	PendingQueue  int64 `json:"pending_queue"`
	ResolvedQueue int64 `json:"resolved_queue"`
	Unconfirmed   int64 `json:"unconfirmed"`
}

// SimilarCanonical is a canonical hit from a free-text search.
type SimilarCanonical struct {
	Canonical  *CanonicalPerson `json:"canonical"`
	Similarity float64          `json:"similarity"`
}

// SimilarVariant is a variant hit from a free-text search.
type SimilarVariant struct {
	Variant       *NameVariant `json:"variant"`
	CanonicalName string       `json:"canonical_name"`
	Similarity    float64      `json:"similarity"`
}

// SimilarResults groups search hits. Unconfirmed leads are reported as a
// pass-through count only.
type SimilarResults struct {
	Canonical        []SimilarCanonical `json:"canonical"`
	Variant          []SimilarVariant   `json:"variant"`
	UnconfirmedCount int64              `json:"unconfirmed_count"`
	Total            int64              `json:"total"`
}
