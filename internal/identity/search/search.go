// Package search retrieves and ranks candidate canonicals for a query name.
//
// Retrieval is the union of five canonical predicates (exact name, surname
// Soundex, surname Metaphone, exact surname, initials within a surname
// length window) plus a probe of the variant spellings. Each hit is labelled,
// given an integer retrieval score, scored for confidence, and filtered by
// Levenshtein similarity before ranking.
package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"lineage/internal/identity/models"
	"lineage/internal/identity/phonetic"
	"lineage/internal/identity/score"
	dErrors "lineage/pkg/domain-errors"
)

const (
	// DefaultLimit caps the ranked candidate list.
	DefaultLimit = 10
	// MinSimilarity drops weak candidates unless labelled exact or soundex.
	MinSimilarity = 0.60
	// VariantMatchScore is the fixed retrieval score of a variant hit.
	VariantMatchScore = 80
)

// Retrieval score bonuses; each applies independently.
const (
	bonusExactName      = 100
	bonusLastSoundex    = 30
	bonusFirstSoundex   = 30
	bonusLastMetaphone  = 25
	bonusFirstMetaphone = 25
	bonusExactLast      = 40
	bonusExactFirst     = 40
	bonusLastInitial    = 15
	bonusFirstInitial   = 15
)

// Reader is the read side of the canonical and variant stores. Callers run
// a search inside one transaction so every predicate sees the same snapshot.
type Reader interface {
	FindCanonicalCandidates(ctx context.Context, q Query) ([]*models.CanonicalPerson, error)
	FindVariantCandidates(ctx context.Context, q Query) ([]*models.NameVariant, error)
	FindCanonicalsByIDs(ctx context.Context, ids []models.CanonicalID) ([]*models.CanonicalPerson, error)
}

// Context is where an occurrence was seen. It annotates candidates and never
// filters them.
type Context struct {
	State  string `json:"state,omitempty"`
	County string `json:"county,omitempty"`
}

// Searcher ranks candidates.
type Searcher struct {
	limit int
}

type Option func(*Searcher)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New constructs a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{limit: DefaultLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find returns up to the limit of candidates for fullName, best first, with
// no canonical repeated. Ranking is confidence desc, then retrieval score
// desc, then canonical id asc.
func (s *Searcher) Find(ctx context.Context, r Reader, fullName string, loc Context) (models.Candidates, error) {
	q := NewQuery(fullName)
	if q.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}

	canonicals, err := r.FindCanonicalCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find canonical candidates: %w", err)
	}
	known := make(map[models.CanonicalID]*models.CanonicalPerson, len(canonicals))
	merged := make(map[models.CanonicalID]models.Candidate, len(canonicals))
	for _, c := range canonicals {
		known[c.ID] = c
		mergeCandidate(merged, q.canonicalHit(c))
	}

	variants, err := r.FindVariantCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find variant candidates: %w", err)
	}
	if err := resolveVariantOwners(ctx, r, variants, known); err != nil {
		return nil, err
	}
	for _, v := range variants {
		owner, ok := known[v.CanonicalID]
		if !ok {
			continue
		}
		mergeCandidate(merged, q.variantHit(owner, v))
	}

	out := make(models.Candidates, 0, len(merged))
	for _, cand := range merged {
		if cand.Similarity < MinSimilarity &&
			cand.MatchType != models.MatchTypeExact && cand.MatchType != models.MatchTypeSoundex {
			continue
		}
		cand.LocationMatch = loc.matches(cand.Canonical)
		out = append(out, cand)
	}
	slices.SortFunc(out, compareCandidates)
	if len(out) > s.limit {
		out = out[:s.limit]
	}
	return out, nil
}

func resolveVariantOwners(ctx context.Context, r Reader, variants []*models.NameVariant, known map[models.CanonicalID]*models.CanonicalPerson) error {
	var missing []models.CanonicalID
	for _, v := range variants {
		if _, ok := known[v.CanonicalID]; !ok && !slices.Contains(missing, v.CanonicalID) {
			missing = append(missing, v.CanonicalID)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	owners, err := r.FindCanonicalsByIDs(ctx, missing)
	if err != nil {
		return fmt.Errorf("load variant canonicals: %w", err)
	}
	for _, c := range owners {
		known[c.ID] = c
	}
	return nil
}

// mergeCandidate keeps one entry per canonical. The label and retrieval
// score come from the higher-scoring hit; confidence, similarity and the
// matched spelling are the best seen across hits, so a confirmed variant
// spelling is not lost behind a canonical hit.
func mergeCandidate(merged map[models.CanonicalID]models.Candidate, cand models.Candidate) {
	existing, ok := merged[cand.Canonical.ID]
	if !ok {
		merged[cand.Canonical.ID] = cand
		return
	}
	keep, other := existing, cand
	if cand.MatchScore > existing.MatchScore {
		keep, other = cand, existing
	}
	if other.Confidence > keep.Confidence {
		keep.Confidence = other.Confidence
		keep.MatchedName = other.MatchedName
	}
	keep.Similarity = max(keep.Similarity, other.Similarity)
	merged[cand.Canonical.ID] = keep
}

func compareCandidates(a, b models.Candidate) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
		return c
	}
	return models.CompareCanonicalIDs(a.Canonical.ID, b.Canonical.ID)
}

func (q Query) canonicalHit(c *models.CanonicalPerson) models.Candidate {
	return models.Candidate{
		Canonical:   c,
		MatchType:   q.label(c),
		MatchScore:  q.matchScore(c),
		Confidence:  score.Confidence(canonicalName(c), q.scoreName()),
		Similarity:  phonetic.Similarity(c.CanonicalName, q.Name),
		MatchedName: c.CanonicalName,
	}
}

// variantHit scores a variant spelling's canonical. Confidence and
// similarity are taken against whichever of the canonical or variant
// spelling agrees more with the query.
func (q Query) variantHit(owner *models.CanonicalPerson, v *models.NameVariant) models.Candidate {
	hit := models.Candidate{
		Canonical:   owner,
		MatchType:   models.MatchTypeVariant,
		MatchScore:  VariantMatchScore,
		Confidence:  score.Confidence(canonicalName(owner), q.scoreName()),
		Similarity:  phonetic.Similarity(owner.CanonicalName, q.Name),
		MatchedName: owner.CanonicalName,
	}
	viaVariant := score.Confidence(score.Name{Full: v.VariantName, First: v.First, Last: v.Last}, q.scoreName())
	if viaVariant > hit.Confidence {
		hit.Confidence = viaVariant
		hit.MatchedName = v.VariantName
	}
	hit.Similarity = max(hit.Similarity, phonetic.Similarity(v.VariantName, q.Name))
	return hit
}

// label names the first predicate family a hit satisfies.
func (q Query) label(c *models.CanonicalPerson) models.MatchType {
	switch {
	case strings.EqualFold(c.CanonicalName, q.Name):
		return models.MatchTypeExact
	case agree(c.FirstSoundex, q.FirstSoundex) && agree(c.LastSoundex, q.LastSoundex):
		return models.MatchTypeSoundex
	case agree(c.FirstMetaphone, q.FirstMetaphone) && agree(c.LastMetaphone, q.LastMetaphone):
		return models.MatchTypeMetaphone
	case agree(c.LastSoundex, q.LastSoundex):
		return models.MatchTypeSoundexLastOnly
	case agree(initialOf(c.First), q.FirstInitial) && agree(initialOf(c.Last), q.LastInitial):
		return models.MatchTypeFirstLetter
	default:
		return models.MatchTypeFuzzy
	}
}

func (q Query) matchScore(c *models.CanonicalPerson) int {
	total := 0
	add := func(ok bool, bonus int) {
		if ok {
			total += bonus
		}
	}
	add(strings.EqualFold(c.CanonicalName, q.Name), bonusExactName)
	add(agree(c.LastSoundex, q.LastSoundex), bonusLastSoundex)
	add(agree(c.FirstSoundex, q.FirstSoundex), bonusFirstSoundex)
	add(agree(c.LastMetaphone, q.LastMetaphone), bonusLastMetaphone)
	add(agree(c.FirstMetaphone, q.FirstMetaphone), bonusFirstMetaphone)
	add(agreeFold(c.Last, q.Last), bonusExactLast)
	add(agreeFold(c.First, q.First), bonusExactFirst)
	add(agree(initialOf(c.Last), q.LastInitial), bonusLastInitial)
	add(agree(initialOf(c.First), q.FirstInitial), bonusFirstInitial)
	return total
}

func (loc Context) matches(c *models.CanonicalPerson) bool {
	if loc.State == "" || !strings.EqualFold(strings.TrimSpace(loc.State), c.PrimaryState) {
		return false
	}
	return loc.County == "" || strings.EqualFold(strings.TrimSpace(loc.County), c.PrimaryCounty)
}

func canonicalName(c *models.CanonicalPerson) score.Name {
	return score.Name{Full: c.CanonicalName, First: c.First, Last: c.Last}
}
