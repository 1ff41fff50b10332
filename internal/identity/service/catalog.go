package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"lineage/internal/identity/models"
	"lineage/internal/identity/names"
	"lineage/internal/identity/phonetic"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/requestcontext"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100

	// similarPoolFactor widens the store lookup so ranking has room to
	// reorder before truncation.
	similarPoolFactor = 5
)

// CanonicalDetails is a canonical with every variant spelling that points at it.
type CanonicalDetails struct {
	Canonical *models.CanonicalPerson `json:"canonical"`
	Variants  []*models.NameVariant   `json:"variants"`
}

// CreateCanonical stores a new canonical for fullName.
func (s *Service) CreateCanonical(ctx context.Context, fullName string, attrs models.CanonicalAttributes) (*models.CanonicalPerson, error) {
	canonical, err := models.NewCanonicalPerson(models.NewCanonicalID(), fullName, attrs, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantAsInput(err)
	}
	err = s.uow.RunInTx(ctx, store.ReadWrite, func(ctx context.Context, st store.Stores) error {
		return st.InsertCanonical(ctx, canonical)
	})
	if err != nil {
		err = translateStoreError(err, "failed to create canonical")
		s.logError(ctx, "create canonical failed", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "canonical created", "canonical_id", canonical.ID, "name", canonical.CanonicalName)
	return canonical, nil
}

// AddVariant records variantName as a spelling of the canonical. Without an
// explicit method the spelling is treated as human_confirmed. Adding a
// spelling that already exists returns the stored variant.
func (s *Service) AddVariant(ctx context.Context, canonicalID models.CanonicalID, variantName string, attrs models.VariantAttributes) (*models.NameVariant, error) {
	if names.Normalize(variantName) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "variant_name is required")
	}
	if attrs.MatchMethod == "" {
		attrs.MatchMethod = models.MatchMethodHumanConfirmed
		if attrs.MatchConfidence == 0 {
			attrs.MatchConfidence = models.HumanConfirmedConfidence
		}
	}

	var variant *models.NameVariant
	err := s.uow.RunInTx(ctx, store.ReadWrite, func(ctx context.Context, st store.Stores) error {
		canonical, err := st.FindCanonicalByID(ctx, canonicalID)
		if err != nil {
			return translateStoreError(err, "canonical not found")
		}
		if models.IsSelfVariant(canonical, variantName) {
			return dErrors.New(dErrors.CodeValidation, "variant name equals the canonical name")
		}
		variant, err = models.NewNameVariant(models.NewVariantID(), canonical, variantName, attrs, requestcontext.Now(ctx))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		inserted, err := st.InsertVariant(ctx, variant)
		if err != nil || inserted {
			return err
		}
		existing, err := st.ListVariants(ctx, canonicalID)
		if err != nil {
			return err
		}
		key := models.VariantKey(canonicalID, variantName)
		for _, v := range existing {
			if models.VariantKey(v.CanonicalID, v.VariantName) == key {
				variant = v
				return nil
			}
		}
		return errors.New("absorbed variant not readable")
	})
	if err != nil {
		err = translateStoreError(err, "failed to add variant")
		s.logError(ctx, "add variant failed", err, "canonical_id", canonicalID)
		return nil, err
	}
	return variant, nil
}

// GetCanonical loads a canonical and its variants.
func (s *Service) GetCanonical(ctx context.Context, id models.CanonicalID) (*CanonicalDetails, error) {
	details := &CanonicalDetails{}
	err := s.uow.RunInTx(ctx, store.ReadOnly, func(ctx context.Context, st store.Stores) error {
		var err error
		if details.Canonical, err = st.FindCanonicalByID(ctx, id); err != nil {
			return err
		}
		details.Variants, err = st.ListVariants(ctx, id)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to load canonical")
	}
	return details, nil
}

// FindCandidates runs candidate search on a read-only snapshot.
func (s *Service) FindCandidates(ctx context.Context, fullName string, loc search.Context) (models.Candidates, error) {
	var candidates models.Candidates
	err := s.uow.RunInTx(ctx, store.ReadOnly, func(ctx context.Context, st store.Stores) error {
		var err error
		candidates, err = s.searcher.Find(ctx, st, fullName, loc)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to find candidates")
	}
	if s.metrics != nil {
		s.metrics.ObserveCandidates(len(candidates))
	}
	return candidates, nil
}

// SearchSimilar is a free-text lookup over canonical and variant spellings,
// ranked by Jaro-Winkler similarity. Scraper leads are reported only as a
// count; a missing leads table counts as zero.
func (s *Service) SearchSimilar(ctx context.Context, query string, limit int) (*models.SimilarResults, error) {
	text := names.Normalize(query)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "query is required")
	}
	limit = clampLimit(limit, DefaultSearchLimit, MaxSearchLimit)
	sq := store.SimilarQuery{
		Pattern:     strings.ToLower(text),
		LastSoundex: phonetic.Soundex(surnameKey(text)),
		Limit:       limit * similarPoolFactor,
	}

	results := &models.SimilarResults{}
	err := s.uow.RunInTx(ctx, store.ReadOnly, func(ctx context.Context, st store.Stores) error {
		canonicals, err := st.SimilarCanonicals(ctx, sq)
		if err != nil {
			return err
		}
		for _, c := range canonicals {
			results.Canonical = append(results.Canonical, models.SimilarCanonical{
				Canonical:  c,
				Similarity: phonetic.JaroWinkler(c.CanonicalName, text),
			})
		}
		variants, err := st.SimilarVariants(ctx, sq)
		if err != nil {
			return err
		}
		for _, v := range variants {
			v.Similarity = phonetic.JaroWinkler(v.Variant.VariantName, text)
			results.Variant = append(results.Variant, v)
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to search names")
	}

	slices.SortStableFunc(results.Canonical, func(a, b models.SimilarCanonical) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	slices.SortStableFunc(results.Variant, func(a, b models.SimilarVariant) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	results.Canonical = truncate(results.Canonical, limit)
	results.Variant = truncate(results.Variant, limit)

	leads, err := s.counter.CountMatchingLeads(ctx, sq)
	switch {
	case errors.Is(err, store.ErrMissingTable):
		s.logger.WarnContext(ctx, "unconfirmed leads table missing; reporting zero")
	case err != nil:
		return nil, translateStoreError(err, "failed to count matching leads")
	default:
		results.UnconfirmedCount = leads
	}
	results.Total = int64(len(results.Canonical)+len(results.Variant)) + results.UnconfirmedCount
	return results, nil
}

// surnameKey is the component whose Soundex widens a free-text search: the
// surname, or the only token of a one-word query.
func surnameKey(text string) string {
	p := names.Parse(text)
	if p.Last != "" {
		return p.Last
	}
	return p.First
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
