package models

import (
	"strings"
	"time"

	"lineage/internal/identity/names"
	"lineage/internal/identity/phonetic"
	dErrors "lineage/pkg/domain-errors"
)

// HumanConfirmedConfidence is the match confidence recorded when a reviewer
// links a queued name to a canonical.
const HumanConfirmedConfidence = 0.99

// NameVariant is a non-authoritative spelling that refers to exactly one canonical.
//
// Invariants:
//   - CanonicalID references an existing canonical
//   - (CanonicalID, lower(VariantName)) is unique
//   - VariantName differs (case-insensitively) from the canonical name
//   - LevenshteinDistance = lev(canonical name, VariantName)
type NameVariant struct {
	ID          VariantID   `json:"id"`
	CanonicalID CanonicalID `json:"canonical_id"`
	VariantName string      `json:"variant_name"`
	First       string      `json:"first"`
	Last        string      `json:"last"`
	PhoneticKeys
	SourceType          string      `json:"source_type"`
	SourceURL           string      `json:"source_url"`
	MatchMethod         MatchMethod `json:"match_method"`
	MatchConfidence     float64     `json:"match_confidence"`
	LevenshteinDistance int         `json:"levenshtein_distance"`
	CreatedBy           string      `json:"created_by"`
	CreatedAt           time.Time   `json:"created_at"`
}

// VariantAttributes is the provenance and match evidence for a new variant.
type VariantAttributes struct {
	SourceType      string      `json:"source_type"`
	SourceURL       string      `json:"source_url"`
	MatchMethod     MatchMethod `json:"match_method"`
	MatchConfidence float64     `json:"match_confidence"`
	CreatedBy       string      `json:"created_by"`
}

// NewNameVariant builds a variant spelling of canonical.
// A spelling equal to the canonical name is rejected so no degenerate
// self-variant can exist.
func NewNameVariant(id VariantID, canonical *CanonicalPerson, variantName string, attrs VariantAttributes, now time.Time) (*NameVariant, error) {
	if canonical == nil || canonical.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "variant requires a canonical")
	}
	name := names.Normalize(variantName)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "variant name cannot be empty")
	}
	if strings.EqualFold(name, canonical.CanonicalName) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "variant name equals canonical name")
	}
	method := attrs.MatchMethod
	if method == "" {
		method = MatchMethodAuto
	}
	if !method.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown match method")
	}
	if attrs.MatchConfidence < 0 || attrs.MatchConfidence > 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "match confidence must be within [0,1]")
	}
	parsed := names.Parse(name)
	return &NameVariant{
		ID:                  id,
		CanonicalID:         canonical.ID,
		VariantName:         name,
		First:               parsed.First,
		Last:                parsed.Last,
		PhoneticKeys:        KeysFor(parsed.First, parsed.Last),
		SourceType:          attrs.SourceType,
		SourceURL:           attrs.SourceURL,
		MatchMethod:         method,
		MatchConfidence:     attrs.MatchConfidence,
		LevenshteinDistance: phonetic.Levenshtein(canonical.CanonicalName, name),
		CreatedBy:           attrs.CreatedBy,
		CreatedAt:           now,
	}, nil
}

// IsSelfVariant reports whether name is the canonical's own spelling.
func IsSelfVariant(canonical *CanonicalPerson, name string) bool {
	return strings.EqualFold(names.Normalize(name), canonical.CanonicalName)
}

// VariantKey is the uniqueness key of a variant: canonical id plus lowercased spelling.
func VariantKey(canonicalID CanonicalID, variantName string) string {
	return canonicalID.String() + "|" + strings.ToLower(names.Normalize(variantName))
}
