package models

import (
	"strings"
	"time"

	"lineage/internal/identity/names"
	"lineage/internal/identity/phonetic"
	dErrors "lineage/pkg/domain-errors"
)

// DefaultCanonicalConfidence is the belief assigned to auto-created canonicals.
const DefaultCanonicalConfidence = 0.5

// PhoneticKeys are the precomputed retrieval keys for a first/last pair.
type PhoneticKeys struct {
	FirstSoundex   string `json:"first_soundex"`
	LastSoundex    string `json:"last_soundex"`
	FirstMetaphone string `json:"first_metaphone"`
	LastMetaphone  string `json:"last_metaphone"`
}

// KeysFor computes the phonetic keys of parsed name components.
func KeysFor(first, last string) PhoneticKeys {
	return PhoneticKeys{
		FirstSoundex:   phonetic.Soundex(first),
		LastSoundex:    phonetic.Soundex(last),
		FirstMetaphone: phonetic.Metaphone(first),
		LastMetaphone:  phonetic.Metaphone(last),
	}
}

// CanonicalPerson is the system's single record of belief about one
// historical individual.
//
// Invariants:
//   - CanonicalName is non-empty and whitespace-normalized
//   - at least one of First, Last is non-empty
//   - PhoneticKeys always equal KeysFor(First, Last); Rename recomputes them
//   - ConfidenceScore is in [0,1]
type CanonicalPerson struct {
	ID            CanonicalID `json:"id"`
	CanonicalName string      `json:"canonical_name"`
	First         string      `json:"first"`
	Middle        string      `json:"middle"`
	Last          string      `json:"last"`
	Suffix        string      `json:"suffix"`
	PhoneticKeys
	PersonType         PersonType         `json:"person_type"`
	Sex                Sex                `json:"sex"`
	BirthYearEstimate  *int               `json:"birth_year_estimate,omitempty"`
	DeathYearEstimate  *int               `json:"death_year_estimate,omitempty"`
	PrimaryState       string             `json:"primary_state"`
	PrimaryCounty      string             `json:"primary_county"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	ConfidenceScore    float64            `json:"confidence_score"`
	CreatedBy          string             `json:"created_by"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CanonicalAttributes is the optional metadata supplied when creating a canonical.
type CanonicalAttributes struct {
	PersonType         PersonType         `json:"person_type"`
	Sex                Sex                `json:"sex"`
	BirthYear          *int               `json:"birth_year,omitempty"`
	DeathYear          *int               `json:"death_year,omitempty"`
	State              string             `json:"state"`
	County             string             `json:"county"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Confidence         *float64           `json:"confidence,omitempty"`
	CreatedBy          string             `json:"created_by"`
}

// NewCanonicalPerson builds a canonical from a full name, parsing it and
// computing its phonetic keys.
func NewCanonicalPerson(id CanonicalID, fullName string, attrs CanonicalAttributes, now time.Time) (*CanonicalPerson, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "canonical id is required")
	}
	status := attrs.VerificationStatus
	if status == "" {
		status = VerificationAutoCreated
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown verification status")
	}
	confidence := DefaultCanonicalConfidence
	if attrs.Confidence != nil {
		confidence = *attrs.Confidence
	}
	if confidence < 0 || confidence > 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "confidence must be within [0,1]")
	}
	c := &CanonicalPerson{
		ID:                 id,
		PersonType:         attrs.PersonType.OrUnknown(),
		Sex:                attrs.Sex.OrUnknown(),
		BirthYearEstimate:  attrs.BirthYear,
		DeathYearEstimate:  attrs.DeathYear,
		PrimaryState:       strings.TrimSpace(attrs.State),
		PrimaryCounty:      strings.TrimSpace(attrs.County),
		VerificationStatus: status,
		ConfidenceScore:    confidence,
		CreatedBy:          attrs.CreatedBy,
		CreatedAt:          now,
	}
	if err := c.Rename(fullName, now); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename replaces the authoritative spelling and recomputes parsed
// components and phonetic keys.
func (c *CanonicalPerson) Rename(fullName string, now time.Time) error {
	name := names.Normalize(fullName)
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "canonical name cannot be empty")
	}
	parsed := names.Parse(name)
	if parsed.IsEmpty() {
		return dErrors.New(dErrors.CodeInvariantViolation, "canonical name must contain a first or last name")
	}
	c.CanonicalName = name
	c.First, c.Middle, c.Last, c.Suffix = parsed.First, parsed.Middle, parsed.Last, parsed.Suffix
	c.PhoneticKeys = KeysFor(parsed.First, parsed.Last)
	c.UpdatedAt = now
	return nil
}

// KeysConsistent reports whether the stored phonetic keys match the parsed components.
func (c *CanonicalPerson) KeysConsistent() bool {
	return c.PhoneticKeys == KeysFor(c.First, c.Last)
}

// Parsed returns the parsed name components.
func (c *CanonicalPerson) Parsed() names.Parsed {
	return names.Parsed{First: c.First, Middle: c.Middle, Last: c.Last, Suffix: c.Suffix}
}
