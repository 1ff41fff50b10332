package models

import (
	"strings"
	"time"

	"lineage/internal/identity/names"
	dErrors "lineage/pkg/domain-errors"
)

// NameOccurrence is one appearance of a name in a source document, as
// emitted by a scraper. It is input only; the core never persists it.
type NameOccurrence struct {
	FullName      string     `json:"full_name"`
	Sex           Sex        `json:"sex,omitempty"`
	BirthYear     *int       `json:"birth_year,omitempty"`
	PersonType    PersonType `json:"person_type,omitempty"`
	State         string     `json:"state,omitempty"`
	County        string     `json:"county,omitempty"`
	SourceType    string     `json:"source_type,omitempty"`
	SourceURL     string     `json:"source_url,omitempty"`
	SourceContext string     `json:"source_context,omitempty"`
	CreatedBy     string     `json:"created_by,omitempty"`
}

// Normalized returns a copy with whitespace in the name and location collapsed.
func (o NameOccurrence) Normalized() NameOccurrence {
	o.FullName = names.Normalize(o.FullName)
	o.State = strings.TrimSpace(o.State)
	o.County = strings.TrimSpace(o.County)
	o.SourceURL = strings.TrimSpace(o.SourceURL)
	return o
}

// Validate rejects occurrences whose name is empty or whitespace-only.
func (o NameOccurrence) Validate() error {
	if names.Normalize(o.FullName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	return nil
}

// LocationContext renders "county, state" for queue items.
func (o NameOccurrence) LocationContext() string {
	parts := make([]string, 0, 2)
	if o.County != "" {
		parts = append(parts, o.County)
	}
	if o.State != "" {
		parts = append(parts, o.State)
	}
	return strings.Join(parts, ", ")
}

// CanonicalAttributes derives creation metadata for a new canonical.
func (o NameOccurrence) CanonicalAttributes() CanonicalAttributes {
	return CanonicalAttributes{
		PersonType: o.PersonType,
		Sex:        o.Sex,
		BirthYear:  o.BirthYear,
		State:      o.State,
		County:     o.County,
		CreatedBy:  o.CreatedBy,
	}
}

// UnconfirmedPerson is a raw scraper lead from the unconfirmed_persons table.
type UnconfirmedPerson struct {
	LeadID     int64          `json:"lead_id"`
	Occurrence NameOccurrence `json:"occurrence"`
	CreatedAt  time.Time      `json:"created_at"`
}
