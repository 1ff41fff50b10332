package handler

import (
	"strings"

	"lineage/internal/identity/models"
	"lineage/internal/identity/names"
	dErrors "lineage/pkg/domain-errors"
)

const maxNameLength = 512

// ResolveOccurrenceRequest is the body of POST /v1/occurrences/resolve.
type ResolveOccurrenceRequest struct {
	models.NameOccurrence
}

// Validate implements httputil.Validatable.
func (r *ResolveOccurrenceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.FullName) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "full_name is too long")
	}
	r.NameOccurrence = r.Normalized()
	return r.NameOccurrence.Validate()
}

// CreateCanonicalRequest is the body of POST /v1/canonicals.
type CreateCanonicalRequest struct {
	FullName string `json:"full_name"`
	models.CanonicalAttributes
}

func (r *CreateCanonicalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.FullName) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "full_name is too long")
	}
	r.FullName = names.Normalize(r.FullName)
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	if r.VerificationStatus != "" && !r.VerificationStatus.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown verification_status")
	}
	return nil
}

// AddVariantRequest is the body of POST /v1/canonicals/{id}/variants.
type AddVariantRequest struct {
	VariantName string `json:"variant_name"`
	models.VariantAttributes
}

func (r *AddVariantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.VariantName) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "variant_name is too long")
	}
	r.VariantName = names.Normalize(r.VariantName)
	if r.VariantName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "variant_name is required")
	}
	if r.MatchMethod != "" && !r.MatchMethod.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown match_method")
	}
	if r.MatchConfidence < 0 || r.MatchConfidence > 1 {
		return dErrors.New(dErrors.CodeValidation, "match_confidence must be within [0,1]")
	}
	return nil
}

// ResolveQueueItemRequest is the body of POST /v1/queue/{id}/resolve.
// resolved_by defaults to the authenticated reviewer.
type ResolveQueueItemRequest struct {
	ResolutionType models.ResolutionType `json:"resolution_type"`
	CanonicalID    *models.CanonicalID   `json:"canonical_id,omitempty"`
	Reason         string                `json:"reason,omitempty"`
	ResolvedBy     string                `json:"resolved_by,omitempty"`
	Notes          string                `json:"notes,omitempty"`
}

func (r *ResolveQueueItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ResolvedBy = strings.TrimSpace(r.ResolvedBy)
	return r.Resolution().Validate()
}

func (r *ResolveQueueItemRequest) Resolution() models.Resolution {
	return models.Resolution{
		Type:        r.ResolutionType,
		CanonicalID: r.CanonicalID,
		Reason:      strings.TrimSpace(r.Reason),
	}
}

// DismissQueueItemRequest is the body of POST /v1/queue/{id}/dismiss.
type DismissQueueItemRequest struct {
	DismissedBy string `json:"dismissed_by,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (r *DismissQueueItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.DismissedBy = strings.TrimSpace(r.DismissedBy)
	return nil
}
