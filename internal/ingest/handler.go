package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"lineage/internal/identity/models"
	dErrors "lineage/pkg/domain-errors"
)

// Resolver resolves one occurrence.
type Resolver interface {
	ResolveOrCreate(ctx context.Context, occ models.NameOccurrence) (*models.ResolveResult, error)
}

// OccurrenceHandler decodes JSON name occurrences and resolves them.
// Undecodable or invalid occurrences are logged and skipped; store failures
// are returned so the message is retried. A conflict with a concurrent
// consumer is retried once, then the occurrence is skipped.
type OccurrenceHandler struct {
	resolver Resolver
	logger   *slog.Logger
}

func NewOccurrenceHandler(resolver Resolver, logger *slog.Logger) *OccurrenceHandler {
	return &OccurrenceHandler{resolver: resolver, logger: logger}
}

func (h *OccurrenceHandler) Handle(ctx context.Context, msg *Message) error {
	var occ models.NameOccurrence
	if err := json.Unmarshal(msg.Value, &occ); err != nil {
		h.logger.WarnContext(ctx, "skipping undecodable occurrence",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	res, err := h.resolver.ResolveOrCreate(ctx, occ)
	if dErrors.HasCode(err, dErrors.CodeConflict) && ctx.Err() == nil {
		h.logger.DebugContext(ctx, "retrying occurrence after conflict", "offset", msg.Offset, "error", err)
		res, err = h.resolver.ResolveOrCreate(ctx, occ)
	}
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeInvalidInput, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
			h.logger.WarnContext(ctx, "skipping invalid occurrence",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
			return nil
		case dErrors.CodeConflict:
			h.logger.WarnContext(ctx, "skipping occurrence after repeated conflict",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
			return nil
		}
		return err
	}

	h.logger.DebugContext(ctx, "occurrence ingested",
		"offset", msg.Offset,
		"action", res.Action,
		"confidence", res.Confidence,
	)
	return nil
}
