package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lineage/internal/identity/models"
)

const queueColumns = `
	id, unconfirmed_name, candidates, source_url, source_context, location_context,
	priority, status, resolution_type, resolution_canonical_id, resolution_reason,
	resolved_by, resolved_at, resolution_notes, created_at`

// InsertQueueItem relies on the partial unique index over pending items to
// suppress duplicates, then reads back the surviving item's id.
func (s *Store) InsertQueueItem(ctx context.Context, item *models.ReviewQueueItem) (models.QueueItemID, bool, error) {
	candidates, err := json.Marshal(item.Candidates)
	if err != nil {
		return models.QueueItemID{}, false, fmt.Errorf("marshal queue candidates: %w", err)
	}
	var id uuid.UUID
	err = s.exec(ctx).QueryRowContext(ctx, `
		INSERT INTO name_match_queue (
			id, unconfirmed_name, candidates, source_url, source_context,
			location_context, priority, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (lower(unconfirmed_name), source_url) WHERE status = 'pending' DO NOTHING
		RETURNING id`,
		uuid.UUID(item.ID), item.UnconfirmedName, candidates, item.SourceURL, item.SourceContext,
		item.LocationContext, item.Priority, string(item.Status), item.CreatedAt,
	).Scan(&id)
	if err == nil {
		return models.QueueItemID(id), true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.QueueItemID{}, false, classify("insert queue item", err)
	}

	err = s.exec(ctx).QueryRowContext(ctx, `
		SELECT id FROM name_match_queue
		WHERE lower(unconfirmed_name) = lower($1) AND source_url = $2 AND status = 'pending'`,
		item.UnconfirmedName, item.SourceURL,
	).Scan(&id)
	if err != nil {
		return models.QueueItemID{}, false, classify("find pending duplicate", err)
	}
	return models.QueueItemID(id), false, nil
}

func (s *Store) FindQueueItemForUpdate(ctx context.Context, id models.QueueItemID) (*models.ReviewQueueItem, error) {
	row := s.exec(ctx).QueryRowContext(ctx,
		`SELECT `+queueColumns+` FROM name_match_queue WHERE id = $1 FOR UPDATE`, uuid.UUID(id))
	item, err := scanQueueItem(row)
	if err != nil {
		return nil, classify("find queue item", err)
	}
	return item, nil
}

func (s *Store) UpdateQueueItem(ctx context.Context, item *models.ReviewQueueItem) error {
	var (
		resType     sql.NullString
		resCanon    uuid.NullUUID
		resReason   string
		resolvedAtV sql.NullTime
	)
	if item.Resolution != nil {
		resType = sql.NullString{String: string(item.Resolution.Type), Valid: true}
		resReason = item.Resolution.Reason
		if item.Resolution.CanonicalID != nil {
			resCanon = uuid.NullUUID{UUID: uuid.UUID(*item.Resolution.CanonicalID), Valid: true}
		}
	}
	if item.ResolvedAt != nil {
		resolvedAtV = sql.NullTime{Time: *item.ResolvedAt, Valid: true}
	}
	res, err := s.exec(ctx).ExecContext(ctx, `
		UPDATE name_match_queue SET
			status = $2,
			resolution_type = $3,
			resolution_canonical_id = $4,
			resolution_reason = $5,
			resolved_by = $6,
			resolved_at = $7,
			resolution_notes = $8
		WHERE id = $1`,
		uuid.UUID(item.ID), string(item.Status), resType, resCanon, resReason,
		item.ResolvedBy, resolvedAtV, item.ResolutionNotes,
	)
	if err != nil {
		return classify("update queue item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update queue item", err)
	}
	if n == 0 {
		return classify("update queue item", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) ListQueueItems(ctx context.Context, status models.QueueStatus, limit int) ([]*models.ReviewQueueItem, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM name_match_queue
		WHERE $1 = '' OR status = $1
		ORDER BY priority DESC, created_at ASC, id ASC
		LIMIT $2`, string(status), sqlLimit(limit))
	if err != nil {
		return nil, classify("list queue items", err)
	}
	defer rows.Close()

	var out []*models.ReviewQueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, classify("list queue items", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list queue items", err)
	}
	return out, nil
}

func scanQueueItem(row scanner) (*models.ReviewQueueItem, error) {
	var (
		item       models.ReviewQueueItem
		id         uuid.UUID
		candidates []byte
		status     string
		resType    sql.NullString
		resCanon   uuid.NullUUID
		resReason  string
		resolvedAt sql.NullTime
	)
	err := row.Scan(
		&id, &item.UnconfirmedName, &candidates, &item.SourceURL, &item.SourceContext, &item.LocationContext,
		&item.Priority, &status, &resType, &resCanon, &resReason,
		&item.ResolvedBy, &resolvedAt, &item.ResolutionNotes, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(candidates, &item.Candidates); err != nil {
		return nil, fmt.Errorf("unmarshal queue candidates: %w", err)
	}
	item.ID = models.QueueItemID(id)
	item.Status = models.QueueStatus(status)
	if resType.Valid {
		item.Resolution = &models.Resolution{Type: models.ResolutionType(resType.String), Reason: resReason}
		if resCanon.Valid {
			cid := models.CanonicalID(resCanon.UUID)
			item.Resolution.CanonicalID = &cid
		}
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		item.ResolvedAt = &t
	}
	return &item, nil
}
