package postgres

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"

	"lineage/internal/identity/models"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
)

const variantColumns = `
	v.id, v.canonical_id, v.variant_name, v.first_name, v.last_name,
	v.first_soundex, v.last_soundex, v.first_metaphone, v.last_metaphone,
	v.source_type, v.source_url, v.match_method, v.match_confidence,
	v.levenshtein_distance, v.created_by, v.created_at`

// InsertVariant absorbs a duplicate (canonical_id, lower(variant_name)) and
// reports whether a row was written.
func (s *Store) InsertVariant(ctx context.Context, v *models.NameVariant) (bool, error) {
	query := `
		INSERT INTO name_variants (
			id, canonical_id, variant_name, first_name, last_name,
			first_soundex, last_soundex, first_metaphone, last_metaphone,
			first_initial, last_initial, last_length,
			source_type, source_url, match_method, match_confidence,
			levenshtein_distance, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19)
		ON CONFLICT (canonical_id, lower(variant_name)) DO NOTHING`
	res, err := s.exec(ctx).ExecContext(ctx, query,
		uuid.UUID(v.ID), uuid.UUID(v.CanonicalID), v.VariantName, v.First, v.Last,
		v.FirstSoundex, v.LastSoundex, v.FirstMetaphone, v.LastMetaphone,
		initial(v.First), initial(v.Last), utf8.RuneCountInString(v.Last),
		v.SourceType, v.SourceURL, string(v.MatchMethod), v.MatchConfidence,
		v.LevenshteinDistance, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		return false, classify("insert variant", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("insert variant", err)
	}
	return n == 1, nil
}

func (s *Store) VariantExists(ctx context.Context, canonicalID models.CanonicalID, variantName string) (bool, error) {
	var exists bool
	err := s.exec(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM name_variants
			WHERE canonical_id = $1 AND lower(variant_name) = lower($2)
		)`, uuid.UUID(canonicalID), variantName).Scan(&exists)
	if err != nil {
		return false, classify("variant exists", err)
	}
	return exists, nil
}

func (s *Store) ListVariants(ctx context.Context, canonicalID models.CanonicalID) ([]*models.NameVariant, error) {
	return s.queryVariants(ctx, "list variants", `
		SELECT `+variantColumns+`
		FROM name_variants v
		WHERE v.canonical_id = $1
		ORDER BY v.created_at, v.id`, uuid.UUID(canonicalID))
}

func (s *Store) FindVariantCandidates(ctx context.Context, q search.Query) ([]*models.NameVariant, error) {
	lastSoundex := ""
	if q.HasLast() {
		lastSoundex = q.LastSoundex
	}
	firstInitial, lastInitial := "", ""
	if q.HasInitials() {
		firstInitial, lastInitial = q.FirstInitial, q.LastInitial
	}
	return s.queryVariants(ctx, "find variant candidates", `
		SELECT `+variantColumns+`
		FROM name_variants v
		WHERE lower(v.variant_name) = $1
			OR ($2 <> '' AND v.last_soundex = $2)
			OR ($3 <> '' AND $4 <> '' AND v.first_initial = $3 AND v.last_initial = $4
				AND v.last_length BETWEEN $5 AND $6)`,
		q.NameLower(), lastSoundex, firstInitial, lastInitial,
		q.LastLen()-search.LastLenWindow, q.LastLen()+search.LastLenWindow)
}

func (s *Store) SimilarVariants(ctx context.Context, q store.SimilarQuery) ([]models.SimilarVariant, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `
		SELECT `+variantColumns+`, c.canonical_name
		FROM name_variants v
		JOIN canonical_persons c ON c.id = v.canonical_id
		WHERE lower(v.variant_name) LIKE $1 ESCAPE '\'
			OR ($2 <> '' AND v.last_soundex = $2)
		ORDER BY v.variant_name
		LIMIT $3`,
		containsPattern(q.Pattern), q.LastSoundex, sqlLimit(q.Limit))
	if err != nil {
		return nil, classify("similar variants", err)
	}
	defer rows.Close()

	var out []models.SimilarVariant
	for rows.Next() {
		var canonicalName string
		v, err := scanVariant(rows, &canonicalName)
		if err != nil {
			return nil, classify("similar variants", err)
		}
		out = append(out, models.SimilarVariant{Variant: v, CanonicalName: canonicalName})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("similar variants", err)
	}
	return out, nil
}

func (s *Store) queryVariants(ctx context.Context, op, query string, args ...any) ([]*models.NameVariant, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var out []*models.NameVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func scanVariant(row scanner, extra ...any) (*models.NameVariant, error) {
	var (
		v               models.NameVariant
		id, canonicalID uuid.UUID
		method          string
	)
	dest := []any{
		&id, &canonicalID, &v.VariantName, &v.First, &v.Last,
		&v.FirstSoundex, &v.LastSoundex, &v.FirstMetaphone, &v.LastMetaphone,
		&v.SourceType, &v.SourceURL, &method, &v.MatchConfidence,
		&v.LevenshteinDistance, &v.CreatedBy, &v.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	v.ID = models.VariantID(id)
	v.CanonicalID = models.CanonicalID(canonicalID)
	v.MatchMethod = models.MatchMethod(method)
	return &v, nil
}
