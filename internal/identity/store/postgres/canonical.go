package postgres

import (
	"context"
	"database/sql"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lineage/internal/identity/models"
	"lineage/internal/identity/score"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
)

const canonicalColumns = `
	id, canonical_name, first_name, middle_name, last_name, suffix,
	first_soundex, last_soundex, first_metaphone, last_metaphone,
	person_type, sex, birth_year_estimate, death_year_estimate,
	primary_state, primary_county, verification_status, confidence_score,
	created_by, created_at, updated_at`

func (s *Store) InsertCanonical(ctx context.Context, c *models.CanonicalPerson) error {
	query := `
		INSERT INTO canonical_persons (
			id, canonical_name, first_name, middle_name, last_name, suffix,
			first_soundex, last_soundex, first_metaphone, last_metaphone,
			first_initial, last_initial, last_length,
			person_type, sex, birth_year_estimate, death_year_estimate,
			primary_state, primary_county, verification_status, confidence_score,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := s.exec(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.CanonicalName, c.First, c.Middle, c.Last, c.Suffix,
		c.FirstSoundex, c.LastSoundex, c.FirstMetaphone, c.LastMetaphone,
		initial(c.First), initial(c.Last), utf8.RuneCountInString(c.Last),
		string(c.PersonType), string(c.Sex), nullInt(c.BirthYearEstimate), nullInt(c.DeathYearEstimate),
		c.PrimaryState, c.PrimaryCounty, string(c.VerificationStatus), c.ConfidenceScore,
		c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return classify("insert canonical", err)
	}
	return nil
}

func (s *Store) FindCanonicalByID(ctx context.Context, id models.CanonicalID) (*models.CanonicalPerson, error) {
	row := s.exec(ctx).QueryRowContext(ctx,
		`SELECT `+canonicalColumns+` FROM canonical_persons WHERE id = $1`, uuid.UUID(id))
	c, err := scanCanonical(row)
	if err != nil {
		return nil, classify("find canonical", err)
	}
	return c, nil
}

func (s *Store) FindCanonicalsByIDs(ctx context.Context, ids []models.CanonicalID) ([]*models.CanonicalPerson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	return s.queryCanonicals(ctx, "find canonicals by ids",
		`SELECT `+canonicalColumns+` FROM canonical_persons WHERE id = ANY($1::uuid[])`,
		pq.Array(raw))
}

// FindCanonicalCandidates issues the five retrieval predicates as one
// statement so they share a snapshot.
func (s *Store) FindCanonicalCandidates(ctx context.Context, q search.Query) ([]*models.CanonicalPerson, error) {
	lastLower, lastSoundex, lastMetaphone := "", "", ""
	if q.HasLast() {
		lastLower, lastSoundex, lastMetaphone = q.LastLower(), q.LastSoundex, q.LastMetaphone
	}
	firstInitial, lastInitial := "", ""
	if q.HasInitials() {
		firstInitial, lastInitial = q.FirstInitial, q.LastInitial
	}
	query := `
		SELECT ` + canonicalColumns + `
		FROM canonical_persons
		WHERE lower(canonical_name) = $1
			OR ($2 <> '' AND last_soundex = $2)
			OR ($3 <> '' AND last_metaphone = $3)
			OR ($4 <> '' AND lower(last_name) = $4)
			OR ($5 <> '' AND $6 <> '' AND first_initial = $5 AND last_initial = $6
				AND last_length BETWEEN $7 AND $8)`
	return s.queryCanonicals(ctx, "find canonical candidates", query,
		q.NameLower(), lastSoundex, lastMetaphone, lastLower,
		firstInitial, lastInitial, q.LastLen()-search.LastLenWindow, q.LastLen()+search.LastLenWindow)
}

func (s *Store) SimilarCanonicals(ctx context.Context, q store.SimilarQuery) ([]*models.CanonicalPerson, error) {
	query := `
		SELECT ` + canonicalColumns + `
		FROM canonical_persons
		WHERE lower(canonical_name) LIKE $1 ESCAPE '\'
			OR ($2 <> '' AND last_soundex = $2)
		ORDER BY canonical_name
		LIMIT $3`
	return s.queryCanonicals(ctx, "similar canonicals", query,
		containsPattern(q.Pattern), q.LastSoundex, sqlLimit(q.Limit))
}

func (s *Store) queryCanonicals(ctx context.Context, op, query string, args ...any) ([]*models.CanonicalPerson, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var out []*models.CanonicalPerson
	for rows.Next() {
		c, err := scanCanonical(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCanonical(row scanner) (*models.CanonicalPerson, error) {
	var (
		c                      models.CanonicalPerson
		id                     uuid.UUID
		personType, sex, state string
		birth, death           sql.NullInt64
	)
	err := row.Scan(
		&id, &c.CanonicalName, &c.First, &c.Middle, &c.Last, &c.Suffix,
		&c.FirstSoundex, &c.LastSoundex, &c.FirstMetaphone, &c.LastMetaphone,
		&personType, &sex, &birth, &death,
		&c.PrimaryState, &c.PrimaryCounty, &state, &c.ConfidenceScore,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = models.CanonicalID(id)
	c.PersonType = models.PersonType(personType)
	c.Sex = models.Sex(sex)
	c.VerificationStatus = models.VerificationStatus(state)
	c.BirthYearEstimate = intPtr(birth)
	c.DeathYearEstimate = intPtr(death)
	return &c, nil
}

func initial(s string) string {
	if c := score.Initial(s); c != 0 {
		return string(c)
	}
	return ""
}

// sqlLimit turns a non-positive limit into NULL, which LIMIT treats as none.
func sqlLimit(n int) sql.NullInt64 {
	if n <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
