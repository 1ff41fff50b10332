// Package postgres persists the identity core in PostgreSQL through
// database/sql and the pgx stdlib driver.
//
// Every store method runs on the transaction bound to its context when there
// is one (see pkg/platform/tx) and on the pool otherwise. Driver errors are
// classified into the sentinels of the store package.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lineage/internal/identity/models"
	"lineage/internal/identity/store"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// PostgreSQL error codes the store reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeUndefinedTable       = "42P01"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var (
	_ store.UnitOfWork = (*Store)(nil)
	_ store.Counter    = (*Store)(nil)
	_ store.LeadSource = (*Store)(nil)
	_ store.Stores     = (*Store)(nil)
)

// Store implements every identity store over one database.
type Store struct {
	db     *sql.DB
	runner *tx.Runner
}

type Option func(*storeConfig)

type storeConfig struct {
	txTimeout time.Duration
}

// WithTxTimeout bounds units of work whose context has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(c *storeConfig) {
		c.txTimeout = d
	}
}

// New constructs a Store.
func New(db *sql.DB, opts ...Option) *Store {
	cfg := storeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{db: db, runner: tx.NewRunner(db, cfg.txTimeout)}
}

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return classify("migrate schema", err)
	}
	return nil
}

// RunInTx runs fn in a repeatable-read transaction. Errors returned by fn
// pass through untouched. A commit rejected by a concurrent transaction is
// ErrSerialization; other failures to begin or commit are ErrUnavailable.
func (s *Store) RunInTx(ctx context.Context, mode store.TxMode, fn func(ctx context.Context, stores store.Stores) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: mode == store.ReadOnly}
	var fnErr error
	err := s.runner.Run(ctx, opts, func(ctx context.Context) error {
		fnErr = fn(ctx, s)
		return fnErr
	})
	switch {
	case err == nil, fnErr != nil:
		return err
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	case ctx.Err() != nil:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	case isSerializationFailure(err):
		return fmt.Errorf("run transaction: %w: %w", store.ErrSerialization, err)
	default:
		return fmt.Errorf("run transaction: %w: %w", store.ErrUnavailable, err)
	}
}

func (s *Store) exec(ctx context.Context) tx.Executor {
	return tx.ExecutorFor(ctx, s.db)
}

func (s *Store) CountCanonicals(ctx context.Context) (int64, error) {
	return s.count(ctx, "count canonicals", `SELECT count(*) FROM canonical_persons`)
}

func (s *Store) CountVariants(ctx context.Context) (int64, error) {
	return s.count(ctx, "count variants", `SELECT count(*) FROM name_variants`)
}

func (s *Store) CountQueueItems(ctx context.Context, status models.QueueStatus) (int64, error) {
	if status == "" {
		return s.count(ctx, "count queue items", `SELECT count(*) FROM name_match_queue`)
	}
	return s.count(ctx, "count queue items", `SELECT count(*) FROM name_match_queue WHERE status = $1`, string(status))
}

func (s *Store) CountLeads(ctx context.Context) (int64, error) {
	return s.count(ctx, "count leads", `SELECT count(*) FROM unconfirmed_persons`)
}

func (s *Store) CountMatchingLeads(ctx context.Context, q store.SimilarQuery) (int64, error) {
	return s.count(ctx, "count matching leads",
		`SELECT count(*) FROM unconfirmed_persons WHERE lower(full_name) LIKE $1 ESCAPE '\'`,
		containsPattern(q.Pattern))
}

func (s *Store) count(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify(op, err)
	}
	return n, nil
}

// ListLeads pages through unconfirmed_persons in lead id order.
func (s *Store) ListLeads(ctx context.Context, offset, limit int) ([]models.UnconfirmedPerson, error) {
	query := `
		SELECT lead_id, full_name, sex, birth_year, person_type, state, county,
			source_type, source_url, source_context, created_by, created_at
		FROM unconfirmed_persons
		ORDER BY lead_id
		OFFSET $1`
	args := []any{offset}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list leads", err)
	}
	defer rows.Close()

	var leads []models.UnconfirmedPerson
	for rows.Next() {
		var (
			lead       models.UnconfirmedPerson
			sex, ptype string
			birthYear  sql.NullInt64
		)
		o := &lead.Occurrence
		if err := rows.Scan(&lead.LeadID, &o.FullName, &sex, &birthYear, &ptype, &o.State, &o.County,
			&o.SourceType, &o.SourceURL, &o.SourceContext, &o.CreatedBy, &lead.CreatedAt); err != nil {
			return nil, classify("scan lead", err)
		}
		o.Sex = models.Sex(sex)
		o.PersonType = models.PersonType(ptype)
		o.BirthYear = intPtr(birthYear)
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list leads", err)
	}
	return leads, nil
}

// classify maps driver errors onto store sentinels, keeping the cause.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, store.ErrConflict, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, store.ErrNotFound, err)
		case codeUndefinedTable:
			return fmt.Errorf("%s: %w: %w", op, store.ErrMissingTable, err)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s: %w: %w", op, store.ErrSerialization, err)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		(pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
