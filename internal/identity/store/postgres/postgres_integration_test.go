//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lineage/internal/identity/models"
	"lineage/internal/identity/search"
	"lineage/internal/identity/store"
	"lineage/internal/identity/store/postgres"
	"lineage/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	ctx      context.Context
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.ctx = context.Background()
	s.Require().NoError(postgres.Migrate(s.ctx, s.postgres.DB))
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx, "name_match_queue", "name_variants", "canonical_persons", "unconfirmed_persons")
	s.Require().NoError(err)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) canonical(name string) *models.CanonicalPerson {
	birth := 1841
	c, err := models.NewCanonicalPerson(models.NewCanonicalID(), name, models.CanonicalAttributes{
		PersonType: models.PersonTypeEnslaved,
		Sex:        models.SexFemale,
		BirthYear:  &birth,
		State:      "Maryland",
		County:     "Montgomery",
		CreatedBy:  "test",
	}, s.now)
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) tx(fn func(ctx context.Context, st store.Stores) error) error {
	return s.store.RunInTx(s.ctx, store.ReadWrite, fn)
}

func (s *PostgresStoreSuite) TestCanonicalRoundTrip() {
	c := s.canonical("Sally Swailes")
	s.Require().NoError(s.tx(func(ctx context.Context, st store.Stores) error {
		return st.InsertCanonical(ctx, c)
	}))

	got, err := s.store.FindCanonicalByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.CanonicalName, got.CanonicalName)
	s.Equal(c.PhoneticKeys, got.PhoneticKeys)
	s.True(got.KeysConsistent())
	s.Require().NotNil(got.BirthYearEstimate)
	s.Equal(1841, *got.BirthYearEstimate)
	s.Nil(got.DeathYearEstimate)
	s.True(c.CreatedAt.Equal(got.CreatedAt))

	s.ErrorIs(s.store.InsertCanonical(s.ctx, c), store.ErrConflict)
	_, err = s.store.FindCanonicalByID(s.ctx, models.NewCanonicalID())
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRollbackOnError() {
	boom := errors.New("boom")
	err := s.tx(func(ctx context.Context, st store.Stores) error {
		s.Require().NoError(st.InsertCanonical(ctx, s.canonical("Sally Swailes")))
		return boom
	})
	s.ErrorIs(err, boom)

	n, err := s.store.CountCanonicals(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *PostgresStoreSuite) TestCandidatePredicatesMatchMemory() {
	swailes := s.canonical("Sally Swailes")
	swann := s.canonical("Sally Swann")
	kolman := s.canonical("John Kolman")
	for _, c := range []*models.CanonicalPerson{swailes, swann, kolman} {
		s.Require().NoError(s.store.InsertCanonical(s.ctx, c))
	}

	cases := map[string][]models.CanonicalID{
		"Sally Swailes": {swailes.ID, swann.ID},
		"Ann Swailes":   {swailes.ID},
		"John Holman":   nil,
		"Sally":         nil,
	}
	for name, want := range cases {
		got, err := s.store.FindCanonicalCandidates(s.ctx, search.NewQuery(name))
		s.Require().NoError(err, name)
		ids := make([]models.CanonicalID, 0, len(got))
		for _, c := range got {
			ids = append(ids, c.ID)
		}
		s.ElementsMatch(want, ids, name)
	}
}

func (s *PostgresStoreSuite) TestVariantUniqueAndForeignKey() {
	c := s.canonical("Sally Swailes")
	s.Require().NoError(s.store.InsertCanonical(s.ctx, c))

	v, err := models.NewNameVariant(models.NewVariantID(), c, "Sally Swailer", models.VariantAttributes{
		MatchMethod: models.MatchMethodAutoSoundex, MatchConfidence: 1,
	}, s.now)
	s.Require().NoError(err)
	inserted, err := s.store.InsertVariant(s.ctx, v)
	s.Require().NoError(err)
	s.True(inserted)

	dup, err := models.NewNameVariant(models.NewVariantID(), c, "SALLY SWAILER", models.VariantAttributes{}, s.now)
	s.Require().NoError(err)
	inserted, err = s.store.InsertVariant(s.ctx, dup)
	s.Require().NoError(err)
	s.False(inserted)

	variants, err := s.store.ListVariants(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().Len(variants, 1)
	s.Equal(1, variants[0].LevenshteinDistance)
	s.Equal(models.MatchMethodAutoSoundex, variants[0].MatchMethod)

	orphan, err := models.NewNameVariant(models.NewVariantID(), s.canonical("Nobody Here"), "Nobody Hear", models.VariantAttributes{}, s.now)
	s.Require().NoError(err)
	_, err = s.store.InsertVariant(s.ctx, orphan)
	s.ErrorIs(err, store.ErrNotFound)
}

// TestConcurrentVariantInserts verifies that racing inserts of one spelling
// leave exactly one row and no errors.
func (s *PostgresStoreSuite) TestConcurrentVariantInserts() {
	c := s.canonical("Sally Swailes")
	s.Require().NoError(s.store.InsertCanonical(s.ctx, c))

	const goroutines = 20
	var wg sync.WaitGroup
	var written atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := models.NewNameVariant(models.NewVariantID(), c, "Sally Swailer", models.VariantAttributes{}, s.now)
			if err != nil {
				return
			}
			ok, err := s.store.InsertVariant(s.ctx, v)
			if err == nil && ok {
				written.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), written.Load())
	n, err := s.store.CountVariants(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

// TestVariantInsertRacingCommittedTransaction covers two transactions that
// both see the spelling missing. The one whose snapshot predates the other's
// commit is rejected as retryable, and a fresh transaction sees the row.
func (s *PostgresStoreSuite) TestVariantInsertRacingCommittedTransaction() {
	c := s.canonical("Sally Swailes")
	s.Require().NoError(s.store.InsertCanonical(s.ctx, c))
	variant := func() *models.NameVariant {
		v, err := models.NewNameVariant(models.NewVariantID(), c, "Sally Swailer", models.VariantAttributes{}, s.now)
		s.Require().NoError(err)
		return v
	}
	late := variant()

	snapshotTaken := make(chan struct{})
	firstCommitted := make(chan struct{})
	lateErr := make(chan error, 1)
	go func() {
		lateErr <- s.tx(func(ctx context.Context, st store.Stores) error {
			exists, err := st.VariantExists(ctx, c.ID, "Sally Swailer")
			close(snapshotTaken)
			if err != nil {
				return err
			}
			if exists {
				return errors.New("variant visible before first commit")
			}
			<-firstCommitted
			_, err = st.InsertVariant(ctx, late)
			return err
		})
	}()

	<-snapshotTaken
	s.Require().NoError(s.tx(func(ctx context.Context, st store.Stores) error {
		exists, err := st.VariantExists(ctx, c.ID, "Sally Swailer")
		if err != nil || exists {
			return errors.Join(err, errors.New("variant unexpectedly present"))
		}
		_, err = st.InsertVariant(ctx, variant())
		return err
	}))
	close(firstCommitted)

	err := <-lateErr
	s.Require().Error(err)
	s.ErrorIs(err, store.ErrSerialization)

	var inserted bool
	s.Require().NoError(s.tx(func(ctx context.Context, st store.Stores) error {
		var err error
		inserted, err = st.InsertVariant(ctx, variant())
		return err
	}))
	s.False(inserted)
	n, err := s.store.CountVariants(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *PostgresStoreSuite) TestQueueLifecycle() {
	c := s.canonical("Sally Swailes")
	s.Require().NoError(s.store.InsertCanonical(s.ctx, c))
	item, err := models.NewReviewQueueItem(models.NewQueueItemID(), "Sally Salmon",
		[]models.QueueCandidate{{CanonicalID: c.ID, CanonicalName: c.CanonicalName, Score: 0.7}},
		models.QueueProvenance{SourceURL: "https://archive.example/1", LocationContext: "Montgomery, Maryland"}, s.now)
	s.Require().NoError(err)

	id, inserted, err := s.store.InsertQueueItem(s.ctx, item)
	s.Require().NoError(err)
	s.True(inserted)
	s.Equal(item.ID, id)

	dup, err := models.NewReviewQueueItem(models.NewQueueItemID(), "SALLY SALMON", nil,
		models.QueueProvenance{SourceURL: "https://archive.example/1"}, s.now)
	s.Require().NoError(err)
	id, inserted, err = s.store.InsertQueueItem(s.ctx, dup)
	s.Require().NoError(err)
	s.False(inserted)
	s.Equal(item.ID, id)

	s.Require().NoError(s.tx(func(ctx context.Context, st store.Stores) error {
		got, err := st.FindQueueItemForUpdate(ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(item.Candidates, got.Candidates)
		s.Equal(6, got.Priority)
		cid := c.ID
		s.Require().NoError(got.ApplyResolution(models.Resolution{
			Type: models.ResolutionLinkedExisting, CanonicalID: &cid,
		}, "reviewer1", "same ledger", s.now))
		return st.UpdateQueueItem(ctx, got)
	}))

	resolved, err := s.store.ListQueueItems(s.ctx, models.QueueStatusResolved, 10)
	s.Require().NoError(err)
	s.Require().Len(resolved, 1)
	s.Require().NotNil(resolved[0].Resolution)
	s.Equal(models.ResolutionLinkedExisting, resolved[0].Resolution.Type)
	s.Equal(c.ID, *resolved[0].Resolution.CanonicalID)
	s.Equal("reviewer1", resolved[0].ResolvedBy)
}

func (s *PostgresStoreSuite) TestMissingTableCount() {
	_, err := s.postgres.DB.ExecContext(s.ctx, `ALTER TABLE unconfirmed_persons RENAME TO unconfirmed_persons_away`)
	s.Require().NoError(err)
	defer func() {
		_, err := s.postgres.DB.ExecContext(s.ctx, `ALTER TABLE unconfirmed_persons_away RENAME TO unconfirmed_persons`)
		s.Require().NoError(err)
	}()

	_, err = s.store.CountLeads(s.ctx)
	s.ErrorIs(err, store.ErrMissingTable)
}

func (s *PostgresStoreSuite) TestLeadsPaging() {
	_, err := s.postgres.DB.ExecContext(s.ctx, `
		INSERT INTO unconfirmed_persons (full_name, state, county, birth_year)
		VALUES ('Sally Swailer', 'Maryland', 'Montgomery', 1841), ('William Key', '', '', NULL)`)
	s.Require().NoError(err)

	leads, err := s.store.ListLeads(s.ctx, 0, 1)
	s.Require().NoError(err)
	s.Require().Len(leads, 1)
	s.Equal("Sally Swailer", leads[0].Occurrence.FullName)
	s.Require().NotNil(leads[0].Occurrence.BirthYear)

	leads, err = s.store.ListLeads(s.ctx, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(leads, 1)
	s.Nil(leads[0].Occurrence.BirthYear)

	n, err := s.store.CountMatchingLeads(s.ctx, store.SimilarQuery{Pattern: "swail"})
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}
