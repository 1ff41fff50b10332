package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lineage/pkg/domain-errors"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewCanonicalPerson(t *testing.T) {
	t.Run("parses the name and precomputes phonetic keys", func(t *testing.T) {
		c, err := NewCanonicalPerson(NewCanonicalID(), "  William \n Key ", CanonicalAttributes{State: "Maryland"}, now)
		require.NoError(t, err)
		assert.Equal(t, "William Key", c.CanonicalName)
		assert.Equal(t, "William", c.First)
		assert.Equal(t, "Key", c.Last)
		assert.Equal(t, "K000", c.LastSoundex)
		assert.True(t, c.KeysConsistent())
		assert.Equal(t, VerificationAutoCreated, c.VerificationStatus)
		assert.Equal(t, DefaultCanonicalConfidence, c.ConfidenceScore)
		assert.Equal(t, PersonTypeUnknown, c.PersonType)
		assert.Equal(t, SexUnknown, c.Sex)
	})

	t.Run("rename recomputes keys", func(t *testing.T) {
		c, err := NewCanonicalPerson(NewCanonicalID(), "Sally Swann", CanonicalAttributes{}, now)
		require.NoError(t, err)
		require.NoError(t, c.Rename("Sally Swailes", now.Add(time.Hour)))
		assert.Equal(t, "S420", c.LastSoundex)
		assert.True(t, c.KeysConsistent())
		assert.Equal(t, now.Add(time.Hour), c.UpdatedAt)
	})

	t.Run("rejects names without first or last", func(t *testing.T) {
		for _, name := range []string{"", "   ", "Jr."} {
			_, err := NewCanonicalPerson(NewCanonicalID(), name, CanonicalAttributes{}, now)
			require.Error(t, err, name)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		}
	})

	t.Run("rejects out of range confidence", func(t *testing.T) {
		bad := 1.5
		_, err := NewCanonicalPerson(NewCanonicalID(), "Ruth", CanonicalAttributes{Confidence: &bad}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestNewNameVariant(t *testing.T) {
	canonical, err := NewCanonicalPerson(NewCanonicalID(), "Sally Swailes", CanonicalAttributes{}, now)
	require.NoError(t, err)

	t.Run("records edit distance to the canonical name", func(t *testing.T) {
		v, err := NewNameVariant(NewVariantID(), canonical, "Sally Swailer", VariantAttributes{
			MatchMethod:     MatchMethodAutoSoundex,
			MatchConfidence: 0.9,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, canonical.ID, v.CanonicalID)
		assert.Equal(t, 1, v.LevenshteinDistance)
		assert.Equal(t, KeysFor("Sally", "Swailer"), v.PhoneticKeys)
	})

	t.Run("rejects a self variant regardless of case", func(t *testing.T) {
		_, err := NewNameVariant(NewVariantID(), canonical, "SALLY  swailes", VariantAttributes{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("defaults method to auto", func(t *testing.T) {
		v, err := NewNameVariant(NewVariantID(), canonical, "Sallie Swailes", VariantAttributes{}, now)
		require.NoError(t, err)
		assert.Equal(t, MatchMethodAuto, v.MatchMethod)
	})

	t.Run("variant key is case-insensitive", func(t *testing.T) {
		assert.Equal(t, VariantKey(canonical.ID, "Sally Swailer"), VariantKey(canonical.ID, " sally  SWAILER"))
	})
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		best float64
		has  bool
		want int
	}{
		{0.84, true, 8},
		{0.80, true, 8},
		{0.79, true, 6},
		{0.70, true, 6},
		{0.69, true, 4},
		{0.60, true, 4},
		{0.59, true, 3},
		{0.90, true, 3},
		{0, false, 3},
	}
	for _, tt := range tests {
		got := PriorityFor(tt.best, tt.has)
		assert.Equal(t, tt.want, got, "best=%v", tt.best)
		assert.GreaterOrEqual(t, got, MinPriority)
		assert.LessOrEqual(t, got, MaxPriority)
	}
}

func TestReviewQueueItemLifecycle(t *testing.T) {
	newItem := func(t *testing.T) *ReviewQueueItem {
		cands := make([]QueueCandidate, 7)
		for i := range cands {
			cands[i] = QueueCandidate{CanonicalID: NewCanonicalID(), Score: 0.75 - float64(i)*0.01}
		}
		item, err := NewReviewQueueItem(NewQueueItemID(), "Sally Swale", cands, QueueProvenance{SourceURL: "https://example.org/doc"}, now)
		require.NoError(t, err)
		return item
	}

	t.Run("new items are pending with at most five candidates", func(t *testing.T) {
		item := newItem(t)
		assert.Equal(t, QueueStatusPending, item.Status)
		assert.Len(t, item.Candidates, MaxQueueCandidates)
		assert.Equal(t, 6, item.Priority)
	})

	t.Run("resolution populates resolution fields", func(t *testing.T) {
		item := newItem(t)
		target := item.Candidates[0].CanonicalID
		err := item.ApplyResolution(Resolution{Type: ResolutionLinkedExisting, CanonicalID: &target}, "reviewer1", "same household", now)
		require.NoError(t, err)
		assert.Equal(t, QueueStatusResolved, item.Status)
		require.NotNil(t, item.Resolution)
		assert.Equal(t, "reviewer1", item.ResolvedBy)
		require.NotNil(t, item.ResolvedAt)
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		item := newItem(t)
		require.NoError(t, item.ApplyDismissal("admin", "duplicate scrape", now))
		err := item.ApplyResolution(Resolution{Type: ResolutionNotAPerson}, "reviewer1", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		err = item.ApplyDismissal("admin", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("linked_existing requires a canonical", func(t *testing.T) {
		item := newItem(t)
		err := item.ApplyResolution(Resolution{Type: ResolutionLinkedExisting}, "reviewer1", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, QueueStatusPending, item.Status)
	})

	t.Run("resolution requires a reviewer", func(t *testing.T) {
		item := newItem(t)
		err := item.ApplyResolution(Resolution{Type: ResolutionDeferred, Reason: "illegible"}, " ", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestNameOccurrence(t *testing.T) {
	occ := NameOccurrence{FullName: " Sally\nSwailer ", State: " Maryland ", County: "Montgomery"}.Normalized()
	assert.Equal(t, "Sally Swailer", occ.FullName)
	assert.Equal(t, "Montgomery, Maryland", occ.LocationContext())
	assert.NoError(t, occ.Validate())

	err := NameOccurrence{FullName: " \n "}.Validate()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
