package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineage/internal/identity/models"
	"lineage/internal/identity/service"
	"lineage/internal/identity/store/memory"
	dErrors "lineage/pkg/domain-errors"
)

type resolverFunc func(ctx context.Context, occ models.NameOccurrence) (*models.ResolveResult, error)

func (f resolverFunc) ResolveOrCreate(ctx context.Context, occ models.NameOccurrence) (*models.ResolveResult, error) {
	return f(ctx, occ)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOccurrenceHandlerResolves(t *testing.T) {
	db := memory.New()
	h := NewOccurrenceHandler(service.New(db, db, service.WithLogger(discard())), discard())

	err := h.Handle(context.Background(), &Message{Value: []byte(`{"full_name":"William Key","state":"VA"}`)})
	require.NoError(t, err)

	n, err := db.CountCanonicals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOccurrenceHandlerSkipsBadInput(t *testing.T) {
	called := false
	h := NewOccurrenceHandler(resolverFunc(func(context.Context, models.NameOccurrence) (*models.ResolveResult, error) {
		called = true
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}), discard())

	t.Run("undecodable payload", func(t *testing.T) {
		assert.NoError(t, h.Handle(context.Background(), &Message{Value: []byte("not json")}))
		assert.False(t, called)
	})

	t.Run("empty name", func(t *testing.T) {
		assert.NoError(t, h.Handle(context.Background(), &Message{Value: []byte(`{"full_name":"  "}`)}))
		assert.True(t, called)
	})
}

func TestOccurrenceHandlerReturnsStoreFailure(t *testing.T) {
	h := NewOccurrenceHandler(resolverFunc(func(context.Context, models.NameOccurrence) (*models.ResolveResult, error) {
		return nil, dErrors.New(dErrors.CodeUnavailable, "failed to resolve occurrence")
	}), discard())

	err := h.Handle(context.Background(), &Message{Value: []byte(`{"full_name":"William Key"}`)})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestOccurrenceHandlerRetriesConflict(t *testing.T) {
	msg := &Message{Value: []byte(`{"full_name":"William Key"}`)}

	t.Run("second attempt succeeds", func(t *testing.T) {
		calls := 0
		h := NewOccurrenceHandler(resolverFunc(func(context.Context, models.NameOccurrence) (*models.ResolveResult, error) {
			calls++
			if calls == 1 {
				return nil, dErrors.New(dErrors.CodeConflict, "failed to resolve occurrence")
			}
			return &models.ResolveResult{Action: models.ActionMatched}, nil
		}), discard())

		assert.NoError(t, h.Handle(context.Background(), msg))
		assert.Equal(t, 2, calls)
	})

	t.Run("repeated conflict is skipped", func(t *testing.T) {
		calls := 0
		h := NewOccurrenceHandler(resolverFunc(func(context.Context, models.NameOccurrence) (*models.ResolveResult, error) {
			calls++
			return nil, dErrors.New(dErrors.CodeConflict, "failed to resolve occurrence")
		}), discard())

		assert.NoError(t, h.Handle(context.Background(), msg))
		assert.Equal(t, 2, calls)
	})
}

func TestNewConsumerRequiresConfig(t *testing.T) {
	_, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)
}
