//go:build integration

package ingest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"lineage/internal/identity/models"
	"lineage/internal/identity/service"
	"lineage/internal/identity/store/memory"
	"lineage/internal/ingest"
	"lineage/pkg/testutil/containers"
)

type ConsumerSuite struct {
	suite.Suite
	broker *containers.RedpandaContainer
}

func TestConsumerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ConsumerSuite))
}

func (s *ConsumerSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T())
}

func (s *ConsumerSuite) produce(ctx context.Context, topic string, occs ...models.NameOccurrence) {
	client, err := kgo.NewClient(kgo.SeedBrokers(s.broker.Broker))
	s.Require().NoError(err)
	defer client.Close()

	for _, occ := range occs {
		value, err := json.Marshal(occ)
		s.Require().NoError(err)
		s.Require().NoError(client.ProduceSync(ctx, &kgo.Record{Topic: topic, Value: value}).FirstErr())
	}
	s.Require().NoError(client.ProduceSync(ctx, &kgo.Record{Topic: topic, Value: []byte("garbage")}).FirstErr())
}

func (s *ConsumerSuite) TestConsumesAndResolvesOccurrences() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	topic := "occurrences-" + models.NewQueueItemID().String()
	s.Require().NoError(s.broker.CreateTopic(ctx, topic))

	s.produce(ctx, topic,
		models.NameOccurrence{FullName: "Sally Swailes", SourceURL: "https://example.org/1"},
		models.NameOccurrence{FullName: "Sally Swailer", SourceURL: "https://example.org/2"},
		models.NameOccurrence{FullName: "William Key", SourceURL: "https://example.org/3"},
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.New()
	svc := service.New(db, db, service.WithLogger(logger))
	consumer, err := ingest.NewConsumer(ingest.Config{
		Brokers: []string{s.broker.Broker},
		Topic:   topic,
		Group:   "lineage-test-" + topic,
	}, ingest.NewOccurrenceHandler(svc, logger), ingest.WithLogger(logger))
	s.Require().NoError(err)
	defer consumer.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Run(runCtx) }()

	s.Eventually(func() bool {
		n, err := db.CountVariants(ctx)
		return err == nil && n == 1
	}, 30*time.Second, 200*time.Millisecond)

	stop()
	s.NoError(<-done)

	canonicals, err := db.CountCanonicals(ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), canonicals)
}
