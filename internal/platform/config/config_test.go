package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"LINEAGE_ADDR", "DATABASE_URL", "KAFKA_BROKERS", "RESOLVE_TX_TIMEOUT", "MATCH_THRESHOLD", "REVIEWER_JWT_KEY"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 5*time.Second, cfg.Database.TxTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultResolution, cfg.Resolution)
	assert.NotEmpty(t, cfg.Auth.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LINEAGE_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://lineage@db/lineage")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RESOLVE_TX_TIMEOUT", "750ms")
	t.Setenv("MATCH_THRESHOLD", "0.9")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://lineage@db/lineage", cfg.Database.URL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.TxTimeout)
	assert.Equal(t, 0.9, cfg.Resolution.MatchThreshold)
}
