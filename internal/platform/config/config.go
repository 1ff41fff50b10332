package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "lineage/pkg/platform/strings"
)

// Server captures the configuration of the API server process.
type Server struct {
	Addr       string
	LogLevel   string
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Auth       AuthConfig
	Resolution Resolution
}

// DatabaseConfig points at the identity Postgres database. An empty URL runs
// the server on the in-memory store.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	TxTimeout    time.Duration
}

// RedisConfig configures the optional Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables streaming ingestion when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// AuthConfig holds the reviewer token settings.
type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

// Resolution holds the resolver thresholds.
type Resolution struct {
	MatchThreshold  float64
	ReviewThreshold float64
}

// DefaultResolution mirrors the service defaults.
var DefaultResolution = Resolution{MatchThreshold: 0.85, ReviewThreshold: 0.60}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("REVIEWER_JWT_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:     envOr("LINEAGE_ADDR", ":8080"),
		LogLevel: envOr("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
			TxTimeout:    envDuration("RESOLVE_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: platformstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:   envOr("KAFKA_TOPIC", "name-occurrences"),
			Group:   envOr("KAFKA_GROUP", "lineage-resolver"),
		},
		Auth: AuthConfig{
			JWTSigningKey: jwtSigningKey,
			Issuer:        envOr("REVIEWER_JWT_ISSUER", "lineage"),
			Audience:      envOr("REVIEWER_JWT_AUDIENCE", "lineage-review"),
		},
		Resolution: Resolution{
			MatchThreshold:  envFloat("MATCH_THRESHOLD", DefaultResolution.MatchThreshold),
			ReviewThreshold: envFloat("REVIEW_THRESHOLD", DefaultResolution.ReviewThreshold),
		},
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}
