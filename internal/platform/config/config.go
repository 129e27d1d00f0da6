package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures the process-level configuration. Empty backend URLs mean
// the corresponding infrastructure is disabled: the service then runs on
// in-memory stores, which is the mode the test suites use.
type Config struct {
	Addr string

	// PostgresURL selects the durable account/notification stores. Empty
	// selects the in-memory stores.
	PostgresURL string

	// RedisURL enables the registration fingerprint guard.
	RedisURL string

	// KafkaBrokers enables the audit event publisher (comma separated).
	KafkaBrokers string
	AuditTopic   string

	// AdminJWTKey signs/verifies bearer tokens for the admin surface.
	AdminJWTKey string

	// DemoReviews enables the demo review generator for seeded providers.
	DemoReviews        bool
	DemoReviewInterval time.Duration

	Redis RedisConfig
}

// RedisConfig tunes the go-redis client pool.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("DUPGUARD_ADDR", ":8080"),
		PostgresURL:        os.Getenv("DUPGUARD_POSTGRES_URL"),
		RedisURL:           os.Getenv("DUPGUARD_REDIS_URL"),
		KafkaBrokers:       os.Getenv("DUPGUARD_KAFKA_BROKERS"),
		AuditTopic:         envOr("DUPGUARD_AUDIT_TOPIC", "dupguard.audit"),
		AdminJWTKey:        os.Getenv("DUPGUARD_ADMIN_JWT_KEY"),
		DemoReviews:        os.Getenv("DUPGUARD_DEMO_REVIEWS") == "true",
		DemoReviewInterval: envDurationOr("DUPGUARD_DEMO_REVIEW_INTERVAL", 5*time.Minute),
	}

	if cfg.AdminJWTKey == "" {
		// Dev default; must be overridden in production.
		cfg.AdminJWTKey = "dev-secret-key-change-in-production"
	}

	cfg.Redis = RedisConfig{
		URL:          cfg.RedisURL,
		PoolSize:     envIntOr("DUPGUARD_REDIS_POOL_SIZE", 10),
		MinIdleConns: envIntOr("DUPGUARD_REDIS_MIN_IDLE", 2),
		DialTimeout:  envDurationOr("DUPGUARD_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDurationOr("DUPGUARD_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDurationOr("DUPGUARD_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
