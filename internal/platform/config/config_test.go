package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"FACTORHUB_ADDR", "JWT_SIGNING_KEY", "POSTGRES_URL", "REDIS_URL",
		"KAFKA_BROKERS", "KAFKA_EVENTS_TOPIC", "EVENT_BUFFER",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "factorhub.asset-events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.PostgresURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 256, cfg.EventBuffer)
	assert.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FACTORHUB_ADDR", ":9999")
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("POSTGRES_URL", "postgres://localhost/factorhub")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("KAFKA_EVENTS_TOPIC", "custom.topic")
	t.Setenv("EVENT_BUFFER", "1024")

	cfg := FromEnv()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "secret", cfg.JWTSigningKey)
	assert.Equal(t, "postgres://localhost/factorhub", cfg.PostgresURL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "custom.topic", cfg.Kafka.Topic)
	assert.Equal(t, 1024, cfg.EventBuffer)
}

func TestIntEnvRejectsGarbage(t *testing.T) {
	t.Setenv("EVENT_BUFFER", "not-a-number")
	assert.Equal(t, 256, FromEnv().EventBuffer)

	t.Setenv("EVENT_BUFFER", "-5")
	assert.Equal(t, 256, FromEnv().EventBuffer)
}
