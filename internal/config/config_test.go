package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_ACKS", "")
	t.Setenv("KAFKA_RETRIES", "")
	t.Setenv("EXPIRY_HORIZON_DAYS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "relief.inventory", cfg.KafkaTopicInventory)
	assert.Equal(t, "relief.alerts", cfg.KafkaTopicAlerts)
	assert.Equal(t, "all", cfg.KafkaAcks)
	assert.Equal(t, 3, cfg.KafkaRetries)
	assert.Equal(t, 30, cfg.ExpiryHorizonDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092 ,")
	t.Setenv("KAFKA_RETRIES", "5")
	t.Setenv("EXPIRY_HORIZON_DAYS", "14")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 5, cfg.KafkaRetries)
	assert.Equal(t, 14, cfg.ExpiryHorizonDays)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("KAFKA_RETRIES", "not-a-number")

	cfg := Load()

	assert.Equal(t, 3, cfg.KafkaRetries)
}
