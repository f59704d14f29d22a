package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once at startup from the
// environment (optionally seeded from a .env file).
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins string
	Environment    string

	// Kafka event fan-out. An empty broker list disables the producer and
	// the server falls back to the in-process publisher.
	KafkaBrokers        []string
	KafkaTopicInventory string
	KafkaTopicAlerts    string
	KafkaClientID       string
	KafkaAcks           string
	KafkaRetries        int

	// Horizon for the "expiring soon" classification, in days.
	ExpiryHorizonDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		Environment:    getEnv("ENVIRONMENT", "development"),

		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicInventory: getEnv("KAFKA_TOPIC_INVENTORY", "relief.inventory"),
		KafkaTopicAlerts:    getEnv("KAFKA_TOPIC_ALERTS", "relief.alerts"),
		KafkaClientID:       getEnv("KAFKA_CLIENT_ID", "relief-ledger"),
		KafkaAcks:           getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:        getEnvAsInt("KAFKA_RETRIES", 3),

		ExpiryHorizonDays: getEnvAsInt("EXPIRY_HORIZON_DAYS", 30),
	}
}

// KafkaEnabled reports whether a broker list was configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
