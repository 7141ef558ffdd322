package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers           []string
	KafkaGroupID           string
	RegistryEventsTopic    string
	RegistryEventsDLQTopic string
	MatchEventsTopic       string
	MatchEventsDLQTopic    string

	// Registry store (consumed by matching-service)
	RegistryBaseURL      string
	StoreRequestTimeout  time.Duration
	StoreRetryAttempts   int

	// Matching engine
	MatchingPolicyPath     string
	PerfectMatchAutoCommit bool
	SuggestionCacheTTL     time.Duration

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "ocumatch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "ocumatch123"),
		PostgresDB:       getEnv("POSTGRES_DB", "ocumatch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", "ocumatch-platform"),
		RegistryEventsTopic:    getEnv("REGISTRY_EVENTS_TOPIC", "registry.events"),
		RegistryEventsDLQTopic: getEnv("REGISTRY_EVENTS_DLQ_TOPIC", ""),
		MatchEventsTopic:       getEnv("MATCH_EVENTS_TOPIC", "match.events"),
		MatchEventsDLQTopic:    getEnv("MATCH_EVENTS_DLQ_TOPIC", ""),

		RegistryBaseURL:     getEnv("REGISTRY_BASE_URL", "http://localhost:8081"),
		StoreRequestTimeout: getDuration("STORE_REQUEST_TIMEOUT", 10*time.Second),
		StoreRetryAttempts:  getIntEnv("STORE_RETRY_ATTEMPTS", 2),

		MatchingPolicyPath:     getEnv("MATCHING_POLICY_PATH", ""),
		PerfectMatchAutoCommit: getBoolEnv("PERFECT_MATCH_AUTO_COMMIT", false),
		SuggestionCacheTTL:     getDuration("SUGGESTION_CACHE_TTL", 2*time.Minute),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
