// Package config centralizes environment-variable configuration for the
// proxy binary, in the style of cmd/proxy/main.go's original inline
// env-parsing helpers.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-sourced setting the proxy binary needs at
// startup.
type Config struct {
	GRPCPort    string
	MetricsPort string

	RequestTimeout     time.Duration
	MaxRetries         int
	CBFailureThreshold int
	CBCooldown         time.Duration

	OpenAIKeys []string
	GeminiKeys []string

	// Cache knobs. CacheDir empty disables persistence (the cache still
	// runs in-memory unless CacheEnabled is false).
	CacheEnabled        bool
	CacheDir            string
	SimilarityThreshold float64
	CacheTTLSeconds     int64
	EmbedderModel       string
	EmbeddingAPIKey     string
}

// FromEnv reads Config from the process environment, applying the same
// defaults cmd/proxy/main.go has always applied.
func FromEnv() Config {
	return Config{
		GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
		MetricsPort: envOrDefault("METRICS_PORT", "9090"),

		RequestTimeout:     envDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:         envIntOrDefault("MAX_RETRIES", 3),
		CBFailureThreshold: envIntOrDefault("CB_FAILURE_THRESHOLD", 5),
		CBCooldown:         envDurationOrDefault("CB_COOLDOWN", 30*time.Second),

		OpenAIKeys: splitKeys(os.Getenv("OPENAI_API_KEYS")),
		GeminiKeys: splitKeys(os.Getenv("GEMINI_API_KEYS")),

		CacheEnabled:        envBoolOrDefault("CACHE_ENABLED", true),
		CacheDir:            envOrDefault("CACHE_PATH", "./cache_data"),
		SimilarityThreshold: envFloatOrDefault("SIMILARITY_THRESHOLD", 0.8),
		CacheTTLSeconds:     envInt64OrDefault("CACHE_TTL_SECONDS", 3600),
		EmbedderModel:       envOrDefault("EMBEDDER_MODEL", "all-minilm"),
		EmbeddingAPIKey:     os.Getenv("EMBEDDING_API_KEY"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func envBoolOrDefault(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
