package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port              string
	Environment       string
	LogLevel          slog.Level
	RedisURL          string
	QueueNamespace    string
	QueueBlockTimeout time.Duration // how long a worker waits on an empty queue before rechecking for shutdown
	DataDir           string
	SessionTTL        time.Duration
	WorkerID          string
}

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
	}

	block, err := time.ParseDuration(getEnv("QUEUE_BLOCK_TIMEOUT", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_BLOCK_TIMEOUT: %w", err)
	}
	// Redis BLPOP counts in seconds; 0 would block forever.
	if block < time.Second {
		return nil, fmt.Errorf("QUEUE_BLOCK_TIMEOUT must be at least 1s, got %s", block)
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		QueueNamespace:    getEnv("QUEUE_NAMESPACE", "brotato"),
		QueueBlockTimeout: block,
		DataDir:           getEnv("DATA_DIR", "./data"),
		SessionTTL:        ttl,
		WorkerID:          os.Getenv("WORKER_ID"),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
