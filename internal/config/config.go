package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	TokenSecret string

	PublishRequestTTL   time.Duration
	LikeMinInterval     time.Duration
	MaxClientsPerStream int

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		TokenSecret: getEnv("TOKEN_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least 32 characters, got %d", len(cfg.TokenSecret))
	}

	var err error
	if cfg.PublishRequestTTL, err = getDurationEnv("PUBLISH_REQUEST_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.PublishRequestTTL <= 0 {
		return nil, fmt.Errorf("PUBLISH_REQUEST_TTL must be positive")
	}
	if cfg.LikeMinInterval, err = getDurationEnv("LIKE_MIN_INTERVAL", 200*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.LikeMinInterval < 0 {
		return nil, fmt.Errorf("LIKE_MIN_INTERVAL must not be negative")
	}
	if cfg.MaxClientsPerStream, err = getIntEnv("MAX_CLIENTS_PER_STREAM", 500); err != nil {
		return nil, err
	}
	if cfg.MaxClientsPerStream < 1 {
		return nil, fmt.Errorf("MAX_CLIENTS_PER_STREAM must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
