package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (optional; backs the transport-level rate limiter when set)
	RedisURL string

	// Identity header set by the authenticating proxy
	UserIDHeader string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Scheduler
	SchedulerEnabled   bool
	SchedulerInterval  time.Duration
	ScheduledBatchSize int
	ManualBatchSize    int
	BatchDelay         time.Duration
	ManualBatchDelay   time.Duration

	// Providers
	ProviderTimeout time.Duration

	// Anonymous instant lookup
	LookupLimit  int
	LookupWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:          getEnv("ENV", "development"),
		ServerAddr:   getEnv("SERVER_ADDR", ":3000"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:  getEnv("DATABASE_URL", "postgres://localhost:5432/serptrack?sslmode=disable"),
		RedisURL:     getEnv("REDIS_URL", ""),
		UserIDHeader: getEnv("USER_ID_HEADER", "X-User-ID"),
		CORSOrigins:  getEnv("CORS_ORIGINS", ""),

		SchedulerEnabled:   getEnv("SCHEDULER_ENABLED", "true") == "true",
		SchedulerInterval:  time.Duration(getEnvInt("SCHEDULER_INTERVAL_HOURS", 6)) * time.Hour,
		ScheduledBatchSize: getEnvInt("SCHEDULED_BATCH_SIZE", 10),
		ManualBatchSize:    getEnvInt("MANUAL_BATCH_SIZE", 5),
		BatchDelay:         time.Duration(getEnvInt("BATCH_DELAY_MS", 2000)) * time.Millisecond,
		ManualBatchDelay:   time.Duration(getEnvInt("MANUAL_BATCH_DELAY_MS", 1000)) * time.Millisecond,

		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 15)) * time.Second,

		LookupLimit:  getEnvInt("LOOKUP_LIMIT", 10),
		LookupWindow: time.Duration(getEnvInt("LOOKUP_WINDOW_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
