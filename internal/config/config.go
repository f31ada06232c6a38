// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Synthetic feed
	FeedEnabled     bool
	FeedMinInterval time.Duration
	FeedMaxInterval time.Duration

	// Model training
	TrainingSamples  int     // labeled transactions generated per (re)train
	SupervisedWeight float64 // ensemble weight for the supervised model; anomaly weight is 1 - this

	// Security
	RateLimitRPM int

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)
}

// Defaults
const (
	DefaultPort             = "8000"
	DefaultEnv              = "development"
	DefaultLogLevel         = "info"
	DefaultFeedMinInterval  = 2 * time.Second
	DefaultFeedMaxInterval  = 8 * time.Second
	DefaultTrainingSamples  = 4000
	DefaultSupervisedWeight = 0.7
	DefaultRateLimit        = 120
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		FeedEnabled:      getEnvBool("FEED_ENABLED", true),
		FeedMinInterval:  getEnvDuration("FEED_MIN_INTERVAL", DefaultFeedMinInterval),
		FeedMaxInterval:  getEnvDuration("FEED_MAX_INTERVAL", DefaultFeedMaxInterval),
		TrainingSamples:  int(getEnvInt64("TRAINING_SAMPLES", DefaultTrainingSamples)),
		SupervisedWeight: getEnvFloat("SUPERVISED_WEIGHT", DefaultSupervisedWeight),
		RateLimitRPM:     int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimit)),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent
func (c *Config) Validate() error {
	if c.FeedMinInterval <= 0 || c.FeedMaxInterval <= 0 {
		return fmt.Errorf("feed intervals must be positive")
	}
	if c.FeedMinInterval > c.FeedMaxInterval {
		return fmt.Errorf("FEED_MIN_INTERVAL must not exceed FEED_MAX_INTERVAL")
	}
	if c.SupervisedWeight < 0 || c.SupervisedWeight > 1 {
		return fmt.Errorf("SUPERVISED_WEIGHT must be in [0, 1]")
	}
	if c.TrainingSamples < 100 {
		return fmt.Errorf("TRAINING_SAMPLES must be at least 100")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
