package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.True(t, cfg.FeedEnabled)
	assert.Equal(t, DefaultFeedMinInterval, cfg.FeedMinInterval)
	assert.Equal(t, DefaultFeedMaxInterval, cfg.FeedMaxInterval)
	assert.Equal(t, DefaultTrainingSamples, cfg.TrainingSamples)
	assert.Equal(t, DefaultSupervisedWeight, cfg.SupervisedWeight)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9090")
	setEnv(t, "FEED_ENABLED", "false")
	setEnv(t, "FEED_MIN_INTERVAL", "500ms")
	setEnv(t, "FEED_MAX_INTERVAL", "1s")
	setEnv(t, "TRAINING_SAMPLES", "1000")
	setEnv(t, "SUPERVISED_WEIGHT", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.FeedEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.FeedMinInterval)
	assert.Equal(t, time.Second, cfg.FeedMaxInterval)
	assert.Equal(t, 1000, cfg.TrainingSamples)
	assert.Equal(t, 0.5, cfg.SupervisedWeight)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	setEnv(t, "TRAINING_SAMPLES", "not-a-number")
	setEnv(t, "FEED_MIN_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTrainingSamples, cfg.TrainingSamples)
	assert.Equal(t, DefaultFeedMinInterval, cfg.FeedMinInterval)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		FeedMinInterval:  2 * time.Second,
		FeedMaxInterval:  8 * time.Second,
		TrainingSamples:  4000,
		SupervisedWeight: 0.7,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero min interval", func(c *Config) { c.FeedMinInterval = 0 }, "positive"},
		{"min above max", func(c *Config) { c.FeedMinInterval = 10 * time.Second }, "FEED_MIN_INTERVAL"},
		{"weight above one", func(c *Config) { c.SupervisedWeight = 1.5 }, "SUPERVISED_WEIGHT"},
		{"negative weight", func(c *Config) { c.SupervisedWeight = -0.1 }, "SUPERVISED_WEIGHT"},
		{"too few samples", func(c *Config) { c.TrainingSamples = 10 }, "TRAINING_SAMPLES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	assert.True(t, (&Config{Env: "development"}).IsDevelopment())
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
}
