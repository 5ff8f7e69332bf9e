package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("RXDRILL_SYNC_TRANSPORT", "")
	t.Setenv("RXDRILL_LEARNER", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.LearnerID)
	assert.Equal(t, "none", cfg.Sync.Transport)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("RXDRILL_LEARNER", "ada")
	t.Setenv("RXDRILL_TZ", "UTC")
	t.Setenv("RXDRILL_SEED", "42")
	t.Setenv("RXDRILL_SYNC_TRANSPORT", "redis")
	t.Setenv("RXDRILL_REDIS_ADDR", "localhost:6379")
	t.Setenv("RXDRILL_SYNC_INTERVAL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "ada", cfg.LearnerID)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "redis", cfg.Sync.Transport)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"http without url", func(c *Config) { c.Sync.Transport = "http" }, true},
		{"http with url", func(c *Config) { c.Sync.Transport = "http"; c.Sync.URL = "http://x" }, false},
		{"amqp without url", func(c *Config) { c.Sync.Transport = "amqp" }, true},
		{"unknown", func(c *Config) { c.Sync.Transport = "carrier-pigeon" }, true},
		{"zero interval", func(c *Config) { c.Sync.Interval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
