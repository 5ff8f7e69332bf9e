package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings for rxdrill.
type Config struct {
	// DBPath overrides the default SQLite location. Empty means the XDG default.
	DBPath string

	// CatalogPath points at a JSON content catalog. Empty means the embedded sample.
	CatalogPath string

	// LearnerID selects the snapshot row.
	LearnerID string

	// Location is used for calendar-day and calendar-week boundaries.
	Location *time.Location

	// LogMode is "dev" or "prod".
	LogMode string

	// Seed fixes the random source when non-zero.
	Seed uint64

	Sync SyncConfig

	// LedgerAddr is the listen address for the reference ledger server.
	LedgerAddr string
}

// SyncConfig selects and configures the outbox delivery transport.
type SyncConfig struct {
	// Transport is one of "none", "http", "redis", "amqp".
	Transport string

	URL          string
	RedisAddr    string
	RedisStream  string
	AMQPURL      string
	AMQPExchange string

	// Interval is the periodic drain cadence.
	Interval time.Duration
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		LearnerID: "default",
		Location:  time.Local,
		LogMode:   "dev",
		Sync: SyncConfig{
			Transport:    "none",
			RedisStream:  "rxdrill:rewards",
			AMQPExchange: "rxdrill.rewards",
			Interval:     time.Minute,
		},
		LedgerAddr: ":8088",
	}
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.DBPath = os.Getenv("RXDRILL_DB")
	cfg.CatalogPath = os.Getenv("RXDRILL_CATALOG")
	if v := os.Getenv("RXDRILL_LEARNER"); v != "" {
		cfg.LearnerID = v
	}
	if v := os.Getenv("RXDRILL_TZ"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return cfg, fmt.Errorf("RXDRILL_TZ: %w", err)
		}
		cfg.Location = loc
	}
	if v := os.Getenv("RXDRILL_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("RXDRILL_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("RXDRILL_SEED: %w", err)
		}
		cfg.Seed = seed
	}

	if v := os.Getenv("RXDRILL_SYNC_TRANSPORT"); v != "" {
		cfg.Sync.Transport = v
	}
	cfg.Sync.URL = os.Getenv("RXDRILL_SYNC_URL")
	cfg.Sync.RedisAddr = os.Getenv("RXDRILL_REDIS_ADDR")
	if v := os.Getenv("RXDRILL_REDIS_STREAM"); v != "" {
		cfg.Sync.RedisStream = v
	}
	cfg.Sync.AMQPURL = os.Getenv("RXDRILL_AMQP_URL")
	if v := os.Getenv("RXDRILL_AMQP_EXCHANGE"); v != "" {
		cfg.Sync.AMQPExchange = v
	}
	if v := os.Getenv("RXDRILL_SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("RXDRILL_SYNC_INTERVAL: %w", err)
		}
		cfg.Sync.Interval = d
	}
	if v := os.Getenv("RXDRILL_LEDGER_ADDR"); v != "" {
		cfg.LedgerAddr = v
	}

	return cfg, cfg.Validate()
}

// Validate checks that the selected sync transport has what it needs.
func (c Config) Validate() error {
	switch c.Sync.Transport {
	case "", "none":
	case "http":
		if c.Sync.URL == "" {
			return fmt.Errorf("RXDRILL_SYNC_URL is required for the http transport")
		}
	case "redis":
		if c.Sync.RedisAddr == "" {
			return fmt.Errorf("RXDRILL_REDIS_ADDR is required for the redis transport")
		}
	case "amqp":
		if c.Sync.AMQPURL == "" {
			return fmt.Errorf("RXDRILL_AMQP_URL is required for the amqp transport")
		}
	default:
		return fmt.Errorf("unknown sync transport: %q", c.Sync.Transport)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	return nil
}
