package coach

import "time"

// MaxPeers bounds how many similar drugs are named in a note prompt.
const MaxPeers = 3

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the settings the CLI uses.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.4,
		Timeout:     30 * time.Second,
	}
}
