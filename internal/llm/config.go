package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/rxdrill/internal/retry"
)

// Provider names accepted by NewProvider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds LLM provider configuration for the coach.
type Config struct {
	// Provider is one of the Provider* constants.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      retry.Policy

	// Timeout bounds one coach request including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible gateways
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig returns a Config that picks the cheapest model of each
// provider. Notes are short, so a small model is plenty.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: retry.Policy{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
			Jitter:      0.2,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads RXDRILL_* variables on top of DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setFromEnv(&cfg.Provider, "RXDRILL_LLM_PROVIDER")

	setFromEnv(&cfg.Anthropic.APIKey, "RXDRILL_ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "RXDRILL_ANTHROPIC_MODEL")

	setFromEnv(&cfg.OpenAI.APIKey, "RXDRILL_OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "RXDRILL_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "RXDRILL_OPENAI_BASE_URL")

	setFromEnv(&cfg.Gemini.APIKey, "RXDRILL_GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "RXDRILL_GEMINI_MODEL")

	setFromEnv(&cfg.OpenRouter.APIKey, "RXDRILL_OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "RXDRILL_OPENROUTER_MODEL")
	setFromEnv(&cfg.OpenRouter.BaseURL, "RXDRILL_OPENROUTER_BASE_URL")

	if v := os.Getenv("RXDRILL_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig falls back to the vendors' own key variables when no
// RXDRILL_LLM_PROVIDER is set. The first key found wins.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	if os.Getenv("RXDRILL_LLM_PROVIDER") != "" {
		return cfg, true
	}

	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			if *p.key == "" {
				*p.key = k
			}
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	var key, envName string
	switch c.Provider {
	case ProviderAnthropic:
		key, envName = c.Anthropic.APIKey, "RXDRILL_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, envName = c.OpenAI.APIKey, "RXDRILL_OPENAI_API_KEY"
	case ProviderGemini:
		key, envName = c.Gemini.APIKey, "RXDRILL_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, envName = c.OpenRouter.APIKey, "RXDRILL_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", envName, c.Provider)
	}
	return nil
}
