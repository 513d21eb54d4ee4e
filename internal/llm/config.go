package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `env:"ASSESSOR_LLM_PROVIDER"`

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries.
	Timeout time.Duration `env:"ASSESSOR_LLM_TIMEOUT"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `env:"ASSESSOR_ANTHROPIC_API_KEY"`
	Model   string `env:"ASSESSOR_ANTHROPIC_MODEL"`
	BaseURL string `env:"ASSESSOR_ANTHROPIC_BASE_URL"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `env:"ASSESSOR_OPENAI_API_KEY"`
	Model   string `env:"ASSESSOR_OPENAI_MODEL"`
	BaseURL string `env:"ASSESSOR_OPENAI_BASE_URL"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `env:"ASSESSOR_GEMINI_API_KEY"`
	Model  string `env:"ASSESSOR_GEMINI_MODEL"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `env:"ASSESSOR_OPENROUTER_API_KEY"`
	Model   string `env:"ASSESSOR_OPENROUTER_MODEL"`
	BaseURL string `env:"ASSESSOR_OPENROUTER_BASE_URL"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `env:"ASSESSOR_LLM_RETRY_ATTEMPTS"`
	InitialWait time.Duration `env:"ASSESSOR_LLM_RETRY_INITIAL_WAIT"`
	MaxWait     time.Duration `env:"ASSESSOR_LLM_RETRY_MAX_WAIT"`
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv overlays ASSESSOR_* environment variables on the defaults.
// Unset variables keep their default value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse LLM env config: %w", err)
	}
	return cfg, nil
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	probes := []struct {
		envVar   string
		provider string
		set      func(string)
	}{
		{"GEMINI_API_KEY", "gemini", func(k string) { cfg.Gemini.APIKey = k }},
		{"OPENAI_API_KEY", "openai", func(k string) { cfg.OpenAI.APIKey = k }},
		{"ANTHROPIC_API_KEY", "anthropic", func(k string) { cfg.Anthropic.APIKey = k }},
		{"OPENROUTER_API_KEY", "openrouter", func(k string) { cfg.OpenRouter.APIKey = k }},
	}
	for _, p := range probes {
		if k := os.Getenv(p.envVar); k != "" {
			cfg.Provider = p.provider
			p.set(k)
			return cfg, true
		}
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	var key, envVar string
	switch c.Provider {
	case "anthropic":
		key, envVar = c.Anthropic.APIKey, "ASSESSOR_ANTHROPIC_API_KEY"
	case "openai":
		key, envVar = c.OpenAI.APIKey, "ASSESSOR_OPENAI_API_KEY"
	case "gemini":
		key, envVar = c.Gemini.APIKey, "ASSESSOR_GEMINI_API_KEY"
	case "openrouter":
		key, envVar = c.OpenRouter.APIKey, "ASSESSOR_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", envVar, c.Provider)
	}
	return nil
}
