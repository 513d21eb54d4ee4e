// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/abhisek/assessor/internal/progression"
	"github.com/abhisek/assessor/internal/retrieval"
)

// Config holds everything outside the LLM provider settings, which live
// in llm.Config, and the database path, which store.DefaultDBPath reads.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Policy    PolicyConfig
	Retrieval RetrievalConfig

	TurnTimeout time.Duration `env:"ASSESSOR_TURN_TIMEOUT"`
	PlanTimeout time.Duration `env:"ASSESSOR_PLAN_TIMEOUT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `env:"ASSESSOR_ADDR"`
	ShutdownTimeout time.Duration `env:"ASSESSOR_SHUTDOWN_TIMEOUT"`
	// AllowedOrigins is a comma-separated CORS allow list. Empty disables CORS.
	AllowedOrigins []string `env:"ASSESSOR_ALLOWED_ORIGINS" envSeparator:","`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string `env:"ASSESSOR_LOG_FORMAT"`
	Level  string `env:"ASSESSOR_LOG_LEVEL"`
}

// PolicyConfig configures progression.
type PolicyConfig struct {
	Name          string `env:"ASSESSOR_POLICY"`
	PassThreshold int    `env:"ASSESSOR_PASS_THRESHOLD"`
	MaxRetries    int    `env:"ASSESSOR_MAX_RETRIES"`
}

// RetrievalConfig selects the retrieval collaborator. With URL set the
// remote search service is used; otherwise the local document index.
type RetrievalConfig struct {
	URL       string        `env:"ASSESSOR_RETRIEVAL_URL"`
	APIKey    string        `env:"ASSESSOR_RETRIEVAL_API_KEY"`
	Timeout   time.Duration `env:"ASSESSOR_RETRIEVAL_TIMEOUT"`
	Threshold float64       `env:"ASSESSOR_RETRIEVAL_THRESHOLD"`
	Disabled  bool          `env:"ASSESSOR_RETRIEVAL_DISABLED"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Format: "text", Level: "info"},
		Policy: PolicyConfig{
			Name:          "threshold",
			PassThreshold: progression.DefaultPassThreshold,
			MaxRetries:    progression.MaxRetries,
		},
		Retrieval: RetrievalConfig{
			Timeout:   10 * time.Second,
			Threshold: retrieval.DefaultThreshold,
		},
		TurnTimeout: 90 * time.Second,
		PlanTimeout: 5 * time.Minute,
	}
}

// Load reads .env if present, then overlays ASSESSOR_* variables on the
// defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv overlays ASSESSOR_* variables on the defaults without reading
// any file.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Policy.Name {
	case "threshold", "arbitrated":
	default:
		return fmt.Errorf("ASSESSOR_POLICY must be threshold or arbitrated, got %q", c.Policy.Name)
	}
	if c.Policy.PassThreshold < 0 || c.Policy.PassThreshold > 100 {
		return fmt.Errorf("ASSESSOR_PASS_THRESHOLD must be within 0-100, got %d", c.Policy.PassThreshold)
	}
	if c.Policy.MaxRetries < 1 {
		return fmt.Errorf("ASSESSOR_MAX_RETRIES must be at least 1, got %d", c.Policy.MaxRetries)
	}
	if c.Retrieval.Threshold < 0 || c.Retrieval.Threshold > 1 {
		return fmt.Errorf("ASSESSOR_RETRIEVAL_THRESHOLD must be within 0-1, got %v", c.Retrieval.Threshold)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("ASSESSOR_LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("ASSESSOR_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// NewLogger builds the process logger described by c, writing to stderr.
func (c LogConfig) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stderr)
}

// NewLoggerTo builds the logger described by c writing to w.
func (c LogConfig) NewLoggerTo(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
