package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abhisek/assessor/internal/config"
	"github.com/abhisek/assessor/internal/curriculum"
	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/progression"
	"github.com/abhisek/assessor/internal/question"
	"github.com/abhisek/assessor/internal/retrieval"
	"github.com/abhisek/assessor/internal/scoring"
	"github.com/abhisek/assessor/internal/store"
	"github.com/spf13/cobra"
)

// env is what every command that touches sessions needs.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	engine *interview.Engine
}

func (e *env) Close() error {
	return e.store.Close()
}

// loadConfig reads the process config and installs its logger, writing to
// logOut, as the slog default.
func loadConfig(logOut io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := cfg.Log.NewLoggerTo(logOut)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openEnv opens the store, builds the LLM provider and wires the engine.
// With requireLLM unset a missing provider is tolerated: read-only commands
// still work and every oracle call fails as unavailable.
func openEnv(cmd *cobra.Command, requireLLM bool) (*env, error) {
	return openEnvLogging(cmd, requireLLM, os.Stderr)
}

// openEnvLogging is openEnv with the log output redirected.
func openEnvLogging(cmd *cobra.Command, requireLLM bool, logOut io.Writer) (*env, error) {
	cfg, logger, err := loadConfig(logOut)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	var provider llm.Provider
	provider, err = llm.NewProviderFromEnv(cmd.Context(), st.EventRepo())
	if err != nil {
		if requireLLM {
			st.Close()
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		logger.Debug("LLM provider not configured", "error", err)
		provider = offlineProvider{err: err}
	}

	engine, err := newEngine(cfg, provider, searcher(cfg, st, logger), st.SessionRepo(), logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: st, engine: engine}, nil
}

// offlineProvider stands in when no LLM is configured.
type offlineProvider struct{ err error }

func (p offlineProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	return nil, &llm.ErrProviderUnavailable{Err: p.err}
}

func (p offlineProvider) ModelID() string { return "offline" }

// searcher picks the retrieval collaborator: the remote service when a URL
// is configured, otherwise the local document index.
func searcher(cfg config.Config, st *store.Store, logger *slog.Logger) retrieval.Searcher {
	var s retrieval.Searcher
	switch {
	case cfg.Retrieval.Disabled:
		logger.Info("retrieval disabled")
	case cfg.Retrieval.URL != "":
		s = retrieval.NewHTTPSearcher(cfg.Retrieval.URL, cfg.Retrieval.APIKey, cfg.Retrieval.Timeout)
	default:
		s = retrieval.NewLocalIndex(st.DocumentRepo())
	}
	return retrieval.Safe(s, logger)
}

func newEngine(cfg config.Config, provider llm.Provider, search retrieval.Searcher, sessions store.SessionRepo, logger *slog.Logger) (*interview.Engine, error) {
	curCfg := curriculum.DefaultConfig()
	curCfg.Threshold = cfg.Retrieval.Threshold
	qCfg := question.DefaultConfig()
	qCfg.Threshold = cfg.Retrieval.Threshold

	policy, err := progression.NewPolicy(cfg.Policy.Name, provider,
		cfg.Policy.PassThreshold, cfg.Policy.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	return interview.New(interview.Deps{
		Sessions:   sessions,
		Curriculum: curriculum.NewBuilder(provider, search, curCfg, logger),
		General:    question.NewLLMSource(provider, qCfg),
		Grounded:   question.NewGroundedSource(provider, search, qCfg, logger),
		Scorer:     scoring.NewScorer(provider, scoring.DefaultConfig(), logger),
		Policy:     policy,
		Persona:    persona.NewSynthesizer(provider, persona.DefaultConfig()),
		Planner:    lessonplan.NewService(provider, lessonplan.DefaultConfig(), logger),
		Logger:     logger,
	}, interview.Config{
		MaxRetries:  cfg.Policy.MaxRetries,
		TurnTimeout: cfg.TurnTimeout,
		PlanTimeout: cfg.PlanTimeout,
	})
}
