// Package curriculum builds the ordered concept list a session assesses
// and decides whether the session is grounded in retrieved material.
package curriculum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/retrieval"
)

// ErrEmpty is returned when no usable concept could be produced.
var ErrEmpty = errors.New("curriculum is empty")

// MinConcepts is the shortest curriculum accepted without a retry.
const MinConcepts = 2

// generalAttempts bounds oracle calls for the general build.
const generalAttempts = 2

// Learner is the context a curriculum is built for.
type Learner struct {
	Subject string
	Goal    string
	Level   string
}

// Builder produces curricula with an LLM, optionally grounded in
// retrieved chunks.
type Builder struct {
	provider llm.Provider
	search   retrieval.Searcher
	cfg      Config
	logger   *slog.Logger
}

// NewBuilder creates a Builder. search is wrapped with retrieval.Safe, so
// nil or failing searchers read as "no material".
func NewBuilder(provider llm.Provider, search retrieval.Searcher, cfg Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcepts < 1 {
		cfg.MaxConcepts = DefaultConfig().MaxConcepts
	}
	return &Builder{
		provider: provider,
		search:   retrieval.Safe(search, logger),
		cfg:      cfg,
		logger:   logger,
	}
}

// CheckGrounding reports whether retrieved material is relevant enough to
// ground the session. Zero results skip the judgment; a failed judgment
// counts as not relevant. Only context errors are returned.
func (b *Builder) CheckGrounding(ctx context.Context, l Learner) (bool, error) {
	chunks, err := b.search.Search(ctx, Query(l), b.cfg.GateTopK, b.cfg.Threshold)
	if err != nil {
		return false, err
	}
	if len(chunks) == 0 {
		b.logger.Debug("no material found, skipping grounding", "subject", l.Subject)
		return false, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeRelevance)
	req := llm.UserPrompt(relevanceSystemPrompt, buildRelevanceMessage(l, chunks, b.cfg), RelevanceSchema, 64, 0)
	out, err := llm.GenerateJSON[relevanceOutput](ctx, b.provider, req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		b.logger.Warn("relevance judgment failed, treating material as not relevant", "error", err)
		return false, nil
	}
	return out.IsRelevant, nil
}

// Build returns the curriculum for l. A result shorter than MinConcepts
// after normalization is unusable: a grounded build falls back to the
// general build, and the general build asks once more. If the oracle
// still comes back short, the longest non-empty answer is kept.
func (b *Builder) Build(ctx context.Context, l Learner, grounded bool) ([]string, error) {
	if grounded {
		concepts, err := b.buildGrounded(ctx, l)
		if err != nil {
			return nil, err
		}
		if len(concepts) >= MinConcepts {
			return concepts, nil
		}
		b.logger.Info("grounded curriculum too short, falling back to general build",
			"subject", l.Subject, "concepts", len(concepts))
	}

	var best []string
	for attempt := 1; attempt <= generalAttempts; attempt++ {
		concepts, err := b.generate(ctx, generalSystemPrompt, buildGeneralMessage(l, b.cfg))
		if err != nil {
			return nil, err
		}
		if len(concepts) >= MinConcepts {
			return concepts, nil
		}
		if len(concepts) > len(best) {
			best = concepts
		}
		b.logger.Warn("curriculum too short",
			"subject", l.Subject, "concepts", len(concepts), "attempt", attempt)
	}
	if len(best) == 0 {
		return nil, ErrEmpty
	}
	return best, nil
}

func (b *Builder) buildGrounded(ctx context.Context, l Learner) ([]string, error) {
	chunks, err := b.search.Search(ctx, Query(l), b.cfg.GroundedTopK, b.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	chunks = retrieval.ContentOnly(chunks)
	if len(chunks) == 0 {
		return nil, nil
	}
	return b.generate(ctx, groundedSystemPrompt, buildGroundedMessage(l, chunks, b.cfg))
}

func (b *Builder) generate(ctx context.Context, system, user string) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCurriculum)
	req := llm.UserPrompt(system, user, CurriculumSchema, b.cfg.MaxTokens, b.cfg.Temperature)

	out, err := llm.GenerateJSON[curriculumOutput](ctx, b.provider, req)
	if err != nil {
		return nil, fmt.Errorf("generate curriculum: %w", err)
	}
	return Normalize(out.Curriculum, b.cfg.MaxConcepts), nil
}

// Normalize trims concepts, drops blanks and case-insensitive duplicates,
// and keeps at most max entries in their original order.
func Normalize(concepts []string, max int) []string {
	seen := make(map[string]bool, len(concepts))
	var out []string
	for _, c := range concepts {
		c = strings.Join(strings.Fields(c), " ")
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
