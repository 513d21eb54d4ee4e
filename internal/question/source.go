// Package question generates assessment questions for a concept in a
// chosen variation, with or without retrieved grounding material.
package question

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/retrieval"
)

// Input is everything needed to ask one question.
type Input struct {
	Subject   string
	Goal      string
	Level     string
	Concept   string
	Variation Variation

	// PriorQuestions are questions already asked about Concept.
	PriorQuestions []string
}

// Question is a generated question and the variation it was asked in.
type Question struct {
	Text      string
	Variation Variation
}

// Source produces one question.
type Source interface {
	Generate(ctx context.Context, in Input) (Question, error)
}

// QuestionSchema defines the JSON schema for a generated question.
var QuestionSchema = &llm.Schema{
	Name:        "assessment-question",
	Description: "A single assessment question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text only",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

type questionOutput struct {
	Question string `json:"question"`
}

var errEmptyQuestion = &llm.ErrInvalidResponse{Err: errors.New("empty question text")}

// LLMSource asks the LLM directly.
type LLMSource struct {
	provider llm.Provider
	cfg      Config
}

// NewLLMSource creates an LLMSource.
func NewLLMSource(provider llm.Provider, cfg Config) *LLMSource {
	return &LLMSource{provider: provider, cfg: cfg}
}

// Generate implements Source.
func (s *LLMSource) Generate(ctx context.Context, in Input) (Question, error) {
	return generate(ctx, s.provider, s.cfg, in, nil)
}

// GroundedSource asks the LLM with retrieved chunks for the concept as
// context. Without usable chunks it returns a canned question.
type GroundedSource struct {
	provider llm.Provider
	search   retrieval.Searcher
	cfg      Config
}

// NewGroundedSource creates a GroundedSource. search is wrapped with
// retrieval.Safe.
func NewGroundedSource(provider llm.Provider, search retrieval.Searcher, cfg Config, logger *slog.Logger) *GroundedSource {
	return &GroundedSource{provider: provider, search: retrieval.Safe(search, logger), cfg: cfg}
}

// Generate implements Source.
func (s *GroundedSource) Generate(ctx context.Context, in Input) (Question, error) {
	chunks, err := s.search.Search(ctx, in.Concept, s.cfg.TopK, s.cfg.Threshold)
	if err != nil {
		return Question{}, err
	}
	chunks = retrieval.ContentOnly(chunks)
	if len(chunks) == 0 {
		return Question{Text: FallbackQuestion(in.Concept), Variation: in.Variation}, nil
	}

	n := min(len(chunks), max(s.cfg.ContextChunks, 1))
	excerpts := make([]string, 0, n)
	for _, c := range chunks[:n] {
		excerpts = append(excerpts, c.Content)
	}
	return generate(ctx, s.provider, s.cfg, in, excerpts)
}

// FallbackQuestion is asked when no grounding material exists for a concept.
func FallbackQuestion(concept string) string {
	return fmt.Sprintf("What do you know about: %s?", concept)
}

func generate(ctx context.Context, provider llm.Provider, cfg Config, in Input, excerpts []string) (Question, error) {
	if !in.Variation.Valid() {
		return Question{}, fmt.Errorf("unknown question variation %q", in.Variation)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)
	req := llm.UserPrompt(systemPrompt, buildUserMessage(in, excerpts, cfg), QuestionSchema, cfg.MaxTokens, cfg.Temperature)

	attempts := max(cfg.MaxAttempts, 1)
	var lastErr error
	for range attempts {
		out, err := llm.GenerateJSON[questionOutput](ctx, provider, req)
		if err == nil {
			text := strings.TrimSpace(out.Question)
			if text != "" {
				return Question{Text: text, Variation: in.Variation}, nil
			}
			err = errEmptyQuestion
		}
		if ctx.Err() != nil {
			return Question{}, ctx.Err()
		}
		lastErr = err
	}
	return Question{}, fmt.Errorf("generate question after %d attempts: %w", attempts, lastErr)
}
