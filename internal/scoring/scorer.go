// Package scoring grades a learner's answer with a rubric chosen by the
// question's variation.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/question"
)

// Feedback recorded when no LLM evaluation is available.
const (
	EmptyAnswerFeedback = "No answer was given, so no credit could be awarded. Try answering in your own words next time, even if you are unsure."
	UnparsableFeedback  = "The answer could not be evaluated automatically, so it was recorded with a score of 0."
)

// Input is one answer to grade.
type Input struct {
	Question  string
	Answer    string
	Variation question.Variation
	Subject   string
	Level     string
	Goal      string
	Concept   string
}

// Result is a graded answer. Evaluated is false when the score was
// assigned without a usable LLM judgment.
type Result struct {
	Score     int
	Feedback  string
	Evaluated bool
}

// Config controls scoring.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   768,
		Temperature: 0.2,
	}
}

// ScoreSchema defines the JSON schema for a graded answer. Bounds are
// enforced by clamping, not by the schema.
var ScoreSchema = &llm.Schema{
	Name:        "answer-score",
	Description: "Score and feedback for a learner's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"description": "Score between 0 and 100 reflecting accuracy and completeness",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Strengths, gaps, misconceptions and one actionable next step",
			},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}

type scoreOutput struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Scorer grades answers with an LLM.
type Scorer struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// NewScorer creates a Scorer.
func NewScorer(provider llm.Provider, cfg Config, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{provider: provider, cfg: cfg, logger: logger}
}

// Score grades in. Blank answers score 0 without an LLM call. Output that
// cannot be read as a score also scores 0. Only transport failures and
// cancellation are returned as errors.
func (s *Scorer) Score(ctx context.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return Result{Score: 0, Feedback: EmptyAnswerFeedback}, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeScoring)
	req := llm.UserPrompt(systemPrompt, buildUserMessage(in), ScoreSchema, s.cfg.MaxTokens, s.cfg.Temperature)

	out, err := llm.GenerateJSON[scoreOutput](ctx, s.provider, req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if unreadable(err) {
			s.logger.Warn("score response unreadable, defaulting to 0", "concept", in.Concept, "error", err)
			return Result{Score: 0, Feedback: UnparsableFeedback}, nil
		}
		return Result{}, fmt.Errorf("score answer: %w", err)
	}

	feedback := strings.TrimSpace(out.Feedback)
	if feedback == "" {
		feedback = fmt.Sprintf("Scored %d (%s).", Clamp(out.Score), Band(Clamp(out.Score)))
	}
	return Result{Score: Clamp(out.Score), Feedback: feedback, Evaluated: true}, nil
}

func unreadable(err error) bool {
	var maxTok *llm.ErrMaxTokensExceeded
	return llm.IsInvalidResponse(err) || errors.As(err, &maxTok)
}

// Clamp rounds v to the nearest integer within [0,100]. NaN is 0.
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
