// Package lessonplan builds a personalized lesson plan from a finished
// assessment and refines it through an LLM review loop.
package lessonplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/abhisek/assessor/internal/llm"
)

// Grading rule: Good needs goodScore or more in at least goodCount
// criteria and nothing below floorScore.
const (
	goodScore  = 7
	goodCount  = 5
	floorScore = 5
)

// ErrNoPlan is returned when every generation attempt failed.
var ErrNoPlan = errors.New("no lesson plan generated")

// Config holds lesson plan settings.
type Config struct {
	MaxAttempts          int
	GeneratorMaxTokens   int
	GeneratorTemperature float64
	EvaluatorMaxTokens   int
	EvaluatorTemperature float64
}

// DefaultConfig returns sensible defaults for lesson planning.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:          3,
		GeneratorMaxTokens:   4096,
		GeneratorTemperature: 0.2,
		EvaluatorMaxTokens:   1536,
		EvaluatorTemperature: 0.1,
	}
}

// Service runs the generate/evaluate loop.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a lesson plan service.
func NewService(provider llm.Provider, cfg Config, logger *slog.Logger) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, cfg: cfg, logger: logger}
}

// Plan generates and reviews up to MaxAttempts plans. Reviewer feedback
// from each rejected attempt is fed into the next generation. The first
// plan graded Good is returned; otherwise the last plan is returned with
// its evaluation.
func (s *Service) Plan(ctx context.Context, in Input) (*Result, error) {
	var (
		feedback []string
		last     *Result
		lastErr  error
	)

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		plan, err := s.generate(ctx, in, feedback)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("lesson plan generation failed", "attempt", attempt, "error", err)
			lastErr = err
			feedback = append(feedback, fmt.Sprintf("Failed to generate lesson plan: %v", err))
			continue
		}

		eval, err := s.evaluate(ctx, in, plan)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("lesson plan evaluation failed", "attempt", attempt, "error", err)
			eval = Evaluation{Grade: GradeBad, Feedback: fmt.Sprintf("Error during lesson plan evaluation: %v", err)}
		}

		last = &Result{Plan: plan, Evaluation: eval, Attempts: attempt}
		if eval.Grade == GradeGood {
			return last, nil
		}
		feedback = append(feedback, eval.Feedback)
	}

	if last == nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrNoPlan, s.cfg.MaxAttempts, lastErr)
	}
	last.Attempts = s.cfg.MaxAttempts
	last.Evaluation.Feedback += fmt.Sprintf("\n\nMaximum attempts (%d) reached. Returning the last lesson plan.", s.cfg.MaxAttempts)
	return last, nil
}

func (s *Service) generate(ctx context.Context, in Input, feedback []string) (*Plan, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLessonPlan)
	req := llm.UserPrompt(generatorSystemPrompt, buildGeneratorMessage(in, feedback),
		PlanSchema, s.cfg.GeneratorMaxTokens, s.cfg.GeneratorTemperature)

	plan, err := llm.GenerateJSON[Plan](ctx, s.provider, req)
	if err != nil {
		return nil, fmt.Errorf("generate lesson plan: %w", err)
	}
	normalizePlan(&plan, in)
	return &plan, nil
}

func (s *Service) evaluate(ctx context.Context, in Input, p *Plan) (Evaluation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLessonReview)
	req := llm.UserPrompt(evaluatorSystemPrompt, buildEvaluatorMessage(in, p),
		EvaluationSchema, s.cfg.EvaluatorMaxTokens, s.cfg.EvaluatorTemperature)

	eval, err := llm.GenerateJSON[Evaluation](ctx, s.provider, req)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate lesson plan: %w", err)
	}
	eval.Feedback = strings.TrimSpace(eval.Feedback)
	if eval.Grade == GradeGood && !Passes(eval.Metrics) {
		eval.Grade = GradeBad
	}
	return eval, nil
}

// Passes reports whether metrics satisfy the Good grading rule.
func Passes(metrics map[string]Metric) bool {
	if len(metrics) == 0 {
		return false
	}
	high := 0
	for _, m := range metrics {
		if m.Score < floorScore {
			return false
		}
		if m.Score >= goodScore {
			high++
		}
	}
	return high >= goodCount
}

// normalizePlan derives chapter and module totals from the sub-topic
// estimates and fills learner fields the generator left blank.
func normalizePlan(p *Plan, in Input) {
	if strings.TrimSpace(p.Subject) == "" {
		p.Subject = in.Subject
	}
	if strings.TrimSpace(p.Level) == "" {
		p.Level = in.Level
	}
	if strings.TrimSpace(p.Goal) == "" {
		p.Goal = in.Goal
	}

	total := 0
	for i := range p.Chapters {
		minutes := 0
		for _, st := range p.Chapters[i].SubTopics {
			minutes += st.Minutes
		}
		p.Chapters[i].Minutes = minutes
		total += minutes
	}
	p.TotalHours = math.Round(float64(total)/60*10) / 10
}
