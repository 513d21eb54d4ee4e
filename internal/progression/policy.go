package progression

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/assessor/internal/llm"
)

// DefaultPassThreshold is the score at or above which the threshold
// policy advances.
const DefaultPassThreshold = 80

// Turn is the scored turn a policy judges.
type Turn struct {
	Subject    string
	Goal       string
	Level      string
	Curriculum []string
	Concept    string
	Question   string
	Answer     string
	Score      int
	Feedback   string
}

// Policy recommends a verdict for a scored turn. Implementations return
// an error only when ctx is done.
type Policy interface {
	Verdict(ctx context.Context, s State, turn Turn) (Verdict, error)
	Name() string
}

// ThresholdPolicy advances when the score reaches PassThreshold.
type ThresholdPolicy struct {
	PassThreshold int
}

// NewThresholdPolicy creates a ThresholdPolicy. A threshold outside
// [1,100] uses DefaultPassThreshold.
func NewThresholdPolicy(threshold int) *ThresholdPolicy {
	if threshold < 1 || threshold > 100 {
		threshold = DefaultPassThreshold
	}
	return &ThresholdPolicy{PassThreshold: threshold}
}

// Verdict implements Policy.
func (p *ThresholdPolicy) Verdict(_ context.Context, _ State, turn Turn) (Verdict, error) {
	if turn.Score >= p.PassThreshold {
		return VerdictAdvance, nil
	}
	return VerdictRetry, nil
}

// Name implements Policy.
func (p *ThresholdPolicy) Name() string { return "threshold" }

// ArbitratedPolicy asks the LLM whether the learner should move on. When
// the LLM cannot answer it uses the threshold verdict.
type ArbitratedPolicy struct {
	provider   llm.Provider
	fallback   *ThresholdPolicy
	maxRetries int
	logger     *slog.Logger
}

// NewArbitratedPolicy creates an ArbitratedPolicy.
func NewArbitratedPolicy(provider llm.Provider, threshold, maxRetries int, logger *slog.Logger) *ArbitratedPolicy {
	if maxRetries < 1 {
		maxRetries = MaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArbitratedPolicy{
		provider:   provider,
		fallback:   NewThresholdPolicy(threshold),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// VerdictSchema defines the JSON schema for an arbitrated verdict.
var VerdictSchema = &llm.Schema{
	Name:        "progression-verdict",
	Description: "Whether the learner should move to the next concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"decision": map[string]any{
				"type": "string",
				"enum": []any{"next", "retry"},
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One sentence justifying the decision",
			},
		},
		"required":             []any{"decision", "reason"},
		"additionalProperties": false,
	},
}

type verdictOutput struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

const arbiterSystemPrompt = `You supervise an adaptive assessment interview. After each scored answer you decide whether the learner has shown enough understanding of the current concept to move on ("next") or should get another question on it ("retry").

Rules:
- Base the decision on the evidence in the answer, score and feedback.
- A score of 80 or more normally means "next".
- Prefer "retry" when the answer reveals a misconception a second question could clarify.
- Keep the reason to one sentence.`

// Verdict implements Policy. A turn that exhausts the retry budget is
// decided without the LLM since Step forces the advance anyway.
func (p *ArbitratedPolicy) Verdict(ctx context.Context, s State, turn Turn) (Verdict, error) {
	fallback, _ := p.fallback.Verdict(ctx, s, turn)
	if s.Exhausted(p.maxRetries) {
		return fallback, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeProgression)
	req := llm.UserPrompt(arbiterSystemPrompt, buildArbiterMessage(s, turn, p.maxRetries), VerdictSchema, 128, 0)

	out, err := llm.GenerateJSON[verdictOutput](ctx, p.provider, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.logger.Warn("progression arbiter failed, using threshold verdict", "concept", turn.Concept, "error", err)
		return fallback, nil
	}

	p.logger.Debug("progression verdict", "concept", turn.Concept, "decision", out.Decision, "reason", out.Reason)
	if out.Decision == string(VerdictAdvance) {
		return VerdictAdvance, nil
	}
	return VerdictRetry, nil
}

// Name implements Policy.
func (p *ArbitratedPolicy) Name() string { return "arbitrated" }

func buildArbiterMessage(s State, turn Turn, maxRetries int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", turn.Subject)
	fmt.Fprintf(&b, "Goal: %s\n", turn.Goal)
	fmt.Fprintf(&b, "Level: %s\n", turn.Level)
	fmt.Fprintf(&b, "Curriculum: %s\n", strings.Join(turn.Curriculum, ", "))
	fmt.Fprintf(&b, "Current concept: %s (%d of %d)\n", turn.Concept, s.ConceptIndex+1, len(turn.Curriculum))
	fmt.Fprintf(&b, "Retries used on this concept: %d of %d\n", s.RetryCount, maxRetries-1)

	fmt.Fprintf(&b, "\nQ: %s\nA: %s\nScore: %d\nFeedback: %s\n", turn.Question, turn.Answer, turn.Score, turn.Feedback)

	b.WriteString("\nDecide \"next\" or \"retry\".")
	return b.String()
}

// NewPolicy returns the policy registered under name ("threshold" or
// "arbitrated").
func NewPolicy(name string, provider llm.Provider, threshold, maxRetries int, logger *slog.Logger) (Policy, error) {
	switch name {
	case "", "threshold":
		return NewThresholdPolicy(threshold), nil
	case "arbitrated":
		return NewArbitratedPolicy(provider, threshold, maxRetries, logger), nil
	default:
		return nil, fmt.Errorf("unknown progression policy %q (valid: threshold, arbitrated)", name)
	}
}
