// Package persona turns a finished interview transcript into a structured
// learner profile.
package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/assessor/internal/llm"
)

const systemPrompt = `You are an expert educational psychologist and personalized learning architect. You analyze a learner's performance in an assessment interview and produce a detailed, actionable learning persona and a preliminary personalized roadmap that a lesson planner will build on.`

// Config controls persona synthesis.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.4,
	}
}

// Synthesizer builds personas with an LLM. It never re-scores or
// re-asks; the output depends only on the transcript.
type Synthesizer struct {
	provider llm.Provider
	cfg      Config
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(provider llm.Provider, cfg Config) *Synthesizer {
	return &Synthesizer{provider: provider, cfg: cfg}
}

// Synthesize produces the persona for t.
func (s *Synthesizer) Synthesize(ctx context.Context, t Transcript) (*Summary, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposePersona)
	req := llm.UserPrompt(systemPrompt, buildUserMessage(t), SummarySchema, s.cfg.MaxTokens, s.cfg.Temperature)

	out, err := llm.GenerateJSON[Summary](ctx, s.provider, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize persona: %w", err)
	}
	normalize(&out)
	return &out, nil
}

func normalize(p *Summary) {
	p.ProfileSummary = strings.TrimSpace(p.ProfileSummary)
	p.Engagement = strings.TrimSpace(p.Engagement)
	p.LearningStyle = compact(p.LearningStyle)
	p.Strengths = compact(p.Strengths)
	p.Weaknesses = compact(p.Weaknesses)
	p.Misconceptions = compact(p.Misconceptions)
	p.Recommendations = compact(p.Recommendations)
	p.Roadmap = compact(p.Roadmap)
	if len(p.Roadmap) > MaxRoadmapItems {
		p.Roadmap = p.Roadmap[:MaxRoadmapItems]
	}
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func buildUserMessage(t Transcript) string {
	var b strings.Builder

	b.WriteString("Learner context:\n")
	fmt.Fprintf(&b, "- Subject: %s\n", t.Subject)
	fmt.Fprintf(&b, "- Learning goal: %q\n", t.Goal)
	fmt.Fprintf(&b, "- Stated level: %s\n", t.Level)
	curriculum := "N/A"
	if len(t.Curriculum) > 0 {
		curriculum = strings.Join(t.Curriculum, ", ")
	}
	fmt.Fprintf(&b, "- Interview concepts: %s\n", curriculum)

	b.WriteString("\nInterview history with scores and feedback:\n")
	if len(t.Entries) == 0 {
		b.WriteString("No questions were answered.\n")
	}
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "\n--- Interview Segment ---\n")
		if e.Concept != "" {
			fmt.Fprintf(&b, "Concept: %s\n", e.Concept)
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\nScore: %d\n", e.Question, e.Answer, e.Score)
		if e.Feedback != "" {
			fmt.Fprintf(&b, "Feedback: %s\n", e.Feedback)
		}
	}

	b.WriteString(`
Instructions:
Analyze the interview and produce a learning persona:
1. Learner profile summary: a concise overview of the learner's approach and learning patterns.
2. Learning style assessment: short labels for likely styles and preferences (theory vs. practice, guided vs. self-directed, and so on).
3. Strengths: precise concepts or areas where the learner showed clear proficiency.
4. Weaknesses and gaps: precise concepts or prerequisites where the learner struggled, referring to the questions and feedback.
5. Common misconceptions: specific incorrect ideas the learner exhibited. Use an empty list if there were none.
6. Engagement and confidence: comment on engagement, persistence and confidence.
7. Actionable learning recommendations: concrete study strategies that address the weaknesses and use the strengths.
8. Preliminary roadmap: 3 to 5 specific topics, more granular than the interview concepts, ordered as chapters of a personalized lesson plan.

Edge cases:
- Mixed performance: look for patterns by concept or question type.
- Ambiguous answers: infer the most likely issue and recommend clarifying activities.`)

	if len(t.Entries) < MinConclusiveTurns {
		fmt.Fprintf(&b, "\n\nThis interview has only %d answered question(s). Keep every section to high-level observations, acknowledge the limited evidence, and do not invent specifics the transcript does not support.", len(t.Entries))
	}

	return b.String()
}
