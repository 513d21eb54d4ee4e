package question

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a helpful tutor writing assessment questions.

Rules:
- Generate exactly one concise question.
- The question must directly involve the specified concept.
- Clearly indicate the type of question (e.g., multiple choice, short answer).
- Return only the question text. Do not include answers, explanations or any other information.
- The question should be appropriate for the specified level.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message. excerpts is empty for
// ungrounded questions.
func buildUserMessage(in Input, excerpts []string, cfg Config) string {
	instr := in.Variation.Instruction()

	var b strings.Builder
	fmt.Fprintf(&b, "Generate one concise question on basis of %s to assess a Level %s student's understanding of the following:\n\n", instr, levelOrDefault(in.Level))
	fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	fmt.Fprintf(&b, "Concept: %s\n", in.Concept)
	fmt.Fprintf(&b, "Additional Instructions: %s\n", instr)

	b.WriteString("\nAlready asked about this concept:\n")
	b.WriteString(buildPrior(in.PriorQuestions, cfg.MaxPriorQuestions))
	b.WriteString("\n")

	if len(excerpts) > 0 {
		b.WriteString("\nContext:\n")
		b.WriteString(strings.Join(excerpts, "\n\n"))
		b.WriteString("\n\nOnly generate one clear question, based on the context above.")
	}

	return b.String()
}

// buildPrior formats earlier questions, keeping the most recent max.
func buildPrior(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

func levelOrDefault(level string) string {
	if strings.TrimSpace(level) == "" {
		return "general"
	}
	return level
}
