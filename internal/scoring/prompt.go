package scoring

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert educational evaluator for a personalized learning platform. You score a learner's answer to an interview question from 0 to 100 and give detailed, actionable feedback.

Rules:
- Judge subject-matter knowledge only. Do not penalize grammar, spelling or phrasing.
- Keep the feedback specific, constructive and encouraging.
- Return only the score and feedback.`

const generalRubric = `- 0-39 Emerging: very limited grasp of the core concept, significant inaccuracies, major gaps or fundamental misconceptions.
- 40-69 Developing: some understanding with a few correct points, but notable errors, omissions or confusion.
- 70-89 Solid: mostly accurate and complete, with minor inaccuracies or omissions. Generally enough to move on.
- 90-100 Exemplary: highly accurate, complete and nuanced, possibly with advanced insight or strong practical application.`

func buildUserMessage(in Input) string {
	r := rubricFor(in.Variation)

	var b strings.Builder
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Subject: %s\n", in.Subject)
	fmt.Fprintf(&b, "- Learning goal: %s\n", orNA(in.Goal))
	fmt.Fprintf(&b, "- Learner level: %s\n", orNA(in.Level))
	fmt.Fprintf(&b, "- Concept being assessed: %s\n", orNA(in.Concept))

	fmt.Fprintf(&b, "\nQuestion:\nQ: %s\n", in.Question)
	fmt.Fprintf(&b, "\nLearner's answer:\nA: %s\n", strings.TrimSpace(in.Answer))

	fmt.Fprintf(&b, "\nQuestion type: %s\n", strings.ToUpper(orNA(string(in.Variation))))
	b.WriteString(r.scoring)
	b.WriteString("\n\nGeneral scoring rubric:\n")
	b.WriteString(r.applicability)
	b.WriteString("\n")
	b.WriteString(generalRubric)

	b.WriteString("\n\nFeedback must cover:\n")
	for _, f := range r.feedback {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	fmt.Fprintf(&b, "Value the learner's knowledge of %s, not their language.", in.Subject)

	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
