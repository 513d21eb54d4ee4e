package lessonplan

import (
	"fmt"
	"strings"

	"github.com/abhisek/assessor/internal/persona"
)

const generatorSystemPrompt = `You are an expert educational curriculum designer specializing in adaptive learning experiences. You write structured, personalized lesson plans with realistic timing and measurable outcomes.`

const evaluatorSystemPrompt = `You are an expert educational evaluator specializing in personalized curriculum assessment. You grade lesson plans strictly against the stated criteria.`

// criterionPrompts describes each criterion for the evaluator.
var criterionPrompts = map[string]string{
	"total_hour_match":      "Is the total duration appropriate for this subject, level and goal? 1 (insufficient time) to 10 (perfectly appropriate)",
	"topic_structure":       "Are there 2-7 main chapters with appropriate sub-topics? 1 (poor structure) to 10 (excellent structure)",
	"syllabus_coverage":     "Does the plan cover the content needed for the goal? 1 (major gaps) to 10 (comprehensive coverage)",
	"sub_topic_granularity": "Are sub-topics well scoped with clear outcomes? 1 (too vague) to 10 (perfectly scoped)",
	"learning_progression":  "Does the sequence build from basic to advanced? 1 (illogical jumps) to 10 (perfect progression)",
	"time_allocation":       "Is time allocation realistic and personalized? 1 (unrealistic) to 10 (perfectly calibrated)",
	"personalization":       "Does the plan address this learner's profile, strengths and weaknesses? 1 (generic) to 10 (perfectly tailored)",
}

func writeContext(b *strings.Builder, in Input) {
	fmt.Fprintf(b, "- Subject: %s\n", in.Subject)
	fmt.Fprintf(b, "- Goal: %s\n", in.Goal)
	fmt.Fprintf(b, "- Current level: %s\n", in.Level)
	if len(in.Curriculum) == 0 {
		b.WriteString("- Prior curriculum: none\n")
	} else {
		b.WriteString("- Prior curriculum:\n")
		for _, c := range in.Curriculum {
			fmt.Fprintf(b, "  - %s\n", c)
		}
	}
}

func formatPersona(p *persona.Summary) string {
	if p == nil {
		return "No learner profile available."
	}
	var sections []string
	if p.ProfileSummary != "" {
		sections = append(sections, "Learner overview: "+p.ProfileSummary)
	}
	for _, s := range []struct {
		label string
		items []string
	}{
		{"Learning style", p.LearningStyle},
		{"Strengths", p.Strengths},
		{"Areas for improvement", p.Weaknesses},
		{"Misconceptions", p.Misconceptions},
		{"Suggested roadmap", p.Roadmap},
	} {
		if len(s.items) > 0 {
			sections = append(sections, s.label+":\n- "+strings.Join(s.items, "\n- "))
		}
	}
	if len(sections) == 0 {
		return "Limited learner profile information available."
	}
	return strings.Join(sections, "\n\n")
}

func buildGeneratorMessage(in Input, feedback []string) string {
	var b strings.Builder

	b.WriteString("LEARNER CONTEXT\n")
	writeContext(&b, in)

	b.WriteString("\nLEARNER PROFILE\n")
	b.WriteString(formatPersona(in.Persona))
	b.WriteString("\n")

	b.WriteString("\nPREVIOUS FEEDBACK TO ADDRESS\n")
	if len(feedback) == 0 {
		b.WriteString("No previous feedback to incorporate.\n")
	} else {
		for i, f := range feedback {
			fmt.Fprintf(&b, "Attempt %d: %s\n", i+1, f)
		}
	}

	fmt.Fprintf(&b, `
TASK
Create a structured, personalized lesson plan:
1. Structure: %d-%d main chapters, each with 3-5 focused sub-topics.
2. Timing: realistic minute estimates for every sub-topic.
3. Progression: build from fundamentals to advanced concepts.
4. Personalization: address the strengths and weaknesses in the profile.
5. Adaptation: incorporate the previous feedback, and say how in adaptive_notes.
6. Accessibility: match the learner's learning style.
7. Outcomes: a clear, measurable outcome for every chapter and sub-topic.
8. Prerequisites: list essential knowledge needed before starting.`, MinChapters, MaxChapters)

	return b.String()
}

// FormatPlan renders a plan as readable text.
func FormatPlan(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", p.Subject)
	fmt.Fprintf(&b, "Level: %s\n", p.Level)
	fmt.Fprintf(&b, "Goal: %s\n", p.Goal)
	fmt.Fprintf(&b, "Total hours: %.1f\n", p.TotalHours)
	fmt.Fprintf(&b, "Overall outcome: %s\n", p.Outcome)

	if len(p.Prerequisites) > 0 {
		b.WriteString("\nPrerequisites:\n")
		for _, pr := range p.Prerequisites {
			fmt.Fprintf(&b, "- %s\n", pr)
		}
	}

	for i, ch := range p.Chapters {
		fmt.Fprintf(&b, "\n## Chapter %d: %s\n", i+1, ch.Title)
		fmt.Fprintf(&b, "Outcome: %s\n", ch.Outcome)
		fmt.Fprintf(&b, "Time: %d minutes\n", ch.Minutes)
		for j, st := range ch.SubTopics {
			fmt.Fprintf(&b, "  %d. %s (%d min): %s\n", j+1, st.Title, st.Minutes, st.Outcome)
		}
	}

	if p.AdaptiveNotes != "" {
		fmt.Fprintf(&b, "\nAdaptive notes:\n%s\n", p.AdaptiveNotes)
	}
	return b.String()
}

func buildEvaluatorMessage(in Input, p *Plan) string {
	var b strings.Builder

	b.WriteString("CONTEXT\n")
	writeContext(&b, in)

	b.WriteString("\nLEARNER PROFILE\n")
	b.WriteString(formatPersona(in.Persona))
	b.WriteString("\n")

	b.WriteString("\nLESSON PLAN TO EVALUATE\n")
	b.WriteString(FormatPlan(p))

	b.WriteString("\nEVALUATION CRITERIA\nScore each criterion from 1 to 10 with a specific comment:\n")
	for _, c := range Criteria {
		fmt.Fprintf(&b, "- %s: %s\n", c, criterionPrompts[c])
	}

	fmt.Fprintf(&b, `
GRADING
- "Good": %d or more in at least %d criteria and no criterion below %d.
- "Bad": otherwise.

Feedback must say what is effective, what must improve, and how to better address this learner's needs.`, goodScore, goodCount, floorScore)

	return b.String()
}
