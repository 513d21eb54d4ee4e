package scoring

import "github.com/abhisek/assessor/internal/question"

// rubric is the variation-specific part of the scoring prompt.
type rubric struct {
	scoring       string
	applicability string
	feedback      []string
}

var rubrics = map[question.Variation]rubric{
	question.MultipleChoice: {
		scoring: "Evaluate solely on the correctness of the chosen option. If the answer (a letter or the exact text of the correct option) is precisely correct, assign 100. " +
			"If it is incorrect or ambiguous, assign 0. Do NOT penalize a correct answer for lacking explanation or depth.",
		applicability: "The general rubric's emphasis on completeness and depth does NOT apply to this multiple-choice question. Focus strictly on correctness.",
		feedback: []string{
			"Strengths: if correct, say so and briefly why the option is right.",
			"Weaknesses/Gaps: if incorrect, say why the chosen option is wrong and name the correct one.",
			"Misconceptions: if the wrong choice reveals a common misconception, highlight it briefly.",
			"Actionable advice: if correct, encourage. If incorrect, point toward the correct understanding without a full lecture.",
		},
	},
	question.OneWordAnswer: {
		scoring: "Evaluate the exact correctness of the one word. If it is precisely correct, assign 100. " +
			"If it is incorrect or deviates significantly, assign 0-10. Do NOT expect or penalize for missing explanation.",
		applicability: "The general rubric's emphasis on completeness and depth does NOT apply to this one-word answer. Focus strictly on correctness.",
		feedback: []string{
			"Strengths: if correct, say so.",
			"Weaknesses/Gaps: if incorrect, give the correct word and briefly why the given word is wrong.",
			"Misconceptions: identify any clear misconception.",
			"Actionable advice: if correct, encourage. If incorrect, point toward the correct word or concept.",
		},
	},
	question.FillInTheBlanks: {
		scoring: "Evaluate the correctness of the filled-in text. With several blanks, score proportionally (e.g., 50 for one correct out of two). " +
			"Assign 100 for fully correct, 30-70 for partially correct and 0-20 for largely incorrect. Do NOT expect explanation beyond the filled-in content.",
		applicability: "The general rubric's emphasis on completeness and depth applies only to the accuracy of the filled-in content.",
		feedback: []string{
			"Strengths: state which blanks were filled correctly.",
			"Weaknesses/Gaps: name each incorrect or incomplete blank and its correct fill.",
			"Misconceptions: identify any clear misconception shown by the incorrect fills.",
			"Actionable advice: guide the learner toward the correct content for the incorrect blanks.",
		},
	},
	question.DetailedAnswer: {
		scoring: "Apply the general scoring rubric thoroughly. Evaluate the accuracy, completeness, depth and clarity of the explanation. " +
			"A comprehensive response demonstrating strong understanding of the concept is expected.",
		applicability: "The general scoring rubric applies in full, as a detailed explanation is expected.",
		feedback: []string{
			"Strengths: identify what the learner did well (accurate points, structure, examples, clarity).",
			"Weaknesses/Gaps: pinpoint where the answer was weak, incomplete, incorrect or shallow, referencing the concept.",
			"Misconceptions: highlight any clear misconception.",
			"Explain why: say why parts of the answer were correct or incorrect.",
			"Actionable advice: suggest what to improve next (e.g., elaborate on X, distinguish Y from Z).",
		},
	},
}

var fallbackRubric = rubric{
	scoring: "Evaluate the answer on relevance, correctness and the level of detail this kind of question calls for. " +
		"If the question implies a detailed response, expect completeness. If it implies brevity, score on accuracy and conciseness.",
	applicability: "Apply the general rubric flexibly, considering what a complete answer means for this question.",
	feedback: []string{
		"Strengths: identify what the learner did well.",
		"Weaknesses/Gaps: pinpoint where the answer was weak, incomplete or incorrect.",
		"Misconceptions: highlight any clear misconception.",
		"Actionable advice: suggest what to improve next.",
	},
}

func rubricFor(v question.Variation) rubric {
	if r, ok := rubrics[v]; ok {
		return r
	}
	return fallbackRubric
}

// Band names the general rubric band a score falls in.
func Band(score int) string {
	switch {
	case score >= 90:
		return "exemplary"
	case score >= 70:
		return "solid"
	case score >= 40:
		return "developing"
	default:
		return "emerging"
	}
}
