package persona

import "github.com/abhisek/assessor/internal/llm"

func stringList(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// SummarySchema defines the JSON schema for a learner persona.
var SummarySchema = &llm.Schema{
	Name:        "learner-persona",
	Description: "Learner profile with strengths, gaps and a remedial roadmap",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"learner_profile_summary": map[string]any{
				"type":        "string",
				"description": "Concise overview of the learner's approach and learning patterns",
			},
			"learning_style_assessment": stringList("Short labels for observed learning-style traits"),
			"strengths":                 stringList("Concepts or areas where the learner showed strong understanding"),
			"weaknesses_and_gaps":       stringList("Concepts or skills where the learner struggled or showed gaps"),
			"common_misconceptions":     stringList("Recurring or significant incorrect ideas"),
			"engagement_and_confidence": map[string]any{
				"type":        "string",
				"description": "Observed engagement, persistence and confidence",
			},
			"actionable_learning_recommendations": stringList("Concrete study strategies addressing the weaknesses"),
			"preliminary_personalized_roadmap_suggestions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
				"description": "3-5 specific topics to prioritize in the lesson plan, in order",
			},
		},
		"required": []any{
			"learner_profile_summary",
			"learning_style_assessment",
			"strengths",
			"weaknesses_and_gaps",
			"common_misconceptions",
			"engagement_and_confidence",
			"actionable_learning_recommendations",
			"preliminary_personalized_roadmap_suggestions",
		},
		"additionalProperties": false,
	},
}
