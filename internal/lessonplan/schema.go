package lessonplan

import "github.com/abhisek/assessor/internal/llm"

// Criteria are the evaluation dimensions, in prompt order.
var Criteria = []string{
	"total_hour_match",
	"topic_structure",
	"syllabus_coverage",
	"sub_topic_granularity",
	"learning_progression",
	"time_allocation",
	"personalization",
}

// PlanSchema defines the JSON schema for lesson plan generation.
var PlanSchema = &llm.Schema{
	Name:        "lesson-plan",
	Description: "A personalized lesson plan split into chapters and sub-topics",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject_name":           map[string]any{"type": "string"},
			"learner_level":          map[string]any{"type": "string"},
			"learner_goal":           map[string]any{"type": "string"},
			"overall_course_outcome": map[string]any{"type": "string", "description": "What the learner will achieve on completion"},
			"chapters": map[string]any{
				"type":     "array",
				"minItems": MinChapters,
				"maxItems": MaxChapters,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"chapter_title":   map[string]any{"type": "string"},
						"chapter_outcome": map[string]any{"type": "string", "description": "What the learner can do after this chapter"},
						"sub_topics": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"sub_topic_title":        map[string]any{"type": "string"},
									"sub_topic_outcome":      map[string]any{"type": "string"},
									"estimated_time_minutes": map[string]any{"type": "integer", "minimum": 1},
								},
								"required":             []any{"sub_topic_title", "sub_topic_outcome", "estimated_time_minutes"},
								"additionalProperties": false,
							},
						},
						"chapter_total_time_minutes": map[string]any{"type": "integer", "description": "Sum of the sub-topic minutes"},
					},
					"required":             []any{"chapter_title", "chapter_outcome", "sub_topics", "chapter_total_time_minutes"},
					"additionalProperties": false,
				},
			},
			"total_module_time_hours": map[string]any{"type": "number"},
			"prerequisites": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"adaptive_notes": map[string]any{"type": "string", "description": "How the plan is personalized to this learner"},
		},
		"required": []any{
			"subject_name", "learner_level", "learner_goal", "overall_course_outcome",
			"chapters", "total_module_time_hours", "prerequisites",
		},
		"additionalProperties": false,
	},
}

func metricSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":   map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
			"comment": map[string]any{"type": "string"},
		},
		"required":             []any{"score", "comment"},
		"additionalProperties": false,
	}
}

// EvaluationSchema defines the JSON schema for lesson plan review.
var EvaluationSchema = &llm.Schema{
	Name:        "lesson-plan-evaluation",
	Description: "Graded review of a lesson plan with per-criterion scores",
	Definition: func() map[string]any {
		metrics := map[string]any{}
		required := make([]any, 0, len(Criteria))
		for _, c := range Criteria {
			metrics[c] = metricSchema()
			required = append(required, c)
		}
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"grade":    map[string]any{"type": "string", "enum": []any{string(GradeGood), string(GradeBad)}},
				"feedback": map[string]any{"type": "string", "description": "Actionable feedback on what works and what must improve"},
				"evaluation_metrics": map[string]any{
					"type":                 "object",
					"properties":           metrics,
					"required":             required,
					"additionalProperties": false,
				},
			},
			"required":             []any{"grade", "feedback", "evaluation_metrics"},
			"additionalProperties": false,
		}
	}(),
}
