package curriculum

import "github.com/abhisek/assessor/internal/llm"

// CurriculumSchema defines the JSON schema for a concept list.
var CurriculumSchema = &llm.Schema{
	Name:        "concept-curriculum",
	Description: "Ordered list of concepts forming a learning path",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"curriculum": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    MinConcepts,
				"description": "Concept titles ordered from foundational to advanced",
			},
		},
		"required":             []any{"curriculum"},
		"additionalProperties": false,
	},
}

// RelevanceSchema defines the JSON schema for the retrieval gate verdict.
var RelevanceSchema = &llm.Schema{
	Name:        "material-relevance",
	Description: "Whether retrieved learning material fits the learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_relevant": map[string]any{
				"type":        "boolean",
				"description": "True when the excerpts can support the learner's subject and goal",
			},
		},
		"required":             []any{"is_relevant"},
		"additionalProperties": false,
	},
}

type curriculumOutput struct {
	Curriculum []string `json:"curriculum"`
}

type relevanceOutput struct {
	IsRelevant bool `json:"is_relevant"`
}
