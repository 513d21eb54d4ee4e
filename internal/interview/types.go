package interview

import (
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/progression"
	"github.com/abhisek/assessor/internal/question"
)

// Status values of a turn result.
const (
	StatusOK   = "ok"
	StatusDone = "done"
)

// StartRequest opens a session.
type StartRequest struct {
	LearnerID string `json:"user_id"`
	Subject   string `json:"subject"`
	Goal      string `json:"goal"`
	Level     string `json:"level"`
}

// StartResult is the first question of a new session.
type StartResult struct {
	SessionID  string             `json:"session_id"`
	Question   string             `json:"first_question"`
	Concept    string             `json:"first_concept"`
	Variation  question.Variation `json:"variation"`
	Curriculum []string           `json:"curriculum"`
	Grounded   bool               `json:"grounded"`
}

// HistoryEntry is one scored turn as reported back to callers.
type HistoryEntry struct {
	Turn      int                `json:"turn" yaml:"turn"`
	Concept   string             `json:"concept" yaml:"concept"`
	Variation question.Variation `json:"variation" yaml:"variation"`
	Question  string             `json:"question" yaml:"question"`
	Answer    string             `json:"answer" yaml:"answer"`
	Score     int                `json:"score" yaml:"score"`
	Feedback  string             `json:"feedback" yaml:"feedback"`
}

// TurnResult is the outcome of one submitted answer. While the session is
// in progress the Next fields are set; once done the Final fields are.
type TurnResult struct {
	Status       string                 `json:"status"`
	LastScore    int                    `json:"last_score"`
	LastFeedback string                 `json:"last_feedback"`
	Transition   progression.Transition `json:"transition"`

	NextQuestion string             `json:"next_question,omitempty"`
	NextConcept  string             `json:"next_concept,omitempty"`
	Variation    question.Variation `json:"variation,omitempty"`

	FinalAverage *float64         `json:"final_average_score,omitempty"`
	Persona      *persona.Summary `json:"persona_summary,omitempty"`
	History      []HistoryEntry   `json:"full_feedback_history,omitempty"`

	// PersonaErr is set when the session finished but the persona could
	// not be synthesized. EnsurePersona can retry it later.
	PersonaErr error `json:"-"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	SessionID       string             `json:"session_id" yaml:"session_id"`
	LearnerID       string             `json:"user_id" yaml:"user_id"`
	Subject         string             `json:"subject" yaml:"subject"`
	Goal            string             `json:"goal" yaml:"goal"`
	Level           string             `json:"level" yaml:"level"`
	Curriculum      []string           `json:"curriculum" yaml:"curriculum"`
	ConceptIndex    int                `json:"concept_index" yaml:"concept_index"`
	RetryCount      int                `json:"retry_count" yaml:"retry_count"`
	Grounded        bool               `json:"grounded" yaml:"grounded"`
	Done            bool               `json:"done" yaml:"done"`
	CurrentQuestion string             `json:"current_question,omitempty" yaml:"current_question,omitempty"`
	CurrentConcept  string             `json:"current_concept,omitempty" yaml:"current_concept,omitempty"`
	Variation       question.Variation `json:"variation,omitempty" yaml:"variation,omitempty"`
	History         []HistoryEntry     `json:"history" yaml:"history"`
	AverageScore    float64            `json:"average_score" yaml:"average_score"`
	Persona         *persona.Summary   `json:"persona,omitempty" yaml:"persona,omitempty"`
}

// Average returns the mean of scores, or 0 for none.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
