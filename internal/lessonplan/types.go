package lessonplan

import "github.com/abhisek/assessor/internal/persona"

// Grade is the evaluator's overall verdict on a plan.
type Grade string

const (
	GradeGood Grade = "Good"
	GradeBad  Grade = "Bad"
)

// Chapter bounds enforced on every generated plan.
const (
	MinChapters = 2
	MaxChapters = 7
)

// SubTopic is a granular learning segment within a chapter.
type SubTopic struct {
	Title   string `json:"sub_topic_title" yaml:"sub_topic_title"`
	Outcome string `json:"sub_topic_outcome" yaml:"sub_topic_outcome"`
	Minutes int    `json:"estimated_time_minutes" yaml:"estimated_time_minutes"`
}

// Chapter is one main unit of the plan.
type Chapter struct {
	Title     string     `json:"chapter_title" yaml:"chapter_title"`
	Outcome   string     `json:"chapter_outcome" yaml:"chapter_outcome"`
	SubTopics []SubTopic `json:"sub_topics" yaml:"sub_topics"`
	Minutes   int        `json:"chapter_total_time_minutes" yaml:"chapter_total_time_minutes"`
}

// Plan is a personalized lesson plan.
type Plan struct {
	Subject       string    `json:"subject_name" yaml:"subject_name"`
	Level         string    `json:"learner_level" yaml:"learner_level"`
	Goal          string    `json:"learner_goal" yaml:"learner_goal"`
	Outcome       string    `json:"overall_course_outcome" yaml:"overall_course_outcome"`
	Chapters      []Chapter `json:"chapters" yaml:"chapters"`
	TotalHours    float64   `json:"total_module_time_hours" yaml:"total_module_time_hours"`
	Prerequisites []string  `json:"prerequisites" yaml:"prerequisites"`
	AdaptiveNotes string    `json:"adaptive_notes,omitempty" yaml:"adaptive_notes,omitempty"`
}

// Metric is the evaluator's score and comment on one criterion.
type Metric struct {
	Score   int    `json:"score" yaml:"score"`
	Comment string `json:"comment" yaml:"comment"`
}

// Evaluation is the evaluator's verdict on one plan.
type Evaluation struct {
	Grade    Grade             `json:"grade" yaml:"grade"`
	Feedback string            `json:"feedback" yaml:"feedback"`
	Metrics  map[string]Metric `json:"evaluation_metrics" yaml:"evaluation_metrics"`
}

// Result is the outcome of the generate/evaluate loop.
type Result struct {
	Plan       *Plan      `json:"lesson_plan" yaml:"lesson_plan"`
	Evaluation Evaluation `json:"evaluation" yaml:"evaluation"`
	Attempts   int        `json:"attempts" yaml:"attempts"`
}

// Input is the learner context a plan is built for.
type Input struct {
	Subject    string
	Goal       string
	Level      string
	Curriculum []string
	Persona    *persona.Summary
}
