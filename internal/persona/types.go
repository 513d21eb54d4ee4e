package persona

// Summary is the structured learner profile produced once a session
// finishes.
type Summary struct {
	ProfileSummary  string   `json:"learner_profile_summary" yaml:"learner_profile_summary"`
	LearningStyle   []string `json:"learning_style_assessment" yaml:"learning_style_assessment"`
	Strengths       []string `json:"strengths" yaml:"strengths"`
	Weaknesses      []string `json:"weaknesses_and_gaps" yaml:"weaknesses_and_gaps"`
	Misconceptions  []string `json:"common_misconceptions" yaml:"common_misconceptions"`
	Engagement      string   `json:"engagement_and_confidence" yaml:"engagement_and_confidence"`
	Recommendations []string `json:"actionable_learning_recommendations" yaml:"actionable_learning_recommendations"`
	Roadmap         []string `json:"preliminary_personalized_roadmap_suggestions" yaml:"preliminary_personalized_roadmap_suggestions"`
}

// Entry is one scored turn of the interview.
type Entry struct {
	Concept  string
	Question string
	Answer   string
	Score    int
	Feedback string
}

// Transcript is the full interview plus the learner's context.
type Transcript struct {
	Subject    string
	Goal       string
	Level      string
	Curriculum []string
	Entries    []Entry
}

// MaxRoadmapItems caps the roadmap length.
const MaxRoadmapItems = 5

// MinConclusiveTurns is the transcript length below which only high-level
// observations are requested.
const MinConclusiveTurns = 3
