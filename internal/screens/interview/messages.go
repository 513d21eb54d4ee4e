package interview

import iv "github.com/abhisek/assessor/internal/interview"

// sessionStartedMsg is sent when StartSession returns.
type sessionStartedMsg struct {
	Result *iv.StartResult
	Err    error
}

// answerScoredMsg is sent when SubmitAnswer returns.
type answerScoredMsg struct {
	Result *iv.TurnResult
	Err    error
}
