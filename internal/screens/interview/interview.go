// Package interview is the question-and-answer screen of an assessment.
package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	iv "github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/question"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/screens/summary"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/layout"
)

type phase int

const (
	phaseStarting phase = iota // waiting for the curriculum and first question
	phaseAnswering
	phaseScoring
	phaseFeedback
)

// spinnerTickMsg animates the waiting indicator.
type spinnerTickMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// InterviewScreen runs one assessment session turn by turn.
type InterviewScreen struct {
	svc screen.Service
	req iv.StartRequest

	sessionID  string
	curriculum []string
	grounded   bool
	concept    string
	question   string
	variation  question.Variation
	answered   int

	input       components.TextInput
	phase       phase
	last        *iv.TurnResult
	errMsg      string
	fatal       bool // error that ends the screen
	confirmQuit bool
	spin        int
}

var _ screen.Screen = (*InterviewScreen)(nil)
var _ screen.KeyHintProvider = (*InterviewScreen)(nil)
var _ screen.StatusProvider = (*InterviewScreen)(nil)

// New creates a screen that starts a new session for req.
func New(svc screen.Service, req iv.StartRequest) *InterviewScreen {
	return &InterviewScreen{
		svc:   svc,
		req:   req,
		phase: phaseStarting,
		input: newAnswerInput(),
	}
}

// Resume creates a screen that continues an in-progress session.
func Resume(svc screen.Service, snap *iv.Snapshot) *InterviewScreen {
	return &InterviewScreen{
		svc: svc,
		req: iv.StartRequest{
			LearnerID: snap.LearnerID,
			Subject:   snap.Subject,
			Goal:      snap.Goal,
			Level:     snap.Level,
		},
		sessionID:  snap.SessionID,
		curriculum: snap.Curriculum,
		grounded:   snap.Grounded,
		concept:    snap.CurrentConcept,
		question:   snap.CurrentQuestion,
		variation:  snap.Variation,
		answered:   len(snap.History),
		phase:      phaseAnswering,
		input:      newAnswerInput(),
	}
}

func newAnswerInput() components.TextInput {
	return components.NewTextInput("", "Type your answer...", 0)
}

func (s *InterviewScreen) Init() tea.Cmd {
	if s.phase == phaseStarting {
		return tea.Batch(s.start(), spinnerTick())
	}
	return s.input.Focus()
}

func (s *InterviewScreen) Title() string {
	if s.req.Subject == "" {
		return "Interview"
	}
	return s.req.Subject
}

// Status reports the position in the curriculum.
func (s *InterviewScreen) Status() string {
	if len(s.curriculum) == 0 {
		return ""
	}
	return fmt.Sprintf("Concept %d/%d", s.conceptNumber(), len(s.curriculum))
}

func (s *InterviewScreen) conceptNumber() int {
	if i := slices.Index(s.curriculum, s.concept); i >= 0 {
		return i + 1
	}
	return len(s.curriculum)
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.fatal:
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.phase == phaseAnswering:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Leave"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		return s.handleStarted(msg)

	case answerScoredMsg:
		return s.handleScored(msg)

	case spinnerTickMsg:
		if s.phase != phaseStarting && s.phase != phaseScoring {
			return s, nil
		}
		s.spin++
		return s, spinnerTick()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering && !s.confirmQuit {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *InterviewScreen) handleStarted(msg sessionStartedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		s.fatal = true
		return s, nil
	}
	r := msg.Result
	s.sessionID = r.SessionID
	s.curriculum = r.Curriculum
	s.grounded = r.Grounded
	s.concept = r.Concept
	s.question = r.Question
	s.variation = r.Variation
	s.phase = phaseAnswering
	return s, s.input.Focus()
}

func (s *InterviewScreen) handleScored(msg answerScoredMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase = phaseAnswering
		s.errMsg = describe(msg.Err)
		if errors.Is(msg.Err, iv.ErrSessionDone) || errors.Is(msg.Err, iv.ErrSessionNotFound) {
			s.fatal = true
		}
		return s, s.input.Focus()
	}
	s.errMsg = ""
	s.last = msg.Result
	s.answered++
	s.phase = phaseFeedback
	return s, nil
}

func (s *InterviewScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.fatal {
		return s, router.Pop()
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			return s, router.Pop()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseFeedback:
		return s.next()

	case phaseAnswering:
		switch key {
		case "esc":
			s.confirmQuit = true
			return s, nil
		case "enter":
			return s.submit()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// submit sends the current answer for scoring.
func (s *InterviewScreen) submit() (screen.Screen, tea.Cmd) {
	answer := strings.TrimSpace(s.input.Value())
	if answer == "" {
		return s, nil
	}
	s.input.Blur()
	s.phase = phaseScoring
	s.errMsg = ""

	svc, id := s.svc, s.sessionID
	return s, tea.Batch(func() tea.Msg {
		res, err := svc.SubmitAnswer(context.Background(), id, answer)
		return answerScoredMsg{Result: res, Err: err}
	}, spinnerTick())
}

// next leaves the feedback view: on to the next question, or to the
// summary when the session is done.
func (s *InterviewScreen) next() (screen.Screen, tea.Cmd) {
	r := s.last
	if r.Status == iv.StatusDone {
		var avg float64
		if r.FinalAverage != nil {
			avg = *r.FinalAverage
		}
		snap := &iv.Snapshot{
			SessionID:    s.sessionID,
			LearnerID:    s.req.LearnerID,
			Subject:      s.req.Subject,
			Goal:         s.req.Goal,
			Level:        s.req.Level,
			Curriculum:   s.curriculum,
			ConceptIndex: len(s.curriculum),
			Grounded:     s.grounded,
			Done:         true,
			History:      r.History,
			AverageScore: avg,
			Persona:      r.Persona,
		}
		return s, router.Replace(summary.New(s.svc, snap, r.PersonaErr))
	}

	s.concept = r.NextConcept
	s.question = r.NextQuestion
	s.variation = r.Variation
	s.last = nil
	s.phase = phaseAnswering
	s.input = newAnswerInput()
	return s, s.input.Focus()
}

func (s *InterviewScreen) start() tea.Cmd {
	svc, req := s.svc, s.req
	return func() tea.Msg {
		res, err := svc.StartSession(context.Background(), req)
		return sessionStartedMsg{Result: res, Err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// describe turns engine errors into something a learner can act on.
func describe(err error) string {
	var oracle *iv.OracleError
	switch {
	case errors.Is(err, iv.ErrCurriculumEmpty):
		return "No concepts could be derived for this subject. Try a broader subject or a clearer goal."
	case errors.Is(err, iv.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, iv.ErrConcurrentTurn):
		return "Another answer for this session is still being scored. Try again in a moment."
	case errors.Is(err, iv.ErrSessionDone):
		return "This session has already finished."
	case errors.Is(err, iv.ErrSessionNotFound):
		return "This session no longer exists."
	case errors.As(err, &oracle) && oracle.Retryable():
		return fmt.Sprintf("The model did not respond usefully during %s. Press Enter to try again.", oracle.Stage)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Press Enter to try again."
	}
	return "Error: " + err.Error()
}
