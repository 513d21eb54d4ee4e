// Package setup collects the learner context for a new assessment.
package setup

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	interviewscreen "github.com/abhisek/assessor/internal/screens/interview"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

const (
	fieldSubject = iota
	fieldGoal
	fieldLevel
	fieldLearner
	fieldCount
)

// SetupScreen is the new-assessment form.
type SetupScreen struct {
	svc    screen.Service
	fields [fieldCount]components.TextInput
	focus  int
	errMsg string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates the form. learnerID pre-fills the name field.
func New(svc screen.Service, learnerID string) *SetupScreen {
	s := &SetupScreen{svc: svc}
	s.fields[fieldSubject] = components.NewTextInput("Subject", "e.g. Operating Systems", 120)
	s.fields[fieldGoal] = components.NewTextInput("Learning goal", "e.g. understand process scheduling", 240)
	s.fields[fieldLevel] = components.NewTextInput("Current level", "beginner, intermediate or advanced", 60)
	s.fields[fieldLearner] = components.NewTextInput("Your name", "optional", 60)
	s.fields[fieldLearner].SetValue(learnerID)
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *SetupScreen) Title() string {
	return "New Assessment"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Next / Start"},
		{Key: "Esc", Description: "Back"},
	}
}

// Request returns the form contents as a start request.
func (s *SetupScreen) Request() interview.StartRequest {
	return interview.StartRequest{
		Subject:   strings.TrimSpace(s.fields[fieldSubject].Value()),
		Goal:      strings.TrimSpace(s.fields[fieldGoal].Value()),
		Level:     strings.TrimSpace(s.fields[fieldLevel].Value()),
		LearnerID: strings.TrimSpace(s.fields[fieldLearner].Value()),
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "esc":
			return s, router.Pop()
		case "tab", "down":
			return s, s.move(1)
		case "shift+tab", "up":
			return s, s.move(-1)
		case "enter":
			if s.focus < fieldCount-1 {
				return s, s.move(1)
			}
			return s, s.submit()
		case "ctrl+s":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *SetupScreen) move(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + fieldCount) % fieldCount
	return s.fields[s.focus].Focus()
}

func (s *SetupScreen) submit() tea.Cmd {
	req := s.Request()
	if req.Subject == "" {
		s.errMsg = "A subject is required."
		s.fields[s.focus].Blur()
		s.focus = fieldSubject
		return s.fields[s.focus].Focus()
	}
	s.errMsg = ""
	return router.Replace(interviewscreen.New(s.svc, req))
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Tell us what you want to be assessed on"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("The interview adapts to your answers and ends with a learner profile."))
	b.WriteString("\n\n")

	for i := range s.fields {
		b.WriteString(s.fields[i].View())
		b.WriteString("\n\n")
	}

	if s.errMsg != "" {
		b.WriteString(theme.ErrorText.Render(s.errMsg))
		b.WriteString("\n")
	}

	form := lipgloss.NewStyle().Width(layout.TextWidth(width)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}
