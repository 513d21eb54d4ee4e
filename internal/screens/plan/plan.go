// Package plan shows the personalized lesson plan of a finished session.
package plan

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

type planLoadedMsg struct {
	Result *lessonplan.Result
	Err    error
}

// PlanScreen builds (or loads the cached) lesson plan and renders it.
type PlanScreen struct {
	svc       screen.Service
	sessionID string
	subject   string

	result  *lessonplan.Result
	loading bool
	errMsg  string
	scroll  components.Scroll
	height  int
}

var _ screen.Screen = (*PlanScreen)(nil)
var _ screen.KeyHintProvider = (*PlanScreen)(nil)
var _ screen.StatusProvider = (*PlanScreen)(nil)

// New creates a PlanScreen for sessionID.
func New(svc screen.Service, sessionID, subject string) *PlanScreen {
	return &PlanScreen{svc: svc, sessionID: sessionID, subject: subject, loading: true}
}

func (s *PlanScreen) Init() tea.Cmd {
	return s.load()
}

func (s *PlanScreen) load() tea.Cmd {
	svc, id := s.svc, s.sessionID
	return func() tea.Msg {
		res, err := svc.LessonPlan(context.Background(), id)
		return planLoadedMsg{Result: res, Err: err}
	}
}

func (s *PlanScreen) Title() string {
	return "Lesson Plan"
}

func (s *PlanScreen) Status() string {
	if s.result == nil {
		return ""
	}
	return fmt.Sprintf("%s after %d attempt(s)", s.result.Evaluation.Grade, s.result.Attempts)
}

func (s *PlanScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.errMsg != "" {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retry"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *PlanScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.result = msg.Result
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "r", "R":
			if s.errMsg != "" && !s.loading {
				s.loading = true
				s.errMsg = ""
				return s, s.load()
			}
			return s, nil
		}
		s.scroll.Update(msg, max(s.height-2, 1))
	}
	return s, nil
}

func (s *PlanScreen) View(width, height int) string {
	s.height = height
	switch {
	case s.loading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Drafting a lesson plan for "+s.subject+"..."))
	case s.errMsg != "":
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			layout.Centered(theme.ErrorText, "The lesson plan could not be built: "+s.errMsg, width))
	}
	s.scroll.SetContent(Render(s.result, layout.TextWidth(width)))
	pad := lipgloss.NewStyle().PaddingTop(1).PaddingLeft(max((width-layout.TextWidth(width))/2, 0))
	return pad.Render(s.scroll.View(max(height-2, 1)))
}

// Render formats a plan and its evaluation for the terminal.
func Render(r *lessonplan.Result, width int) string {
	if r == nil || r.Plan == nil {
		return theme.Hint.Render("No plan.")
	}
	p := r.Plan
	body := theme.Body.Width(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Subject) + "\n")
	fmt.Fprintf(&b, "%s\n\n", theme.Hint.Render(fmt.Sprintf("%s · %.1f hours", p.Level, p.TotalHours)))
	b.WriteString(body.Render(p.Outcome) + "\n\n")

	if len(p.Prerequisites) > 0 {
		b.WriteString(theme.Heading.Render("Before you start") + "\n")
		for _, pre := range p.Prerequisites {
			b.WriteString(body.Render("• "+pre) + "\n")
		}
		b.WriteString("\n")
	}

	for i, ch := range p.Chapters {
		fmt.Fprintf(&b, "%s %s\n",
			theme.Heading.Render(fmt.Sprintf("%d. %s", i+1, ch.Title)),
			theme.Hint.Render(fmt.Sprintf("(%d min)", ch.Minutes)))
		if ch.Outcome != "" {
			b.WriteString(body.Render(ch.Outcome) + "\n")
		}
		for _, st := range ch.SubTopics {
			b.WriteString(body.Render(fmt.Sprintf("  - %s (%d min)", st.Title, st.Minutes)) + "\n")
		}
		b.WriteString("\n")
	}

	if p.AdaptiveNotes != "" {
		b.WriteString(theme.Heading.Render("Notes") + "\n")
		b.WriteString(body.Render(p.AdaptiveNotes) + "\n\n")
	}

	if r.Evaluation.Feedback != "" {
		b.WriteString(theme.Selected.Render("Reviewer: "+string(r.Evaluation.Grade)) + "\n")
		b.WriteString(theme.Hint.Width(width).Render(r.Evaluation.Feedback) + "\n")
	}
	return b.String()
}
