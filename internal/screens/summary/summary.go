// Package summary shows a finished session: scores, turn history and the
// learner persona.
package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/screens/plan"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

// personaReadyMsg carries the result of EnsurePersona.
type personaReadyMsg struct {
	Persona *persona.Summary
	Err     error
}

// SummaryScreen displays a finished session.
type SummaryScreen struct {
	svc        screen.Service
	snap       *interview.Snapshot
	personaErr string
	ensuring   bool
	scroll     components.Scroll
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. personaErr is the synthesis failure
// reported with the final turn, if any.
func New(svc screen.Service, snap *interview.Snapshot, personaErr error) *SummaryScreen {
	s := &SummaryScreen{svc: svc, snap: snap}
	if personaErr != nil {
		s.personaErr = personaErr.Error()
	}
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) Status() string {
	return fmt.Sprintf("Average %.1f", s.snap.AverageScore)
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.snap.Persona == nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Build profile"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "P", Description: "Lesson plan"})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Home"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

// contentHeight is the scroll window height for a content area of height.
func contentHeight(height int) int {
	return max(height-2, 1)
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case personaReadyMsg:
		s.ensuring = false
		if msg.Err != nil {
			s.personaErr = msg.Err.Error()
			return s, nil
		}
		s.personaErr = ""
		s.snap.Persona = msg.Persona
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return s, router.Home()
		case "esc":
			return s, router.Pop()
		case "r", "R":
			if s.snap.Persona == nil && !s.ensuring {
				s.ensuring = true
				return s, s.ensurePersona()
			}
			return s, nil
		case "p", "P":
			if s.snap.Persona != nil {
				return s, router.Push(plan.New(s.svc, s.snap.SessionID, s.snap.Subject))
			}
			return s, nil
		}
		s.scroll.Update(msg, s.lastHeight())
	}
	return s, nil
}

// lastHeight is a conservative window used before the first render.
func (s *SummaryScreen) lastHeight() int {
	return contentHeight(layout.MinHeight)
}

func (s *SummaryScreen) ensurePersona() tea.Cmd {
	svc, id := s.svc, s.snap.SessionID
	return func() tea.Msg {
		p, err := svc.EnsurePersona(context.Background(), id)
		return personaReadyMsg{Persona: p, Err: err}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	s.scroll.SetContent(s.render(width))
	return lipgloss.NewStyle().PaddingTop(1).Render(s.scroll.View(contentHeight(height)))
}

func (s *SummaryScreen) render(width int) string {
	snap := s.snap
	tw := layout.TextWidth(width)
	pad := lipgloss.NewStyle().PaddingLeft(max((width-tw)/2, 0))

	var b strings.Builder
	b.WriteString(theme.Title.Render("Assessment complete: " + snap.Subject))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %d concepts  %d answers  average %s\n\n",
		theme.Hint.Render(snap.SessionID), len(snap.Curriculum), len(snap.History),
		theme.Score(int(snap.AverageScore+0.5)))

	b.WriteString(section("Concepts", tw))
	for _, c := range snap.Curriculum {
		scores := conceptScores(snap.History, c)
		line := "  " + c
		if len(scores) > 0 {
			line += "  " + strings.Join(scores, " ")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(section("Answers", tw))
	for _, h := range snap.History {
		fmt.Fprintf(&b, "%s %s\n", theme.Score(h.Score), theme.Heading.Render(h.Concept))
		b.WriteString(theme.Body.Width(tw).Render("Q: "+h.Question) + "\n")
		b.WriteString(theme.Hint.Width(tw).Render("A: "+h.Answer) + "\n")
		if h.Feedback != "" {
			b.WriteString(theme.Body.Width(tw).Render(h.Feedback) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(section("Learner profile", tw))
	switch {
	case snap.Persona != nil:
		b.WriteString(renderPersona(snap.Persona, tw))
	case s.ensuring:
		b.WriteString(theme.Hint.Render("Building your learner profile..."))
	default:
		if s.personaErr != "" {
			b.WriteString(theme.ErrorText.Width(tw).Render("The learner profile could not be built: "+s.personaErr) + "\n")
		}
		b.WriteString(theme.Hint.Render("Press R to build it now."))
	}
	b.WriteString("\n")

	return pad.Render(b.String())
}

func section(title string, width int) string {
	return theme.Heading.Render(title) + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width)) + "\n"
}

// conceptScores renders the scores of every turn on concept, in order.
func conceptScores(history []interview.HistoryEntry, concept string) []string {
	var out []string
	for _, h := range history {
		if h.Concept == concept {
			out = append(out, theme.Score(h.Score))
		}
	}
	return out
}

func renderPersona(p *persona.Summary, width int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Width(width).Render(p.ProfileSummary))
	b.WriteString("\n")

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n" + theme.Selected.Render(title) + "\n")
		for _, it := range items {
			b.WriteString(theme.Body.Width(width).Render("• "+it) + "\n")
		}
	}
	list("Learning style", p.LearningStyle)
	list("Strengths", p.Strengths)
	list("Gaps", p.Weaknesses)
	list("Misconceptions", p.Misconceptions)
	if p.Engagement != "" {
		b.WriteString("\n" + theme.Selected.Render("Engagement") + "\n")
		b.WriteString(theme.Body.Width(width).Render(p.Engagement) + "\n")
	}
	list("Recommendations", p.Recommendations)
	list("Roadmap", p.Roadmap)
	return b.String()
}
