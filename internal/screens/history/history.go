// Package history lists past assessment sessions.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	interviewscreen "github.com/abhisek/assessor/internal/screens/interview"
	"github.com/abhisek/assessor/internal/screens/summary"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

const listLimit = 50

type historyLoadedMsg struct {
	Sessions []interview.Snapshot
	Err      error
}

type sessionOpenedMsg struct {
	Snapshot *interview.Snapshot
	Err      error
}

// HistoryScreen displays past sessions. Enter opens the summary of a
// finished session or resumes one in progress.
type HistoryScreen struct {
	svc      screen.Service
	sessions []interview.Snapshot
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc screen.Service) *HistoryScreen {
	return &HistoryScreen{svc: svc}
}

func (s *HistoryScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		sessions, err := svc.Recent(context.Background(), listLimit)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case sessionOpenedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Snapshot.Done {
			return s, router.Push(summary.New(s.svc, msg.Snapshot, nil))
		}
		return s, router.Push(interviewscreen.Resume(s.svc, msg.Snapshot))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.sessions) {
				return s, s.open(s.sessions[s.selected].SessionID)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) open(sessionID string) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		snap, err := svc.Snapshot(context.Background(), sessionID)
		return sessionOpenedMsg{Snapshot: snap, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start an assessment!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		state := fmt.Sprintf("concept %d/%d", min(sess.ConceptIndex+1, len(sess.Curriculum)), len(sess.Curriculum))
		if sess.Done {
			state = "completed"
		}
		learner := sess.LearnerID
		if learner == "" {
			learner = "anonymous"
		}
		line := fmt.Sprintf("%s%-28s  %-12s  %-14s  %s",
			prefix, truncate(sess.Subject, 28), truncate(sess.Level, 12), state, learner)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
