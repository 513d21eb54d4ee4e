// Package home is the main menu of the TUI.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/screens/history"
	interviewscreen "github.com/abhisek/assessor/internal/screens/interview"
	"github.com/abhisek/assessor/internal/screens/setup"
	"github.com/abhisek/assessor/internal/screens/summary"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/theme"
)

// recentLimit bounds the sessions scanned for the stats line.
const recentLimit = 50

type recentLoadedMsg struct {
	Sessions []interview.Snapshot
	Err      error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc       screen.Service
	learnerID string
	menu      components.Menu

	loaded     bool
	total      int
	done       int
	inProgress *interview.Snapshot
	errMsg     string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. learnerID pre-fills new assessments.
func New(svc screen.Service, learnerID string) *HomeScreen {
	h := &HomeScreen{svc: svc, learnerID: learnerID}
	h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() {
	resume := components.MenuItem{Label: "CONTINUE", Disabled: true}
	if h.inProgress != nil {
		snap := h.inProgress
		resume = components.MenuItem{
			Label:  "CONTINUE",
			Detail: snap.Subject,
			Action: func() tea.Cmd { return h.resume(snap.SessionID) },
		}
	}

	items := []components.MenuItem{
		{Label: "NEW ASSESSMENT", Action: func() tea.Cmd {
			return router.Push(setup.New(h.svc, h.learnerID))
		}},
		resume,
		{Label: "HISTORY", Action: func() tea.Cmd {
			return router.Push(history.New(h.svc))
		}},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
}

// resume reloads the full session and opens it on the interview screen,
// or on the summary if it finished since the menu was built.
func (h *HomeScreen) resume(sessionID string) tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		snap, err := svc.Snapshot(context.Background(), sessionID)
		if err != nil {
			return recentLoadedMsg{Err: err}
		}
		if snap.Done {
			return router.PushScreenMsg{Screen: summary.New(svc, snap, nil)}
		}
		return router.PushScreenMsg{Screen: interviewscreen.Resume(svc, snap)}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		recent, err := svc.Recent(context.Background(), recentLimit)
		return recentLoadedMsg{Sessions: recent, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(recentLoadedMsg); ok {
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.total, h.done, h.inProgress = len(msg.Sessions), 0, nil
		for i := range msg.Sessions {
			s := &msg.Sessions[i]
			if s.Done {
				h.done++
			} else if h.inProgress == nil {
				h.inProgress = s
			}
		}
		h.buildMenu()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render("What would you like to do?"))

	switch {
	case h.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(h.errMsg))
	case h.loaded:
		sections = append(sections, theme.Hint.Render(
			fmt.Sprintf("%d sessions · %d completed", h.total, h.done)))
	}

	sections = append(sections, theme.Card.Render(strings.TrimRight(h.menu.View(), "\n")))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, strings.Join(sections, "\n\n")))
}
