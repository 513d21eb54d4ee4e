// Package welcome is the splash screen shown when the TUI starts.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/ui/theme"
)

const (
	tickInterval = 50 * time.Millisecond
	bannerAt     = 300 * time.Millisecond
	hintDelay    = 400 * time.Millisecond
)

const tagline = "Find out what you know. Learn what you don't."

type tickMsg time.Time

// WelcomeScreen reveals the banner, types out the tagline, then waits
// for a key before handing over to the home screen.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	revealed     int // tagline runes shown
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with homeFactory().
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{homeFactory: homeFactory}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// typed reports whether the whole tagline is visible.
func (w *WelcomeScreen) typed() bool {
	return w.revealed >= len([]rune(tagline))
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		w.elapsed += tickInterval
		if w.elapsed > bannerAt && !w.typed() {
			w.revealed++
		}
		if w.typed() && w.elapsed > w.doneAt()+hintDelay {
			return w, nil
		}
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

// doneAt is when the tagline finishes typing.
func (w *WelcomeScreen) doneAt() time.Duration {
	return bannerAt + time.Duration(len([]rune(tagline)))*tickInterval
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return router.Replace(w.homeFactory())
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	if w.elapsed >= bannerAt {
		sections = append(sections, RenderBanner(width), "")
	}

	shown := string([]rune(tagline)[:min(w.revealed, len([]rune(tagline)))])
	cursor := ""
	if !w.typed() && w.elapsed >= bannerAt {
		cursor = lipgloss.NewStyle().Foreground(theme.Accent).Render("▌")
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render(shown)+cursor)

	if w.typed() {
		sections = append(sections, "", theme.Hint.Render("press any key to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n"))
}
