// Package screen defines the contract between the TUI shell and its
// screens, plus the assessment service the screens drive.
package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a short
// status on the right of the header.
type StatusProvider interface {
	Status() string
}

// Service is the assessment engine as the screens use it.
type Service interface {
	StartSession(ctx context.Context, req interview.StartRequest) (*interview.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*interview.TurnResult, error)
	EnsurePersona(ctx context.Context, sessionID string) (*persona.Summary, error)
	LessonPlan(ctx context.Context, sessionID string) (*lessonplan.Result, error)
	Snapshot(ctx context.Context, sessionID string) (*interview.Snapshot, error)
	Recent(ctx context.Context, limit int) ([]interview.Snapshot, error)
}
