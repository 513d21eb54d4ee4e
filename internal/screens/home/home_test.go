package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screens/setup"
)

type fakeService struct {
	recent []interview.Snapshot
	err    error
}

func (f *fakeService) StartSession(context.Context, interview.StartRequest) (*interview.StartResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) SubmitAnswer(context.Context, string, string) (*interview.TurnResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) EnsurePersona(context.Context, string) (*persona.Summary, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) LessonPlan(context.Context, string) (*lessonplan.Result, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) Snapshot(context.Context, string) (*interview.Snapshot, error) {
	return nil, interview.ErrSessionNotFound
}

func (f *fakeService) Recent(context.Context, int) ([]interview.Snapshot, error) {
	return f.recent, f.err
}

func TestHomeScreen_ContinueDisabledWithoutOpenSession(t *testing.T) {
	h := New(&fakeService{recent: []interview.Snapshot{{SessionID: "a", Done: true}}}, "ada")
	h.Update(h.Init()())

	if !h.menu.Items[1].Disabled {
		t.Error("CONTINUE should be disabled when every session is done")
	}
	if !strings.Contains(h.View(100, 30), "1 sessions · 1 completed") {
		t.Error("stats line missing")
	}
}

func TestHomeScreen_ContinueEnabled(t *testing.T) {
	h := New(&fakeService{recent: []interview.Snapshot{
		{SessionID: "a", Subject: "Networking"},
		{SessionID: "b", Done: true},
	}}, "")
	h.Update(h.Init()())

	item := h.menu.Items[1]
	if item.Disabled {
		t.Fatal("CONTINUE should be enabled with a session in progress")
	}
	if item.Detail != "Networking" {
		t.Errorf("Detail = %q, want subject", item.Detail)
	}
}

func TestHomeScreen_NewAssessmentOpensSetup(t *testing.T) {
	h := New(&fakeService{}, "ada")
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter on the first item should open setup")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	form, ok := push.Screen.(*setup.SetupScreen)
	if !ok {
		t.Fatalf("expected SetupScreen, got %T", push.Screen)
	}
	if got := form.Request().LearnerID; got != "ada" {
		t.Errorf("learner = %q, want pre-filled %q", got, "ada")
	}
}

func TestHomeScreen_LoadError(t *testing.T) {
	h := New(&fakeService{err: errors.New("db locked")}, "")
	h.Update(h.Init()())
	if !strings.Contains(h.View(100, 30), "db locked") {
		t.Error("load error should be shown")
	}
}
