package plan

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
)

type fakeService struct {
	result *lessonplan.Result
	err    error
	calls  int
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
	f.calls++
	return f.result, f.err
}

func (f *fakeService) Snapshot(context.Context, string) (*interview.Snapshot, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) Recent(context.Context, int) ([]interview.Snapshot, error) {
	return nil, nil
}

func testResult() *lessonplan.Result {
	return &lessonplan.Result{
		Plan: &lessonplan.Plan{
			Subject:    "Operating Systems",
			Level:      "beginner",
			Outcome:    "Explain how an OS runs programs.",
			TotalHours: 3,
			Chapters: []lessonplan.Chapter{
				{Title: "Processes", Minutes: 90, SubTopics: []lessonplan.SubTopic{{Title: "Process states", Minutes: 45}}},
				{Title: "Threads", Minutes: 90},
			},
		},
		Evaluation: lessonplan.Evaluation{Grade: lessonplan.GradeGood, Feedback: "Well paced."},
		Attempts:   1,
	}
}

func TestPlanScreen_LoadsAndRenders(t *testing.T) {
	svc := &fakeService{result: testResult()}
	s := New(svc, "s-1", "Operating Systems")

	if !strings.Contains(s.View(100, 40), "Drafting") {
		t.Error("loading view expected before the plan arrives")
	}

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init should load the plan")
	}
	s.Update(cmd())

	view := s.View(100, 60)
	for _, want := range []string{"1. Processes", "2. Threads", "Process states", "Well paced."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := s.Status(); got != "Good after 1 attempt(s)" {
		t.Errorf("Status = %q", got)
	}
}

func TestPlanScreen_RetryAfterError(t *testing.T) {
	svc := &fakeService{err: errors.New("session not done")}
	s := New(svc, "s-1", "Operating Systems")
	s.Update(s.Init()())

	if !strings.Contains(s.View(100, 40), "session not done") {
		t.Error("error should be shown")
	}

	svc.err, svc.result = nil, testResult()
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("R should retry after an error")
	}
	s.Update(cmd())
	if svc.calls != 2 {
		t.Errorf("LessonPlan calls = %d, want 2", svc.calls)
	}
	if s.result == nil {
		t.Error("plan should be loaded after retry")
	}
}

func TestPlanScreen_Esc(t *testing.T) {
	s := New(&fakeService{}, "s-1", "x")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("Esc should pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestRender_NilPlan(t *testing.T) {
	if !strings.Contains(Render(nil, 80), "No plan") {
		t.Error("nil result should render a placeholder")
	}
}
