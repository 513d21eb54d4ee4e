package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/assessor/internal/screen"
)

// stubScreen records what the router did to it.
type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPushPop(t *testing.T) {
	r := New(&stubScreen{title: "home"})

	setup := &stubScreen{title: "setup"}
	r.Push(setup)
	if r.Depth() != 2 || r.Active().Title() != "setup" {
		t.Fatalf("after push: depth %d, active %q", r.Depth(), r.Active().Title())
	}
	if !setup.initRan {
		t.Error("expected Init() to run on pushed screen")
	}

	r.Pop()
	if r.Depth() != 1 || r.Active().Title() != "home" {
		t.Errorf("after pop: depth %d, active %q", r.Depth(), r.Active().Title())
	}

	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("root was popped: depth %d", r.Depth())
	}
}

func TestReplaceKeepsDepth(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "setup"})

	iv := &stubScreen{title: "interview"}
	r.Update(ReplaceScreenMsg{Screen: iv})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "interview" {
		t.Errorf("expected active 'interview', got %q", r.Active().Title())
	}
	if !iv.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestPopToRoot(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "summary"})
	r.Push(&stubScreen{title: "plan"})

	r.Update(PopToRootMsg{})
	if r.Depth() != 1 || r.Active().Title() != "home" {
		t.Errorf("after pop to root: depth %d, active %q", r.Depth(), r.Active().Title())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	home := &stubScreen{title: "home"}
	top := &stubScreen{title: "top"}
	r := New(home)
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if len(top.got) != 1 {
		t.Errorf("active screen got %d messages, want 1", len(top.got))
	}
	if len(home.got) != 0 {
		t.Errorf("background screen got %d messages, want 0", len(home.got))
	}
}

func TestCommandHelpers(t *testing.T) {
	s := &stubScreen{title: "x"}
	if _, ok := Push(s)().(PushScreenMsg); !ok {
		t.Error("Push() should produce PushScreenMsg")
	}
	if _, ok := Replace(s)().(ReplaceScreenMsg); !ok {
		t.Error("Replace() should produce ReplaceScreenMsg")
	}
	if _, ok := Pop()().(PopScreenMsg); !ok {
		t.Error("Pop() should produce PopScreenMsg")
	}
	if _, ok := Home()().(PopToRootMsg); !ok {
		t.Error("Home() should produce PopToRootMsg")
	}
}
