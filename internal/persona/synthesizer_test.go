package persona

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/assessor/internal/llm"
)

func validPersonaJSON(roadmap ...string) json.RawMessage {
	if len(roadmap) == 0 {
		roadmap = []string{"Process lifecycle states", "fork() and exec() in practice", "Thread synchronization with mutexes"}
	}
	b, _ := json.Marshal(map[string]any{
		"learner_profile_summary":                      "  A curious beginner who reasons from examples.  ",
		"learning_style_assessment":                    []string{"practical", "prefers examples", " "},
		"strengths":                                    []string{"Knows what a process is"},
		"weaknesses_and_gaps":                          []string{"Confuses threads with processes"},
		"common_misconceptions":                        []string{},
		"engagement_and_confidence":                    "Engaged, moderately confident.",
		"actionable_learning_recommendations":          []string{"Trace fork() output by hand"},
		"preliminary_personalized_roadmap_suggestions": roadmap,
	})
	return b
}

func osTranscript(n int) Transcript {
	t := Transcript{
		Subject:    "Operating Systems",
		Goal:       "understand processes",
		Level:      "beginner",
		Curriculum: []string{"Processes", "Threads"},
	}
	for i := range n {
		t.Entries = append(t.Entries, Entry{
			Concept:  "Processes",
			Question: "What does fork() return in the child?",
			Answer:   "zero",
			Score:    60 + i,
			Feedback: "Right value, missing the parent case.",
		})
	}
	return t
}

func TestSynthesize(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validPersonaJSON()})
	s := NewSynthesizer(mock, DefaultConfig())

	p, err := s.Synthesize(context.Background(), osTranscript(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ProfileSummary != "A curious beginner who reasons from examples." {
		t.Errorf("expected trimmed summary, got %q", p.ProfileSummary)
	}
	if len(p.LearningStyle) != 2 {
		t.Errorf("expected blank style dropped, got %v", p.LearningStyle)
	}
	if len(p.Roadmap) != 3 {
		t.Errorf("expected 3 roadmap items, got %v", p.Roadmap)
	}

	req := mock.Calls[0]
	if req.Schema != SummarySchema {
		t.Error("expected persona schema")
	}
	msg := req.Messages[0].Content
	if strings.Count(msg, "--- Interview Segment ---") != 4 {
		t.Error("expected one segment per turn")
	}
	if !strings.Contains(msg, "Score: 63\nFeedback: Right value") {
		t.Error("expected scores and feedback in segments")
	}
	if strings.Contains(msg, "high-level observations") {
		t.Error("full transcript must not be marked inconclusive")
	}
}

func TestSynthesize_ShortTranscript(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		mock := llm.NewMockProvider(llm.MockResponse{Content: validPersonaJSON()})
		if _, err := NewSynthesizer(mock, DefaultConfig()).Synthesize(context.Background(), osTranscript(n)); err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if !strings.Contains(mock.Calls[0].Messages[0].Content, "high-level observations") {
			t.Errorf("n=%d: expected short-transcript note", n)
		}
	}
}

func TestSynthesize_TruncatesRoadmap(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validPersonaJSON("a", "b", "c", "d", "e", "f", "g")})
	p, err := NewSynthesizer(mock, DefaultConfig()).Synthesize(context.Background(), osTranscript(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Roadmap) != MaxRoadmapItems {
		t.Fatalf("expected %d roadmap items, got %d", MaxRoadmapItems, len(p.Roadmap))
	}
	if p.Roadmap[4] != "e" {
		t.Errorf("expected order preserved, got %v", p.Roadmap)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: validPersonaJSON()},
		llm.MockResponse{Content: validPersonaJSON()},
	)
	s := NewSynthesizer(mock, DefaultConfig())
	tr := osTranscript(3)

	if _, err := s.Synthesize(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Synthesize(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
	if mock.Calls[0].Messages[0].Content != mock.Calls[1].Messages[0].Content {
		t.Error("same transcript must yield the same prompt")
	}
}

func TestSynthesize_Error(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	_, err := NewSynthesizer(mock, DefaultConfig()).Synthesize(context.Background(), osTranscript(3))
	if err == nil {
		t.Fatal("expected error")
	}
}
