package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/question"
)

func processInput(v question.Variation, answer string) Input {
	return Input{
		Question:  "Which system call creates a new process on Unix?",
		Answer:    answer,
		Variation: v,
		Subject:   "Operating Systems",
		Level:     "beginner",
		Goal:      "understand processes",
		Concept:   "Processes",
	}
}

func scoreJSON(score any, feedback string) json.RawMessage {
	b, _ := json.Marshal(map[string]any{"score": score, "feedback": feedback})
	return b
}

func TestScore_EmptyAnswerSkipsLLM(t *testing.T) {
	for _, answer := range []string{"", "   ", "\n\t"} {
		mock := llm.NewMockProvider()
		s := NewScorer(mock, DefaultConfig(), nil)

		res, err := s.Score(context.Background(), processInput(question.DetailedAnswer, answer))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Score != 0 || res.Evaluated {
			t.Errorf("expected unevaluated 0, got %+v", res)
		}
		if res.Feedback != EmptyAnswerFeedback {
			t.Errorf("unexpected feedback %q", res.Feedback)
		}
		if mock.CallCount() != 0 {
			t.Errorf("expected no LLM call for %q", answer)
		}
	}
}

func TestScore_ClampsAndRounds(t *testing.T) {
	tests := []struct {
		name  string
		score any
		want  int
	}{
		{"in range", 85, 85},
		{"above", 140, 100},
		{"below", -20, 0},
		{"fractional", 49.6, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: scoreJSON(tt.score, "Strength: knows fork().")})
			res, err := NewScorer(mock, DefaultConfig(), nil).Score(context.Background(), processInput(question.OneWordAnswer, "fork"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Score != tt.want {
				t.Errorf("score = %d, want %d", res.Score, tt.want)
			}
			if !res.Evaluated {
				t.Error("expected evaluated result")
			}
		})
	}
}

func TestScore_UnparsableDefaultsToZero(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"schema violation", llm.MockResponse{Content: json.RawMessage(`{"score":"ninety","feedback":"x"}`)}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`great answer`)}},
		{"truncated", llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.resp)
			res, err := NewScorer(mock, DefaultConfig(), nil).Score(context.Background(), processInput(question.MultipleChoice, "B"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.Score != 0 || res.Evaluated || res.Feedback != UnparsableFeedback {
				t.Errorf("unexpected result %+v", res)
			}
		})
	}
}

func TestScore_TransportFailureSurfaces(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	_, err := NewScorer(mock, DefaultConfig(), nil).Score(context.Background(), processInput(question.MultipleChoice, "B"))

	var unavailable *llm.ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestScore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := llm.NewMockProvider(llm.MockResponse{Content: scoreJSON(90, "ok")})

	_, err := NewScorer(mock, DefaultConfig(), nil).Score(ctx, processInput(question.MultipleChoice, "B"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScore_RubricDispatch(t *testing.T) {
	tests := []struct {
		variation question.Variation
		want      string
	}{
		{question.MultipleChoice, "Do NOT penalize a correct answer for lacking explanation"},
		{question.OneWordAnswer, "assign 0-10"},
		{question.FillInTheBlanks, "score proportionally"},
		{question.DetailedAnswer, "The general scoring rubric applies in full"},
		{question.Variation("oral_exam"), "Apply the general rubric flexibly"},
	}
	for _, tt := range tests {
		t.Run(string(tt.variation), func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: scoreJSON(70, "fine")})
			_, err := NewScorer(mock, DefaultConfig(), nil).Score(context.Background(), processInput(tt.variation, "fork creates a child"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			req := mock.Calls[0]
			msg := req.Messages[0].Content
			if !strings.Contains(msg, tt.want) {
				t.Errorf("prompt for %s missing %q", tt.variation, tt.want)
			}
			if !strings.Contains(msg, "0-39 Emerging") || !strings.Contains(msg, "90-100 Exemplary") {
				t.Error("expected general rubric bands in prompt")
			}
			if !strings.Contains(req.System, "Do not penalize grammar, spelling") {
				t.Error("expected language tolerance rule")
			}
			if req.Schema != ScoreSchema {
				t.Error("expected score schema")
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0}, {100, 100}, {100.4, 100}, {-0.4, 0}, {79.5, 80}, {1e9, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "emerging"}, {39, "emerging"}, {40, "developing"}, {69, "developing"},
		{70, "solid"}, {89, "solid"}, {90, "exemplary"}, {100, "exemplary"},
	}
	for _, tt := range tests {
		if got := Band(tt.score); got != tt.want {
			t.Errorf("Band(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
