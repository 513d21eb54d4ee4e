package question

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/retrieval"
)

func validQuestionJSON(text string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"question": text})
	return b
}

func threadsInput(v Variation) Input {
	return Input{
		Subject:   "Operating Systems",
		Goal:      "understand concurrency",
		Level:     "beginner",
		Concept:   "Threads",
		Variation: v,
	}
}

type stubSearcher struct {
	chunks []retrieval.Chunk
	err    error
	query  string
	topK   int
}

func (s *stubSearcher) Search(_ context.Context, query string, topK int, _ float64) ([]retrieval.Chunk, error) {
	s.query, s.topK = query, topK
	return s.chunks, s.err
}

func TestLLMSource_Generates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON("  What is a thread?  ")})
	src := NewLLMSource(mock, DefaultConfig())

	q, err := src.Generate(context.Background(), threadsInput(MultipleChoice))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "What is a thread?" {
		t.Errorf("unexpected text %q", q.Text)
	}
	if q.Variation != MultipleChoice {
		t.Errorf("expected variation %q, got %q", MultipleChoice, q.Variation)
	}

	req := mock.Calls[0]
	if req.Schema != QuestionSchema {
		t.Error("expected question schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{
		"Subject: Operating Systems",
		"Concept: Threads",
		"Level beginner",
		MultipleChoice.Instruction(),
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(msg, "Context:") {
		t.Error("ungrounded prompt must not carry context")
	}
}

func TestLLMSource_PriorQuestionsInPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON("Name one benefit of threads.")})
	cfg := DefaultConfig()
	cfg.MaxPriorQuestions = 2
	src := NewLLMSource(mock, cfg)

	in := threadsInput(OneWordAnswer)
	in.PriorQuestions = []string{"Q one", "Q two", "Q three"}
	if _, err := src.Generate(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := mock.Calls[0].Messages[0].Content
	if strings.Contains(msg, "Q one") {
		t.Error("expected oldest prior question to be dropped")
	}
	if !strings.Contains(msg, "1. Q two\n2. Q three") {
		t.Errorf("expected numbered prior questions, got:\n%s", msg)
	}
}

func TestLLMSource_BoundedAttempts(t *testing.T) {
	tests := []struct {
		name      string
		responses []llm.MockResponse
		wantErr   bool
		wantCalls int
	}{
		{
			name: "recovers on second attempt",
			responses: []llm.MockResponse{
				{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
				{Content: validQuestionJSON("Define a thread.")},
			},
			wantCalls: 2,
		},
		{
			name: "empty text retried",
			responses: []llm.MockResponse{
				{Content: validQuestionJSON("   ")},
				{Content: validQuestionJSON("Define a thread.")},
			},
			wantCalls: 2,
		},
		{
			name: "gives up after two",
			responses: []llm.MockResponse{
				{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
				{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
				{Content: validQuestionJSON("never reached")},
			},
			wantErr:   true,
			wantCalls: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.responses...)
			src := NewLLMSource(mock, DefaultConfig())

			_, err := src.Generate(context.Background(), threadsInput(DetailedAnswer))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestLLMSource_CancelledStopsRetrying(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON("x")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLLMSource(mock, DefaultConfig()).Generate(ctx, threadsInput(DetailedAnswer))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLLMSource_RejectsUnknownVariation(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := NewLLMSource(mock, DefaultConfig()).Generate(context.Background(), threadsInput("essay"))
	if err == nil {
		t.Fatal("expected error for unknown variation")
	}
	if mock.CallCount() != 0 {
		t.Fatal("no LLM call expected")
	}
}

func TestGroundedSource_FallbackWithoutContent(t *testing.T) {
	tests := []struct {
		name   string
		search *stubSearcher
	}{
		{"no results", &stubSearcher{}},
		{"only titles", &stubSearcher{chunks: []retrieval.Chunk{{Title: "Threads", Content: "Threads", Type: retrieval.TypeTitle}}}},
		{"search failure", &stubSearcher{err: errors.New("offline")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			src := NewGroundedSource(mock, tt.search, DefaultConfig(), nil)

			q, err := src.Generate(context.Background(), threadsInput(FillInTheBlanks))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Text != "What do you know about: Threads?" {
				t.Errorf("unexpected fallback %q", q.Text)
			}
			if q.Variation != FillInTheBlanks {
				t.Errorf("variation must be preserved, got %q", q.Variation)
			}
			if mock.CallCount() != 0 {
				t.Errorf("expected no LLM call, got %d", mock.CallCount())
			}
		})
	}
}

func TestGroundedSource_UsesTopThreeContentChunks(t *testing.T) {
	search := &stubSearcher{chunks: []retrieval.Chunk{
		{Title: "Threads", Content: "Threads", Type: retrieval.TypeTitle},
		{Content: "chunk-one", Type: retrieval.TypeContent},
		{Content: "chunk-two", Type: retrieval.TypeContent},
		{Content: "chunk-three", Type: retrieval.TypeContent},
		{Content: "chunk-four", Type: retrieval.TypeContent},
	}}
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON("Fill in: a ____ shares its process's memory.")})
	src := NewGroundedSource(mock, search, DefaultConfig(), nil)

	q, err := src.Generate(context.Background(), threadsInput(FillInTheBlanks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Variation != FillInTheBlanks {
		t.Errorf("unexpected variation %q", q.Variation)
	}
	if search.query != "Threads" || search.topK != 5 {
		t.Errorf("expected search(Threads, 5), got (%q, %d)", search.query, search.topK)
	}

	msg := mock.Calls[0].Messages[0].Content
	if !strings.Contains(msg, "Context:\nchunk-one\n\nchunk-two\n\nchunk-three") {
		t.Errorf("expected three context chunks, got:\n%s", msg)
	}
	if strings.Contains(msg, "chunk-four") {
		t.Error("expected fourth chunk to be dropped")
	}
}

func TestSelector_Deterministic(t *testing.T) {
	a := NewSelector(rand.NewPCG(1, 2))
	b := NewSelector(rand.NewPCG(1, 2))
	for i := range 20 {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("pick %d differs: %q vs %q", i, va, vb)
		}
		if !va.Valid() {
			t.Fatalf("invalid variation %q", va)
		}
	}
}

func TestSelector_CoversAllVariations(t *testing.T) {
	s := NewSelector(rand.NewPCG(7, 7))
	seen := map[Variation]int{}
	for range 400 {
		seen[s.Next()]++
	}
	for _, v := range Variations {
		if seen[v] == 0 {
			t.Errorf("variation %q never selected", v)
		}
	}
}

func TestVariationInstruction(t *testing.T) {
	if MultipleChoice.Instruction() != "Please create an MCQ (Multiple Choice Question) with four options." {
		t.Errorf("unexpected mcq instruction %q", MultipleChoice.Instruction())
	}
	if Variation("unknown").Instruction() != DetailedAnswer.Instruction() {
		t.Error("unknown variation should fall back to the detailed instruction")
	}
}
