package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/llm"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/question"
)

type stubService struct {
	err      error
	lastID   string
	lastText string
	turn     *interview.TurnResult
}

func (s *stubService) StartSession(_ context.Context, req interview.StartRequest) (*interview.StartResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &interview.StartResult{
		SessionID:  "s1",
		Question:   "What is a process?",
		Concept:    "Processes",
		Variation:  question.DetailedAnswer,
		Curriculum: []string{"Processes", "Threads"},
	}, nil
}

func (s *stubService) SubmitAnswer(_ context.Context, id, answer string) (*interview.TurnResult, error) {
	s.lastID, s.lastText = id, answer
	if s.err != nil {
		return nil, s.err
	}
	return s.turn, nil
}

func (s *stubService) GetPersonaReport(_ context.Context, id string) (*persona.Summary, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &persona.Summary{ProfileSummary: "Practical learner."}, nil
}

func (s *stubService) EnsurePersona(ctx context.Context, id string) (*persona.Summary, error) {
	return s.GetPersonaReport(ctx, id)
}

func (s *stubService) LessonPlan(_ context.Context, id string) (*lessonplan.Result, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &lessonplan.Result{Plan: &lessonplan.Plan{Subject: "Operating Systems"}, Attempts: 1}, nil
}

func (s *stubService) Snapshot(_ context.Context, id string) (*interview.Snapshot, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &interview.Snapshot{SessionID: id, Subject: "Operating Systems"}, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var got map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "bar", got["foo"])
}

func TestStart(t *testing.T) {
	h := NewRouter(&stubService{}, Options{})
	w := do(t, h, http.MethodPost, "/interview/start",
		`{"user_id":"u1","subject":"Operating Systems","goal":"understand processes","level":"beginner"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "s1", got["session_id"])
	assert.Equal(t, "What is a process?", got["first_question"])
	assert.Equal(t, "Processes", got["first_concept"])
	assert.Equal(t, "detailed_answer", got["variation"])
}

func TestAnswer_InProgressAndDone(t *testing.T) {
	svc := &stubService{turn: &interview.TurnResult{
		Status:       interview.StatusOK,
		LastScore:    85,
		NextQuestion: "What is a thread?",
		NextConcept:  "Threads",
	}}
	h := NewRouter(svc, Options{})

	w := do(t, h, http.MethodPost, "/interview/answer", `{"session_id":"s1","answer":"a running program"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.lastID)
	assert.Equal(t, "a running program", svc.lastText)
	var ok map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Equal(t, "ok", ok["status"])
	assert.Equal(t, "Threads", ok["next_concept"])
	assert.NotContains(t, ok, "persona_error")

	avg := 87.5
	svc.turn = &interview.TurnResult{
		Status:       interview.StatusDone,
		LastScore:    90,
		FinalAverage: &avg,
		History:      []interview.HistoryEntry{{Turn: 0, Score: 85}, {Turn: 1, Score: 90}},
		PersonaErr:   errors.New("persona synthesis failed"),
	}
	w = do(t, h, http.MethodPost, "/interview/answer", `{"session_id":"s1","answer":"shared memory"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var done map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	assert.Equal(t, "done", done["status"])
	assert.InDelta(t, 87.5, done["final_average_score"], 1e-9)
	assert.Len(t, done["full_feedback_history"], 2)
	assert.Equal(t, "persona synthesis failed", done["persona_error"])
}

func TestAnswer_BadRequests(t *testing.T) {
	h := NewRouter(&stubService{}, Options{})

	w := do(t, h, http.MethodPost, "/interview/answer", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/interview/answer", `{"answer":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{interview.ErrSessionNotFound, http.StatusNotFound, "session_not_found", false},
		{interview.ErrPersonaNotFound, http.StatusNotFound, "persona_not_found", false},
		{interview.ErrSessionDone, http.StatusConflict, "session_done", false},
		{interview.ErrSessionNotDone, http.StatusConflict, "session_in_progress", false},
		{interview.ErrConcurrentTurn, http.StatusConflict, "concurrent_turn", false},
		{interview.ErrCurriculumEmpty, http.StatusUnprocessableEntity, "curriculum_empty", false},
		{fmt.Errorf("%w: subject is required", interview.ErrInvalidInput), http.StatusUnprocessableEntity, "invalid_input", false},
		{&interview.OracleError{Stage: "scoring", Err: &llm.ErrProviderUnavailable{}}, http.StatusBadGateway, "oracle_failure", true},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout", false},
		{fmt.Errorf("score answer: %w", context.Canceled), statusClientClosedRequest, "canceled", true},
		{errors.New("disk full"), http.StatusInternalServerError, "internal", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := NewRouter(&stubService{err: tt.err}, Options{})
			w := do(t, h, http.MethodPost, "/interview/answer", `{"session_id":"s1","answer":"x"}`)

			require.Equal(t, tt.status, w.Code)
			var got errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.retryable, got.Retryable)
		})
	}
}

func TestCanceledIsNotLoggedAsError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := NewRouter(&stubService{err: context.Canceled}, Options{Logger: logger})

	w := do(t, h, http.MethodPost, "/interview/answer", `{"session_id":"s1","answer":"x"}`)
	require.Equal(t, statusClientClosedRequest, w.Code)
	assert.NotContains(t, logs.String(), "level=ERROR")

	logs.Reset()
	h = NewRouter(&stubService{err: errors.New("disk full")}, Options{Logger: logger})
	w = do(t, h, http.MethodPost, "/interview/answer", `{"session_id":"s1","answer":"x"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), "level=ERROR")
}

func TestPathRoutes(t *testing.T) {
	svc := &stubService{}
	h := NewRouter(svc, Options{})

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/persona/abc", "Practical learner."},
		{http.MethodPost, "/persona/abc", "Practical learner."},
		{http.MethodPost, "/lesson-plan/abc", "Operating Systems"},
		{http.MethodGet, "/sessions/abc", "Operating Systems"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc.lastID = ""
			w := do(t, h, tt.method, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "abc", svc.lastID)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestHealthAndReady(t *testing.T) {
	h := NewRouter(&stubService{}, Options{Ping: func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ready", "").Code)

	down := NewRouter(&stubService{}, Options{Ping: func(context.Context) error { return errors.New("closed") }})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/ready", "").Code)
}

func TestCORS(t *testing.T) {
	h := NewRouter(&stubService{}, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/interview/start", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/interview/start", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
