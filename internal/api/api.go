// Package api exposes the interview engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/assessor/internal/interview"
	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/persona"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// statusClientClosedRequest reports a request abandoned by the client.
const statusClientClosedRequest = 499

// Service is the engine surface the API serves.
type Service interface {
	StartSession(ctx context.Context, req interview.StartRequest) (*interview.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*interview.TurnResult, error)
	GetPersonaReport(ctx context.Context, sessionID string) (*persona.Summary, error)
	EnsurePersona(ctx context.Context, sessionID string) (*persona.Summary, error)
	LessonPlan(ctx context.Context, sessionID string) (*lessonplan.Result, error)
	Snapshot(ctx context.Context, sessionID string) (*interview.Snapshot, error)
}

// Options configures the router.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Ping reports storage health for /ready. Nil skips the check.
	Ping func(ctx context.Context) error
}

// Handler serves the interview API.
type Handler struct {
	svc    Service
	logger *slog.Logger
	ping   func(ctx context.Context) error
}

// NewRouter builds the HTTP handler with middleware and routes.
func NewRouter(svc Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: svc, logger: logger, ping: opts.Ping}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(CORS(opts.AllowedOrigins))
	}

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ready", h.Ready)

	r.Route("/interview", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/answer", h.Answer)
	})
	r.Get("/persona/{sessionID}", h.GetPersona)
	r.Post("/persona/{sessionID}", h.EnsurePersona)
	r.Post("/lesson-plan/{sessionID}", h.LessonPlan)
	r.Get("/sessions/{sessionID}", h.Snapshot)
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type turnResponse struct {
	*interview.TurnResult
	PersonaError string `json:"persona_error,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Start handles POST /interview/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req interview.StartRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.StartSession(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, res)
}

// Answer handles POST /interview/answer.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusUnprocessableEntity, "invalid_input", "session_id is required")
		return
	}
	res, err := h.svc.SubmitAnswer(r.Context(), req.SessionID, req.Answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := turnResponse{TurnResult: res}
	if res.PersonaErr != nil {
		out.PersonaError = res.PersonaErr.Error()
	}
	JSON(w, http.StatusOK, out)
}

// GetPersona handles GET /persona/{sessionID}.
func (h *Handler) GetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPersonaReport(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// EnsurePersona handles POST /persona/{sessionID}.
func (h *Handler) EnsurePersona(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.EnsurePersona(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// LessonPlan handles POST /lesson-plan/{sessionID}.
func (h *Handler) LessonPlan(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.LessonPlan(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

// Snapshot handles GET /sessions/{sessionID}.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

// Ready reports whether storage is reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "ok"}
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			JSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	JSON(w, http.StatusOK, status)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

// fail maps engine errors to status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var oracle *interview.OracleError
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, interview.ErrPersonaNotFound):
		Error(w, http.StatusNotFound, "persona_not_found", err.Error())
	case errors.Is(err, interview.ErrSessionDone):
		Error(w, http.StatusConflict, "session_done", err.Error())
	case errors.Is(err, interview.ErrSessionNotDone):
		Error(w, http.StatusConflict, "session_in_progress", err.Error())
	case errors.Is(err, interview.ErrConcurrentTurn):
		Error(w, http.StatusConflict, "concurrent_turn", err.Error())
	case errors.Is(err, interview.ErrCurriculumEmpty):
		Error(w, http.StatusUnprocessableEntity, "curriculum_empty", err.Error())
	case errors.Is(err, interview.ErrInvalidInput):
		Error(w, http.StatusUnprocessableEntity, "invalid_input", err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Debug("request canceled", "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		JSON(w, statusClientClosedRequest, errorResponse{
			Error:     "request canceled",
			Code:      "canceled",
			Retryable: true,
		})
	case errors.As(err, &oracle):
		JSON(w, http.StatusBadGateway, errorResponse{
			Error:     err.Error(),
			Code:      "oracle_failure",
			Retryable: oracle.Retryable(),
		})
	case errors.Is(err, context.DeadlineExceeded):
		Error(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		Error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorResponse{Error: message, Code: code})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
