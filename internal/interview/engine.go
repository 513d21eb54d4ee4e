// Package interview orchestrates adaptive assessment sessions: it builds
// the curriculum, asks and scores questions, applies the progression
// policy and synthesizes the closing persona. Every turn is a separate
// call that loads, advances and persists the session.
package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/assessor/internal/curriculum"
	"github.com/abhisek/assessor/internal/lessonplan"
	"github.com/abhisek/assessor/internal/persona"
	"github.com/abhisek/assessor/internal/progression"
	"github.com/abhisek/assessor/internal/question"
	"github.com/abhisek/assessor/internal/scoring"
	"github.com/abhisek/assessor/internal/store"
)

// CurriculumBuilder produces the concept list and the grounding decision.
type CurriculumBuilder interface {
	CheckGrounding(ctx context.Context, l curriculum.Learner) (bool, error)
	Build(ctx context.Context, l curriculum.Learner, grounded bool) ([]string, error)
}

// AnswerScorer grades one answer.
type AnswerScorer interface {
	Score(ctx context.Context, in scoring.Input) (scoring.Result, error)
}

// PersonaSynthesizer summarizes a finished transcript.
type PersonaSynthesizer interface {
	Synthesize(ctx context.Context, t persona.Transcript) (*persona.Summary, error)
}

// LessonPlanner builds a lesson plan for a finished session.
type LessonPlanner interface {
	Plan(ctx context.Context, in lessonplan.Input) (*lessonplan.Result, error)
}

// Deps are the engine's collaborators. Grounded and Planner are optional.
type Deps struct {
	Sessions   store.SessionRepo
	Curriculum CurriculumBuilder
	General    question.Source
	Grounded   question.Source
	Scorer     AnswerScorer
	Policy     progression.Policy
	Persona    PersonaSynthesizer
	Planner    LessonPlanner
	Variations *question.Selector
	Logger     *slog.Logger
}

// Config holds engine settings.
type Config struct {
	MaxRetries  int
	TurnTimeout time.Duration
	PlanTimeout time.Duration
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  progression.MaxRetries,
		TurnTimeout: 90 * time.Second,
		PlanTimeout: 5 * time.Minute,
	}
}

// Engine runs assessment sessions.
type Engine struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger
	locks  sync.Map // session id -> *sync.Mutex
}

// New validates deps and creates an Engine.
func New(deps Deps, cfg Config) (*Engine, error) {
	switch {
	case deps.Sessions == nil:
		return nil, errors.New("interview: session repo is required")
	case deps.Curriculum == nil:
		return nil, errors.New("interview: curriculum builder is required")
	case deps.General == nil:
		return nil, errors.New("interview: question source is required")
	case deps.Scorer == nil:
		return nil, errors.New("interview: scorer is required")
	case deps.Policy == nil:
		return nil, errors.New("interview: progression policy is required")
	case deps.Persona == nil:
		return nil, errors.New("interview: persona synthesizer is required")
	}
	if deps.Grounded == nil {
		deps.Grounded = deps.General
	}
	if deps.Variations == nil {
		deps.Variations = question.NewSelector(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = progression.MaxRetries
	}
	return &Engine{deps: deps, cfg: cfg, logger: deps.Logger}, nil
}

// StartSession builds the curriculum, decides grounding once for the
// whole session and asks the first question.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (*StartResult, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Goal = strings.TrimSpace(req.Goal)
	req.Level = strings.TrimSpace(req.Level)
	if req.Subject == "" {
		return nil, invalid("subject is required")
	}
	if strings.TrimSpace(req.LearnerID) == "" {
		req.LearnerID = "anonymous"
	}

	ctx, cancel := e.withTimeout(ctx, e.cfg.TurnTimeout)
	defer cancel()

	learner := curriculum.Learner{Subject: req.Subject, Goal: req.Goal, Level: req.Level}
	grounded, err := e.deps.Curriculum.CheckGrounding(ctx, learner)
	if err != nil {
		return nil, err
	}

	concepts, err := e.deps.Curriculum.Build(ctx, learner, grounded)
	if err != nil {
		if errors.Is(err, curriculum.ErrEmpty) {
			return nil, ErrCurriculumEmpty
		}
		return nil, e.oracleErr(ctx, "curriculum", err)
	}

	q, err := e.ask(ctx, grounded, question.Input{
		Subject:   req.Subject,
		Goal:      req.Goal,
		Level:     req.Level,
		Concept:   concepts[0],
		Variation: e.deps.Variations.Next(),
	})
	if err != nil {
		return nil, err
	}

	rec := &store.SessionRecord{
		ID:               uuid.NewString(),
		LearnerID:        req.LearnerID,
		Subject:          req.Subject,
		Goal:             req.Goal,
		Level:            req.Level,
		Curriculum:       concepts,
		UseRetrieval:     grounded,
		CurrentQuestion:  q.Text,
		CurrentVariation: string(q.Variation),
	}
	if err := e.deps.Sessions.CreateSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	e.logger.Info("session started",
		"session_id", rec.ID, "subject", rec.Subject,
		"concepts", len(concepts), "grounded", grounded)

	return &StartResult{
		SessionID:  rec.ID,
		Question:   q.Text,
		Concept:    concepts[0],
		Variation:  q.Variation,
		Curriculum: concepts,
		Grounded:   grounded,
	}, nil
}

// SubmitAnswer scores answer against the current question, applies the
// progression policy and either asks the next question or finishes the
// session. The turn is persisted atomically; on any error nothing is
// written and the session is unchanged.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	unlock, err := e.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx, cancel := e.withTimeout(ctx, e.cfg.TurnTimeout)
	defer cancel()

	rec, turns, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.Done {
		return nil, ErrSessionDone
	}
	if rec.ConceptIndex >= len(rec.Curriculum) {
		return nil, fmt.Errorf("session %s: concept index %d out of range", rec.ID, rec.ConceptIndex)
	}

	concept := rec.Curriculum[rec.ConceptIndex]
	variation := question.Variation(rec.CurrentVariation)

	graded, err := e.deps.Scorer.Score(ctx, scoring.Input{
		Question:  rec.CurrentQuestion,
		Answer:    answer,
		Variation: variation,
		Subject:   rec.Subject,
		Level:     rec.Level,
		Goal:      rec.Goal,
		Concept:   concept,
	})
	if err != nil {
		return nil, e.oracleErr(ctx, "scoring", err)
	}

	state := progression.State{ConceptIndex: rec.ConceptIndex, RetryCount: rec.RetryCount}
	verdict, err := e.deps.Policy.Verdict(ctx, state, progression.Turn{
		Subject:    rec.Subject,
		Goal:       rec.Goal,
		Level:      rec.Level,
		Curriculum: rec.Curriculum,
		Concept:    concept,
		Question:   rec.CurrentQuestion,
		Answer:     answer,
		Score:      graded.Score,
		Feedback:   graded.Feedback,
	})
	if err != nil {
		return nil, e.oracleErr(ctx, "progression", err)
	}

	next, transition, err := progression.Step(state, len(rec.Curriculum), verdict, e.cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	turn := store.TurnRecord{
		Turn:      len(turns),
		Concept:   concept,
		Variation: rec.CurrentVariation,
		Question:  rec.CurrentQuestion,
		Answer:    answer,
		Score:     graded.Score,
		Feedback:  graded.Feedback,
	}
	history := append(turns, turn)

	updated := *rec
	updated.ConceptIndex = next.ConceptIndex
	updated.RetryCount = next.RetryCount
	updated.Done = next.Done

	result := &TurnResult{
		Status:       StatusOK,
		LastScore:    graded.Score,
		LastFeedback: graded.Feedback,
		Transition:   transition,
	}

	var personaJSON json.RawMessage
	if next.Done {
		updated.CurrentQuestion = ""
		updated.CurrentVariation = ""

		p, perr := e.deps.Persona.Synthesize(ctx, transcript(rec, history))
		switch {
		case perr != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case perr != nil:
			e.logger.Error("persona synthesis failed", "session_id", rec.ID, "error", perr)
			result.PersonaErr = perr
		default:
			if personaJSON, err = json.Marshal(p); err != nil {
				return nil, fmt.Errorf("encode persona: %w", err)
			}
			result.Persona = p
		}

		result.Status = StatusDone
		avg := Average(scores(history))
		result.FinalAverage = &avg
		result.History = toHistory(history)
	} else {
		nextConcept := rec.Curriculum[next.ConceptIndex]
		q, err := e.ask(ctx, rec.UseRetrieval, question.Input{
			Subject:        rec.Subject,
			Goal:           rec.Goal,
			Level:          rec.Level,
			Concept:        nextConcept,
			Variation:      e.deps.Variations.Next(),
			PriorQuestions: askedAbout(history, nextConcept),
		})
		if err != nil {
			return nil, err
		}
		updated.CurrentQuestion = q.Text
		updated.CurrentVariation = string(q.Variation)
		result.NextQuestion = q.Text
		result.NextConcept = nextConcept
		result.Variation = q.Variation
	}

	if err := e.deps.Sessions.SaveTurn(ctx, &updated, turn, personaJSON); err != nil {
		switch {
		case errors.Is(err, store.ErrVersionConflict):
			return nil, ErrConcurrentTurn
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("save turn: %w", err)
	}

	e.logger.Info("turn recorded",
		"session_id", rec.ID, "turn", turn.Turn, "concept", concept,
		"score", graded.Score, "verdict", verdict, "transition", transition)
	if next.Done {
		e.logger.Info("session complete",
			"session_id", rec.ID, "turns", len(history), "average", *result.FinalAverage)
	}
	return result, nil
}

// GetPersonaReport returns the stored persona for a session.
func (e *Engine) GetPersonaReport(ctx context.Context, sessionID string) (*persona.Summary, error) {
	if _, err := e.session(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.storedPersona(ctx, sessionID)
}

// EnsurePersona returns the stored persona of a finished session,
// synthesizing and storing it first if completion could not.
func (e *Engine) EnsurePersona(ctx context.Context, sessionID string) (*persona.Summary, error) {
	unlock, err := e.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx, cancel := e.withTimeout(ctx, e.cfg.TurnTimeout)
	defer cancel()

	rec, turns, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !rec.Done {
		return nil, ErrSessionNotDone
	}

	p, err := e.storedPersona(ctx, sessionID)
	if !errors.Is(err, ErrPersonaNotFound) {
		return p, err
	}

	p, err = e.deps.Persona.Synthesize(ctx, transcript(rec, turns))
	if err != nil {
		return nil, e.oracleErr(ctx, "persona", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode persona: %w", err)
	}
	stored, err := e.deps.Sessions.SavePersona(ctx, sessionID, data)
	if err != nil {
		return nil, fmt.Errorf("save persona: %w", err)
	}
	if !stored {
		return e.storedPersona(ctx, sessionID)
	}
	e.logger.Info("persona synthesized", "session_id", sessionID)
	return p, nil
}

// LessonPlan returns the lesson plan of a finished session, generating
// and caching it on first request.
func (e *Engine) LessonPlan(ctx context.Context, sessionID string) (*lessonplan.Result, error) {
	if e.deps.Planner == nil {
		return nil, errors.New("lesson planning is not configured")
	}

	unlock, err := e.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx, cancel := e.withTimeout(ctx, e.cfg.PlanTimeout)
	defer cancel()

	rec, err := e.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !rec.Done {
		return nil, ErrSessionNotDone
	}

	if data, err := e.deps.Sessions.GetLessonPlan(ctx, sessionID); err == nil {
		var cached lessonplan.Result
		if err := json.Unmarshal(data, &cached); err != nil {
			return nil, fmt.Errorf("decode lesson plan: %w", err)
		}
		return &cached, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load lesson plan: %w", err)
	}

	p, err := e.storedPersona(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res, err := e.deps.Planner.Plan(ctx, lessonplan.Input{
		Subject:    rec.Subject,
		Goal:       rec.Goal,
		Level:      rec.Level,
		Curriculum: rec.Curriculum,
		Persona:    p,
	})
	if err != nil {
		return nil, e.oracleErr(ctx, "lesson plan", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode lesson plan: %w", err)
	}
	if err := e.deps.Sessions.SaveLessonPlan(ctx, sessionID, data); err != nil {
		return nil, fmt.Errorf("save lesson plan: %w", err)
	}
	e.logger.Info("lesson plan generated",
		"session_id", sessionID, "grade", res.Evaluation.Grade, "attempts", res.Attempts)
	return res, nil
}

// Snapshot returns a read-only view of a session and its history.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	rec, turns, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		SessionID:    rec.ID,
		LearnerID:    rec.LearnerID,
		Subject:      rec.Subject,
		Goal:         rec.Goal,
		Level:        rec.Level,
		Curriculum:   rec.Curriculum,
		ConceptIndex: rec.ConceptIndex,
		RetryCount:   rec.RetryCount,
		Grounded:     rec.UseRetrieval,
		Done:         rec.Done,
		History:      toHistory(turns),
		AverageScore: Average(scores(turns)),
	}
	if !rec.Done {
		snap.CurrentQuestion = rec.CurrentQuestion
		snap.CurrentConcept = rec.Curriculum[rec.ConceptIndex]
		snap.Variation = question.Variation(rec.CurrentVariation)
	}

	p, err := e.storedPersona(ctx, sessionID)
	switch {
	case err == nil:
		snap.Persona = p
	case !errors.Is(err, ErrPersonaNotFound):
		return nil, err
	}
	return snap, nil
}

// Recent returns snapshots of the most recently updated sessions without
// their history.
func (e *Engine) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	recs, err := e.deps.Sessions.ListSessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]Snapshot, 0, len(recs))
	for _, r := range recs {
		out = append(out, Snapshot{
			SessionID:    r.ID,
			LearnerID:    r.LearnerID,
			Subject:      r.Subject,
			Goal:         r.Goal,
			Level:        r.Level,
			Curriculum:   r.Curriculum,
			ConceptIndex: r.ConceptIndex,
			RetryCount:   r.RetryCount,
			Grounded:     r.UseRetrieval,
			Done:         r.Done,
		})
	}
	return out, nil
}

func (e *Engine) ask(ctx context.Context, grounded bool, in question.Input) (question.Question, error) {
	src := e.deps.General
	if grounded {
		src = e.deps.Grounded
	}
	q, err := src.Generate(ctx, in)
	if err != nil {
		return question.Question{}, e.oracleErr(ctx, "question", err)
	}
	return q, nil
}

// lock takes the per-session turn lock without waiting. Mutexes stay in
// the map once created, so every caller for a session contends on the
// same one.
func (e *Engine) lock(sessionID string) (func(), error) {
	v, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		e.logger.Warn("turn already in progress", "session_id", sessionID)
		return nil, ErrConcurrentTurn
	}
	return mu.Unlock, nil
}

func (e *Engine) session(ctx context.Context, sessionID string) (*store.SessionRecord, error) {
	rec, err := e.deps.Sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return rec, nil
}

func (e *Engine) load(ctx context.Context, sessionID string) (*store.SessionRecord, []store.TurnRecord, error) {
	rec, err := e.session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	turns, err := e.deps.Sessions.ListTurns(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load turns: %w", err)
	}
	return rec, turns, nil
}

func (e *Engine) storedPersona(ctx context.Context, sessionID string) (*persona.Summary, error) {
	data, err := e.deps.Sessions.GetPersona(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}
	var p persona.Summary
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode persona: %w", err)
	}
	return &p, nil
}

func (e *Engine) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// oracleErr wraps a collaborator failure, passing context errors through.
func (e *Engine) oracleErr(ctx context.Context, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	e.logger.Warn("oracle stage failed", "stage", stage, "error", err)
	return &OracleError{Stage: stage, Err: err}
}

func transcript(rec *store.SessionRecord, turns []store.TurnRecord) persona.Transcript {
	t := persona.Transcript{
		Subject:    rec.Subject,
		Goal:       rec.Goal,
		Level:      rec.Level,
		Curriculum: rec.Curriculum,
		Entries:    make([]persona.Entry, 0, len(turns)),
	}
	for _, tr := range turns {
		t.Entries = append(t.Entries, persona.Entry{
			Concept:  tr.Concept,
			Question: tr.Question,
			Answer:   tr.Answer,
			Score:    tr.Score,
			Feedback: tr.Feedback,
		})
	}
	return t
}

func toHistory(turns []store.TurnRecord) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(turns))
	for _, t := range turns {
		out = append(out, HistoryEntry{
			Turn:      t.Turn,
			Concept:   t.Concept,
			Variation: question.Variation(t.Variation),
			Question:  t.Question,
			Answer:    t.Answer,
			Score:     t.Score,
			Feedback:  t.Feedback,
		})
	}
	return out
}

func scores(turns []store.TurnRecord) []int {
	out := make([]int, len(turns))
	for i, t := range turns {
		out[i] = t.Score
	}
	return out
}

// askedAbout returns the questions already asked about concept, oldest
// first, so a retry asks something new.
func askedAbout(turns []store.TurnRecord, concept string) []string {
	var out []string
	for _, t := range turns {
		if t.Concept == concept {
			out = append(out, t.Question)
		}
	}
	return out
}
