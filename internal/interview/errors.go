package interview

import (
	"errors"
	"fmt"

	"github.com/abhisek/assessor/internal/curriculum"
	"github.com/abhisek/assessor/internal/llm"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionDone is returned when an answer is submitted to a
	// finished session.
	ErrSessionDone = errors.New("session is already complete")

	// ErrSessionNotDone is returned when a completion artifact is requested
	// for a session that is still in progress.
	ErrSessionNotDone = errors.New("session is not complete")

	// ErrCurriculumEmpty is returned when no concept could be produced for
	// the learner.
	ErrCurriculumEmpty = curriculum.ErrEmpty

	// ErrConcurrentTurn is returned when another turn on the same session
	// is in flight or won the race to persist.
	ErrConcurrentTurn = errors.New("another request is already updating this session")

	// ErrPersonaNotFound is returned when no persona has been stored yet.
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrInvalidInput is returned for missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
)

// OracleError reports a failed LLM stage. Nothing was persisted, so the
// same request can be repeated.
type OracleError struct {
	Stage string
	Err   error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the request may succeed.
func (e *OracleError) Retryable() bool {
	return llm.IsTransient(e.Err) || llm.IsInvalidResponse(e.Err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
