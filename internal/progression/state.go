// Package progression owns the retry/advance/finish decisions of an
// assessment session as an explicit finite-state machine.
//
// States are InConcept(i, retry) and Done. Every scored turn applies one
// transition:
//
//	verdict advance            -> InConcept(i+1, 0)
//	verdict retry, retry+1 < N -> InConcept(i, retry+1)
//	verdict retry, otherwise   -> InConcept(i+1, 0)  (forced)
//	i >= len(curriculum)       -> Done               (overrides the verdict)
//
// so no concept is retried more than N-1 times and a curriculum of length
// L finishes within L*N turns.
package progression

import "errors"

// MaxRetries is the default retry budget per concept, counting the first
// attempt.
const MaxRetries = 3

// ErrDone is returned when a transition is requested from Done.
var ErrDone = errors.New("session is done")

// State is the machine position.
type State struct {
	ConceptIndex int
	RetryCount   int
	Done         bool
}

// Initial returns InConcept(0, 0), or Done for an empty curriculum.
func Initial(curriculumLen int) State {
	return State{Done: curriculumLen <= 0}
}

// Verdict is a policy's recommendation for the current concept.
type Verdict string

const (
	VerdictAdvance Verdict = "next"
	VerdictRetry   Verdict = "retry"
)

// Transition names the move a Step made.
type Transition string

const (
	TransitionAdvance Transition = "advance"
	TransitionRetry   Transition = "retry"
	TransitionForced  Transition = "forced-advance"
	TransitionFinish  Transition = "finish"
)

// Step applies verdict v to s. maxRetries below 1 uses MaxRetries.
func Step(s State, curriculumLen int, v Verdict, maxRetries int) (State, Transition, error) {
	if s.Done {
		return s, "", ErrDone
	}
	if maxRetries < 1 {
		maxRetries = MaxRetries
	}

	next := s
	var tr Transition
	switch {
	case v == VerdictAdvance:
		next.ConceptIndex++
		next.RetryCount = 0
		tr = TransitionAdvance
	case s.RetryCount+1 < maxRetries:
		next.RetryCount++
		tr = TransitionRetry
	default:
		next.ConceptIndex++
		next.RetryCount = 0
		tr = TransitionForced
	}

	if next.ConceptIndex >= curriculumLen {
		next.ConceptIndex = curriculumLen
		next.RetryCount = 0
		next.Done = true
		tr = TransitionFinish
	}
	return next, tr, nil
}

// Exhausted reports whether the next failed turn on the current concept
// forces an advance.
func (s State) Exhausted(maxRetries int) bool {
	if maxRetries < 1 {
		maxRetries = MaxRetries
	}
	return s.RetryCount+1 >= maxRetries
}
