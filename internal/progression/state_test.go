package progression

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestStep(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		n       int
		verdict Verdict
		want    State
		tr      Transition
	}{
		{"advance", State{0, 0, false}, 3, VerdictAdvance, State{1, 0, false}, TransitionAdvance},
		{"advance resets retries", State{1, 2, false}, 3, VerdictAdvance, State{2, 0, false}, TransitionAdvance},
		{"first retry", State{0, 0, false}, 3, VerdictRetry, State{0, 1, false}, TransitionRetry},
		{"second retry", State{0, 1, false}, 3, VerdictRetry, State{0, 2, false}, TransitionRetry},
		{"forced advance", State{0, 2, false}, 3, VerdictRetry, State{1, 0, false}, TransitionForced},
		{"finish on last advance", State{2, 0, false}, 3, VerdictAdvance, State{3, 0, true}, TransitionFinish},
		{"finish on forced last", State{2, 2, false}, 3, VerdictRetry, State{3, 0, true}, TransitionFinish},
		{"retry on last concept", State{2, 0, false}, 3, VerdictRetry, State{2, 1, false}, TransitionRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tr, err := Step(tt.from, tt.n, tt.verdict, MaxRetries)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Step(%+v, %s) = %+v, want %+v", tt.from, tt.verdict, got, tt.want)
			}
			if tr != tt.tr {
				t.Errorf("transition = %s, want %s", tr, tt.tr)
			}
		})
	}
}

func TestStep_DoneIsTerminal(t *testing.T) {
	done := State{ConceptIndex: 2, Done: true}
	got, _, err := Step(done, 2, VerdictAdvance, MaxRetries)
	if !errors.Is(err, ErrDone) {
		t.Fatalf("expected ErrDone, got %v", err)
	}
	if got != done {
		t.Fatalf("state must not change, got %+v", got)
	}
}

func TestInitial(t *testing.T) {
	if got := Initial(2); got != (State{}) {
		t.Errorf("Initial(2) = %+v", got)
	}
	if !Initial(0).Done {
		t.Error("empty curriculum should start done")
	}
}

// Scenario: ["Processes","Threads"], first concept scores 85.
func TestScenario_AdvanceOnPass(t *testing.T) {
	policy := NewThresholdPolicy(DefaultPassThreshold)
	s := Initial(2)

	v, _ := policy.Verdict(t.Context(), s, Turn{Concept: "Processes", Score: 85})
	s, _, _ = Step(s, 2, v, MaxRetries)

	if s.ConceptIndex != 1 || s.RetryCount != 0 || s.Done {
		t.Fatalf("expected InConcept(1,0), got %+v", s)
	}
}

// Scenario: three consecutive 30s on "Processes" force the advance.
func TestScenario_ForcedAdvance(t *testing.T) {
	policy := NewThresholdPolicy(DefaultPassThreshold)
	s := Initial(2)

	for i := range 3 {
		if s.ConceptIndex != 0 {
			t.Fatalf("advanced early after %d turns: %+v", i, s)
		}
		v, _ := policy.Verdict(t.Context(), s, Turn{Concept: "Processes", Score: 30})
		s, _, _ = Step(s, 2, v, MaxRetries)
	}
	if s.ConceptIndex != 1 || s.RetryCount != 0 {
		t.Fatalf("expected forced advance to Threads, got %+v", s)
	}
}

func TestProperty_TerminationAndRetryBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for trial := range 500 {
		n := 1 + rng.IntN(7)
		s := Initial(n)
		turns := 0
		for !s.Done {
			v := VerdictRetry
			if rng.IntN(4) == 0 {
				v = VerdictAdvance
			}
			var err error
			s, _, err = Step(s, n, v, MaxRetries)
			if err != nil {
				t.Fatalf("trial %d: %v", trial, err)
			}
			turns++
			if s.RetryCount >= MaxRetries {
				t.Fatalf("trial %d: retry count reached %d", trial, s.RetryCount)
			}
			if s.ConceptIndex > n {
				t.Fatalf("trial %d: concept index %d beyond curriculum %d", trial, s.ConceptIndex, n)
			}
			if turns > n*MaxRetries {
				t.Fatalf("trial %d: not done after %d turns for n=%d", trial, turns, n)
			}
		}
	}
}

func TestProperty_AllFailingTakesExactlyNTimesMax(t *testing.T) {
	for n := 1; n <= 7; n++ {
		s := Initial(n)
		turns := 0
		for !s.Done {
			s, _, _ = Step(s, n, VerdictRetry, MaxRetries)
			turns++
		}
		if turns != n*MaxRetries {
			t.Errorf("n=%d: finished in %d turns, want %d", n, turns, n*MaxRetries)
		}
	}
}

func TestExhausted(t *testing.T) {
	if (State{RetryCount: 1}).Exhausted(3) {
		t.Error("retry 1 of 3 is not exhausted")
	}
	if !(State{RetryCount: 2}).Exhausted(3) {
		t.Error("retry 2 of 3 is exhausted")
	}
}
