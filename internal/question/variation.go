package question

import (
	"math/rand/v2"
	"sync"
)

// Variation is a question format. It drives both the generation prompt
// and the scoring rubric.
type Variation string

const (
	DetailedAnswer  Variation = "detailed_answer"
	OneWordAnswer   Variation = "one_word_answer"
	MultipleChoice  Variation = "mcq"
	FillInTheBlanks Variation = "fill_in_the_blanks"
)

// Variations lists every supported format.
var Variations = []Variation{DetailedAnswer, OneWordAnswer, MultipleChoice, FillInTheBlanks}

var instructions = map[Variation]string{
	DetailedAnswer:  "Please provide a detailed explanation.",
	OneWordAnswer:   "Please provide a one-word answer.",
	MultipleChoice:  "Please create an MCQ (Multiple Choice Question) with four options.",
	FillInTheBlanks: "Please generate a fill-in-the-blanks question.",
}

// Instruction returns the generation instruction for v.
func (v Variation) Instruction() string {
	if s, ok := instructions[v]; ok {
		return s
	}
	return instructions[DetailedAnswer]
}

// Valid reports whether v is a known format.
func (v Variation) Valid() bool {
	_, ok := instructions[v]
	return ok
}

// String implements fmt.Stringer.
func (v Variation) String() string { return string(v) }

// Selector picks a variation uniformly at random with no memory of
// earlier picks. Safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector drawing from src. A nil src uses a
// randomly seeded source.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{rng: rand.New(src)}
}

// Next returns the next variation.
func (s *Selector) Next() Variation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Variations[s.rng.IntN(len(Variations))]
}
