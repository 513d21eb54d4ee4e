package curriculum

// Config controls curriculum building and the retrieval gate.
type Config struct {
	// MaxTokens is the token budget for curriculum responses.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxConcepts caps the normalized curriculum length.
	MaxConcepts int

	// GateTopK is the number of chunks the relevance gate inspects.
	GateTopK int

	// GateSnippetChars truncates each chunk shown to the relevance judge.
	GateSnippetChars int

	// GroundedTopK is the number of chunks a grounded build draws from.
	GroundedTopK int

	// GroundedSnippetChars truncates each chunk shown to the grounded build.
	GroundedSnippetChars int

	// Threshold is the minimum retrieval score for a chunk to count.
	Threshold float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:            512,
		Temperature:          0.4,
		MaxConcepts:          7,
		GateTopK:             5,
		GateSnippetChars:     150,
		GroundedTopK:         15,
		GroundedSnippetChars: 600,
		Threshold:            0.2,
	}
}
