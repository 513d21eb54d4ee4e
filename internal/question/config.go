package question

// Config controls question generation.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxAttempts bounds generation attempts per question, counting the
	// first one.
	MaxAttempts int

	// MaxPriorQuestions is the maximum number of earlier questions on the
	// same concept included in the prompt.
	MaxPriorQuestions int

	// TopK is the number of chunks a grounded question searches for.
	TopK int

	// ContextChunks is how many of the retrieved chunks go into the prompt.
	ContextChunks int

	// Threshold is the minimum retrieval score for a chunk to count.
	Threshold float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         256,
		Temperature:       0.7,
		MaxAttempts:       2,
		MaxPriorQuestions: 5,
		TopK:              5,
		ContextChunks:     3,
		Threshold:         0.2,
	}
}
