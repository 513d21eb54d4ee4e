package llm

import (
	"context"
	"encoding/json"
)

// Provider is the text-generation oracle every assessment stage talks to.
type Provider interface {
	// Generate sends a prompt and returns the model output. When
	// req.Schema is set the provider asks for JSON matching it and the
	// returned Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one call to the oracle.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Assessment stages send a single user
	// message.
	Messages []Message

	// Schema, when set, switches the provider to structured output.
	// When nil the response Content holds raw text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64

	// Decode, when set, runs on schema-valid content before the response
	// is returned. A failure is reported as *ErrInvalidResponse, so
	// RetryProvider treats it like a schema violation.
	Decode func(json.RawMessage) error
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema across providers and the validation
	// cache. Kebab-case, e.g. "answer-score".
	Name string

	Description string

	// Definition is the JSON Schema document as a map.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is validated JSON when a schema was requested, otherwise the
	// raw text bytes.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
