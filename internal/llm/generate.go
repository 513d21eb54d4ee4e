package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateJSON sends req and decodes the schema-validated content into T.
// req.Schema must be set. Decoding runs as the request's Decode hook, so a
// response that validates but does not decode is retried by RetryProvider
// like any other invalid response.
func GenerateJSON[T any](ctx context.Context, p Provider, req Request) (T, error) {
	var out T
	if req.Schema == nil {
		return out, fmt.Errorf("GenerateJSON requires a schema")
	}

	name := req.Schema.Name
	req.Decode = func(raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		out = v
		return nil
	}
	if _, err := p.Generate(ctx, req); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// GenerateText sends req without a schema and returns the trimmed text.
func GenerateText(ctx context.Context, p Provider, req Request) (string, error) {
	req.Schema = nil
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return ResponseText(resp), nil
}

// ResponseText returns the textual content of resp. Some providers wrap
// plain text as a JSON string; those are unquoted.
func ResponseText(resp *Response) string {
	if resp == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(resp.Content, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(resp.Content))
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, user string, schema *Schema, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Schema:      schema,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
