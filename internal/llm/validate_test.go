package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func scoreSchema() *Schema {
	return &Schema{
		Name:        "test-score",
		Description: "A scored answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"score":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
				"feedback": map[string]any{"type": "string"},
				"band":     map[string]any{"type": "string", "enum": []any{"emerging", "developing", "solid", "exemplary"}},
			},
			"required": []any{"score", "feedback"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"score":85,"feedback":"good","band":"solid"}`, false},
		{"valid without optional", `{"score":10,"feedback":"review loops"}`, false},
		{"missing required", `{"score":50}`, true},
		{"wrong type", `{"score":"high","feedback":"x"}`, true},
		{"out of range", `{"score":140,"feedback":"x"}`, true},
		{"invalid enum", `{"score":90,"feedback":"x","band":"legendary"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(scoreSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`plain text`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedObjects(t *testing.T) {
	schema := &Schema{
		Name: "test-nested-plan",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"chapter": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
					},
					"required": []any{"title"},
				},
				"minutes": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"chapter", "minutes"},
		},
	}

	valid := json.RawMessage(`{"chapter":{"title":"Loops"},"minutes":[30,45]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"chapter":{"title":"Loops"},"minutes":["half an hour"]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}
