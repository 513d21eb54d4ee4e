package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Attribution headers OpenRouter uses to list the calling app.
const (
	openRouterReferer = "https://github.com/abhisek/assessor"
	openRouterTitle   = "assessor"
)

// OpenRouterProvider sends chat completions through OpenRouter. Model IDs
// are vendor-prefixed ("google/gemini-2.5-flash") and passed as given.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider returns a provider for cfg. Every request carries
// the app attribution headers.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	hc := &http.Client{Transport: attributionTransport{base: http.DefaultTransport}}
	inner, err := newChatProvider(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: baseURL}, nil, hc)
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(r)
}
