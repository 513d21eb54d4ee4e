package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSearcher queries a remote search service. The service accepts
// POST {base}/search with {"query","top_k","score_threshold"} and answers
// {"results":[{"title","content","type","score"}]}.
type HTTPSearcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSearcher creates an HTTPSearcher. apiKey may be empty.
func NewHTTPSearcher(baseURL, apiKey string, timeout time.Duration) *HTTPSearcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query          string  `json:"query"`
	TopK           int     `json:"top_k"`
	ScoreThreshold float64 `json:"score_threshold"`
}

type searchResponse struct {
	Results []Chunk `json:"results"`
}

// Search implements Searcher.
func (h *HTTPSearcher) Search(ctx context.Context, query string, topK int, threshold float64) ([]Chunk, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: topK, ScoreThreshold: threshold})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if topK > 0 && len(out.Results) > topK {
		out.Results = out.Results[:topK]
	}
	return out.Results, nil
}
