// Package retrieval provides the document search collaborators used to
// ground curricula and questions in ingested study material.
package retrieval

import (
	"context"
	"log/slog"
)

// Chunk types stored alongside every indexed chunk.
const (
	TypeTitle   = "title"
	TypeContent = "content"
)

// DefaultThreshold is the minimum score a chunk needs to be returned when
// the caller has no better value.
const DefaultThreshold = 0.2

// Chunk is one search hit.
type Chunk struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Type    string  `json:"type"`
	Score   float64 `json:"score"`
}

// Searcher finds chunks relevant to a query, best first.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64) ([]Chunk, error)
}

// ContentOnly filters chunks down to body content.
func ContentOnly(chunks []Chunk) []Chunk {
	var out []Chunk
	for _, c := range chunks {
		if c.Type == TypeContent && c.Content != "" {
			out = append(out, c)
		}
	}
	return out
}

// Safe wraps s so that search failures read as "no results". A nil s
// always returns nothing.
func Safe(s Searcher, logger *slog.Logger) Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &safeSearcher{inner: s, logger: logger}
}

type safeSearcher struct {
	inner  Searcher
	logger *slog.Logger
}

func (s *safeSearcher) Search(ctx context.Context, query string, topK int, threshold float64) ([]Chunk, error) {
	if s.inner == nil {
		return nil, nil
	}
	chunks, err := s.inner.Search(ctx, query, topK, threshold)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("retrieval unavailable", "query", query, "error", err)
		return nil, nil
	}
	return chunks, nil
}
