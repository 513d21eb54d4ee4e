package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/abhisek/assessor/internal/store"
)

// LocalIndex searches chunks ingested into the local store. A chunk's
// score is the fraction of distinct query terms it contains.
type LocalIndex struct {
	docs store.DocumentRepo
}

// NewLocalIndex creates a LocalIndex over the given document repo.
func NewLocalIndex(docs store.DocumentRepo) *LocalIndex {
	return &LocalIndex{docs: docs}
}

// Search implements Searcher.
func (ix *LocalIndex) Search(ctx context.Context, query string, topK int, threshold float64) ([]Chunk, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	records, err := ix.docs.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	var hits []Chunk
	for _, rec := range records {
		score := overlap(terms, rec.SectionTitle+" "+rec.Content)
		if score <= 0 || score < threshold {
			continue
		}
		hits = append(hits, Chunk{
			Title:   rec.SectionTitle,
			Content: rec.Content,
			Type:    rec.Type,
			Score:   score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "how": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "what": true, "with": true,
}

// Terms returns the distinct lowercase search terms of s.
func Terms(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func overlap(terms []string, text string) float64 {
	have := make(map[string]bool)
	for _, t := range Terms(text) {
		have[t] = true
	}
	matched := 0
	for _, t := range terms {
		if have[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
