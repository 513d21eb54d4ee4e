package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/assessor/internal/store"
)

// IngestConfig controls document ingestion.
type IngestConfig struct {
	// Concurrency bounds how many sources are fetched and parsed at once.
	Concurrency int

	// FetchTimeout bounds a single URL fetch.
	FetchTimeout time.Duration

	// MaxBytes caps how much of a source is read.
	MaxBytes int64
}

// DefaultIngestConfig returns sensible defaults for ingestion.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Concurrency:  4,
		FetchTimeout: 20 * time.Second,
		MaxBytes:     8 << 20,
	}
}

// IngestResult reports what one source produced.
type IngestResult struct {
	Source   string
	Title    string
	Sections int
	Chunks   int
}

// Ingester turns files and web pages into indexed chunks.
type Ingester struct {
	docs   store.DocumentRepo
	cfg    IngestConfig
	client *http.Client
	logger *slog.Logger
}

// NewIngester creates an Ingester writing to docs.
func NewIngester(docs store.DocumentRepo, cfg IngestConfig, logger *slog.Logger) *Ingester {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		docs:   docs,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		logger: logger,
	}
}

// Ingest loads every source, replacing previously ingested copies. Sources
// are file paths or http(s) URLs. The first failure cancels the rest.
func (in *Ingester) Ingest(ctx context.Context, sources []string) ([]IngestResult, error) {
	results := make([]IngestResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			res, err := in.ingestOne(gctx, src)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", src, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (in *Ingester) ingestOne(ctx context.Context, src string) (IngestResult, error) {
	raw, contentType, err := in.load(ctx, src)
	if err != nil {
		return IngestResult{}, err
	}

	title, text := extractText(src, raw, contentType)
	sections := SplitSections(text, title)

	var records []store.ChunkRecord
	for _, sec := range sections {
		if sec.Title != "" {
			records = append(records, store.ChunkRecord{SectionTitle: sec.Title, Content: sec.Title, Type: TypeTitle})
		}
		for _, c := range sec.Chunks {
			records = append(records, store.ChunkRecord{SectionTitle: sec.Title, Content: c, Type: TypeContent})
		}
	}

	doc := &store.Document{Source: src, Title: title}
	if err := in.docs.ReplaceDocument(ctx, doc, records); err != nil {
		return IngestResult{}, err
	}

	in.logger.Info("document ingested", "source", src, "title", title, "sections", len(sections), "chunks", len(records))
	return IngestResult{Source: src, Title: title, Sections: len(sections), Chunks: len(records)}, nil
}

func (in *Ingester) load(ctx context.Context, src string) ([]byte, string, error) {
	if !isURL(src) {
		f, err := os.Open(src)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		b, err := io.ReadAll(io.LimitReader(f, in.cfg.MaxBytes))
		return b, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := in.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch returned %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, in.cfg.MaxBytes))
	return b, resp.Header.Get("Content-Type"), err
}

// extractText returns a document title and SplitSections-ready text.
func extractText(src string, raw []byte, contentType string) (string, string) {
	title := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	if !isHTML(src, raw, contentType) {
		return title, string(raw)
	}

	parsed, _ := url.Parse(src)
	if parsed == nil || !isURL(src) {
		parsed = &url.URL{Scheme: "file", Path: src}
	}
	article, err := readability.FromReader(bytes.NewReader(raw), parsed)
	if err != nil {
		return title, HTMLToText(string(raw))
	}
	if article.Title != "" {
		title = article.Title
	}
	return title, HTMLToText(article.Content)
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func isHTML(src string, raw []byte, contentType string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".html", ".htm":
		return true
	}
	prefix := strings.ToLower(strings.TrimSpace(string(raw[:min(256, len(raw))])))
	return strings.HasPrefix(prefix, "<!doctype") || strings.HasPrefix(prefix, "<html")
}
