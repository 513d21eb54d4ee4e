package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	After   int64  // sequence > After
	Purpose string // exact purpose match when set
}

// SessionRecord is the persisted header of an assessment session.
type SessionRecord struct {
	ID               string
	LearnerID        string
	Subject          string
	Goal             string
	Level            string
	Curriculum       []string
	ConceptIndex     int
	UseRetrieval     bool
	CurrentQuestion  string
	CurrentVariation string
	RetryCount       int
	Done             bool

	// Version increases by one on every successful SaveTurn.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TurnRecord is one scored question/answer exchange. Turns are append-only
// and numbered from 0 within a session.
type TurnRecord struct {
	SessionID string
	Turn      int
	Concept   string
	Variation string
	Question  string
	Answer    string
	Score     int
	Feedback  string
	CreatedAt time.Time
}

// SessionRepo persists sessions, their turn history, and the artifacts
// produced once a session completes.
type SessionRepo interface {
	// CreateSession inserts a new session at version 1.
	CreateSession(ctx context.Context, rec *SessionRecord) error

	// GetSession returns the session header or ErrNotFound.
	GetSession(ctx context.Context, id string) (*SessionRecord, error)

	// ListSessions returns the most recently updated sessions first.
	ListSessions(ctx context.Context, limit int) ([]SessionRecord, error)

	// ListTurns returns all turns for a session in turn order.
	ListTurns(ctx context.Context, sessionID string) ([]TurnRecord, error)

	// SaveTurn atomically appends a turn, updates the session header and,
	// when persona is non-nil, stores the persona. rec.Version must equal
	// the stored version; on success it is incremented in place.
	SaveTurn(ctx context.Context, rec *SessionRecord, turn TurnRecord, persona json.RawMessage) error

	// GetPersona returns the stored persona JSON or ErrNotFound.
	GetPersona(ctx context.Context, sessionID string) (json.RawMessage, error)

	// SavePersona stores a persona once. A second save for the same
	// session is ignored and reports stored=false.
	SavePersona(ctx context.Context, sessionID string, data json.RawMessage) (stored bool, err error)

	// GetLessonPlan returns the stored lesson plan JSON or ErrNotFound.
	GetLessonPlan(ctx context.Context, sessionID string) (json.RawMessage, error)

	// SaveLessonPlan stores or replaces the lesson plan for a session.
	SaveLessonPlan(ctx context.Context, sessionID string, data json.RawMessage) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// Document is an ingested source document.
type Document struct {
	ID         int64
	Source     string
	Title      string
	IngestedAt time.Time
}

// ChunkRecord is one retrievable passage of a document.
type ChunkRecord struct {
	ID           int64
	DocumentID   int64
	SectionTitle string
	Content      string
	Type         string
}

// DocumentRepo stores ingested documents and their chunks.
type DocumentRepo interface {
	// ReplaceDocument stores a document and its chunks, replacing any
	// previous ingestion of the same source.
	ReplaceDocument(ctx context.Context, doc *Document, chunks []ChunkRecord) error

	// ListDocuments returns all documents ordered by source.
	ListDocuments(ctx context.Context) ([]Document, error)

	// ListChunks returns every stored chunk.
	ListChunks(ctx context.Context) ([]ChunkRecord, error)
}
