package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates every table the store needs. Statements are
// idempotent so migrate runs on every Open.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		learner_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		goal TEXT NOT NULL,
		level TEXT NOT NULL,
		curriculum_json TEXT NOT NULL,
		concept_index INTEGER NOT NULL DEFAULT 0,
		use_retrieval INTEGER NOT NULL DEFAULT 0,
		current_question TEXT NOT NULL DEFAULT '',
		current_variation TEXT NOT NULL DEFAULT '',
		retry_count INTEGER NOT NULL DEFAULT 0,
		done INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_learner ON sessions(learner_id)`,
	`CREATE TABLE IF NOT EXISTS qa_records (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		turn INTEGER NOT NULL,
		concept TEXT NOT NULL,
		variation TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		score INTEGER NOT NULL,
		feedback TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, turn)
	)`,
	`CREATE TABLE IF NOT EXISTS personas (
		session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		data_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lesson_plans (
		session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		data_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_events_sequence ON llm_request_events(sequence)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		ingested_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		section_title TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
