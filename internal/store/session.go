package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// sessionRepo implements SessionRepo with raw SQL.
type sessionRepo struct {
	db *sql.DB
}

const sessionColumns = `id, learner_id, subject, goal, level, curriculum_json, concept_index,
	use_retrieval, current_question, current_variation, retry_count, done, version,
	created_at, updated_at`

func (r *sessionRepo) CreateSession(ctx context.Context, rec *SessionRecord) error {
	curriculum, err := json.Marshal(rec.Curriculum)
	if err != nil {
		return fmt.Errorf("marshal curriculum: %w", err)
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.Version = 1

	_, err = r.db.ExecContext(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LearnerID, rec.Subject, rec.Goal, rec.Level, string(curriculum),
		rec.ConceptIndex, boolToInt(rec.UseRetrieval), rec.CurrentQuestion,
		rec.CurrentVariation, rec.RetryCount, boolToInt(rec.Done), rec.Version,
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *sessionRepo) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *sessionRepo) ListTurns(ctx context.Context, sessionID string) ([]TurnRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT session_id, turn, concept, variation,
		question, answer, score, feedback, created_at
		FROM qa_records WHERE session_id = ? ORDER BY turn ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var (
			t  TurnRecord
			ts int64
		)
		if err := rows.Scan(&t.SessionID, &t.Turn, &t.Concept, &t.Variation,
			&t.Question, &t.Answer, &t.Score, &t.Feedback, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = time.UnixMilli(ts)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *sessionRepo) SaveTurn(ctx context.Context, rec *SessionRecord, turn TurnRecord, persona json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `UPDATE sessions SET
		concept_index = ?, current_question = ?, current_variation = ?,
		retry_count = ?, done = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		rec.ConceptIndex, rec.CurrentQuestion, rec.CurrentVariation,
		rec.RetryCount, boolToInt(rec.Done), now.UnixMilli(),
		rec.ID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, rec.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	turn.SessionID = rec.ID
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = now
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO qa_records
		(session_id, turn, concept, variation, question, answer, score, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.SessionID, turn.Turn, turn.Concept, turn.Variation, turn.Question,
		turn.Answer, turn.Score, turn.Feedback, turn.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	if persona != nil {
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO personas (session_id, data_json, created_at)
			VALUES (?, ?, ?)`, rec.ID, string(persona), now.UnixMilli())
		if err != nil {
			return fmt.Errorf("insert persona: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn: %w", err)
	}

	rec.Version++
	rec.UpdatedAt = now
	return nil
}

func (r *sessionRepo) GetPersona(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return r.getBlob(ctx, "personas", sessionID)
}

func (r *sessionRepo) SavePersona(ctx context.Context, sessionID string, data json.RawMessage) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO personas (session_id, data_json, created_at)
		VALUES (?, ?, ?)`, sessionID, string(data), time.Now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("insert persona: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *sessionRepo) GetLessonPlan(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return r.getBlob(ctx, "lesson_plans", sessionID)
}

func (r *sessionRepo) SaveLessonPlan(ctx context.Context, sessionID string, data json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO lesson_plans (session_id, data_json, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			data_json = excluded.data_json,
			created_at = excluded.created_at`,
		sessionID, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert lesson plan: %w", err)
	}
	return nil
}

// getBlob reads the JSON payload keyed by session_id from table, which is
// always a fixed identifier chosen by the caller.
func (r *sessionRepo) getBlob(ctx context.Context, table, sessionID string) (json.RawMessage, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data_json FROM `+table+` WHERE session_id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return json.RawMessage(data), nil
}

func scanSession(s rowScanner) (*SessionRecord, error) {
	var (
		rec                  SessionRecord
		curriculum           string
		useRetrieval, done   int
		createdAt, updatedAt int64
	)
	err := s.Scan(&rec.ID, &rec.LearnerID, &rec.Subject, &rec.Goal, &rec.Level,
		&curriculum, &rec.ConceptIndex, &useRetrieval, &rec.CurrentQuestion,
		&rec.CurrentVariation, &rec.RetryCount, &done, &rec.Version,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if err := json.Unmarshal([]byte(curriculum), &rec.Curriculum); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	rec.UseRetrieval = useRetrieval != 0
	rec.Done = done != 0
	rec.CreatedAt = time.UnixMilli(createdAt)
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return &rec, nil
}
