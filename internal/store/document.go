package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// documentRepo implements DocumentRepo with raw SQL.
type documentRepo struct {
	db *sql.DB
}

func (r *documentRepo) ReplaceDocument(ctx context.Context, doc *Document, chunks []ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id IN
		(SELECT id FROM documents WHERE source = ?)`, doc.Source); err != nil {
		return fmt.Errorf("delete previous chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, doc.Source); err != nil {
		return fmt.Errorf("delete previous document: %w", err)
	}

	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now()
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO documents (source, title, ingested_at) VALUES (?, ?, ?)`,
		doc.Source, doc.Title, doc.IngestedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	doc.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("document id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (document_id, section_title, content, type)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		res, err := stmt.ExecContext(ctx, doc.ID, chunks[i].SectionTitle, chunks[i].Content, chunks[i].Type)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
		if chunks[i].ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("chunk id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

func (r *documentRepo) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, source, title, ingested_at FROM documents ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			d  Document
			ts int64
		)
		if err := rows.Scan(&d.ID, &d.Source, &d.Title, &ts); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.IngestedAt = time.UnixMilli(ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *documentRepo) ListChunks(ctx context.Context) ([]ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, document_id, section_title, content, type
		FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.SectionTitle, &c.Content, &c.Type); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
