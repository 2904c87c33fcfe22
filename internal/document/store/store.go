package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/moumensalem/masroof/internal/document"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetDocument(ctx context.Context, uid uuid.UUID) (*document.Document, error) {
	query := `
		SELECT uid, data, created_at, updated_at
		FROM documents
		WHERE uid = $1
	`

	var doc document.Document

	err := s.db.QueryRowContext(ctx, query, uid).
		Scan(&doc.UID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &doc, nil
}

// MergeDocument upserts with jsonb merge semantics: existing top-level
// fields not present in the incoming data are preserved, and created_at is
// only stamped on the first write.
func (s *Store) MergeDocument(ctx context.Context, uid uuid.UUID, data json.RawMessage) (*document.Document, error) {
	query := `
		INSERT INTO documents (uid, data, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (uid) DO UPDATE
		SET data = documents.data || EXCLUDED.data, updated_at = NOW()
		RETURNING uid, data, created_at, updated_at
	`

	var doc document.Document

	err := s.db.QueryRowContext(ctx, query, uid, []byte(data)).
		Scan(&doc.UID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("merging document: %w", err)
	}

	return &doc, nil
}
