package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var _ core.VectorStore = (*VectorStore)(nil)

// VectorStore keeps chunk embeddings in the chunk_embeddings table, one
// logical collection per value of the collection column.
type VectorStore struct {
	db *sql.DB
}

func NewVectorStore(client *DatabaseClient) *VectorStore {
	return &VectorStore{db: client.db}
}

// Upsert writes the batch in one transaction, replacing rows with the same id.
func (s *VectorStore) Upsert(ctx context.Context, collection string, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunk_embeddings (collection, id, document_id, text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (collection, id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			text        = EXCLUDED.text,
			metadata    = EXCLUDED.metadata,
			embedding   = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}
		docID := sql.NullInt64{Int64: r.Metadata.DocumentID, Valid: r.Metadata.DocumentID != 0}
		if _, err := stmt.ExecContext(ctx,
			collection, r.ID, docID, r.Text, meta, pgvector.NewVector(r.Embedding),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns the k nearest chunks by cosine distance, closest first.
func (s *VectorStore) Query(ctx context.Context, collection string, embedding []float32, k int) ([]models.ChunkMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	const q = `
		SELECT id, text, metadata, embedding <=> $2 AS distance
		FROM chunk_embeddings
		WHERE collection = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, q, collection, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChunkMatch
	for rows.Next() {
		var (
			m    models.ChunkMatch
			meta []byte
		)
		if err := rows.Scan(&m.ID, &m.Text, &meta, &m.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *VectorStore) DeleteByDocument(ctx context.Context, collection string, documentID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM chunk_embeddings WHERE collection = $1 AND document_id = $2`, collection, documentID)
	return err
}
