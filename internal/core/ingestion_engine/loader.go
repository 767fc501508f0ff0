package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var (
	ErrNilClassification = errors.New("loader: classification is required")
	ErrEmbeddingMismatch = errors.New("loader: embedding count does not match chunk count")
)

// PersistResult reports what one Persist call stored.
type PersistResult struct {
	DocumentID int64
	Records    int
	Chunks     int
}

// Loader writes a document header, its structured records and its embedded
// chunks. The three writes commit independently; with compensation enabled a
// failure after the header is written removes what was stored.
type Loader struct {
	db         core.DbClient
	vectors    core.VectorStore
	embedder   core.EmbeddingProvider
	collection string
	batchSize  int
	compensate bool
	newID      func() string
	log        *logger.Logger
}

func NewLoader(db core.DbClient, vectors core.VectorStore, embedder core.EmbeddingProvider, cfg IngestConfig, log *logger.Logger) *Loader {
	return &Loader{
		db:         db,
		vectors:    vectors,
		embedder:   embedder,
		collection: cfg.Collection,
		batchSize:  max(cfg.EmbedBatchSize, 1),
		compensate: cfg.Compensate,
		newID:      uuid.NewString,
		log:        log.With("component", "loader"),
	}
}

// Persist stores one document. items are raw extractor items; chunks are
// stamped with the new document id before embedding.
func (l *Loader) Persist(ctx context.Context, name string, cls *models.Classification, items []any, chunks []models.Chunk) (*PersistResult, error) {
	if cls == nil {
		return nil, ErrNilClassification
	}
	recs := buildRecords(cls.DocumentType, normalizeItems(items, l.log), l.log)

	id, err := l.db.CreateDocument(ctx, &models.Document{
		Name:           name,
		Type:           cls.DocumentType,
		LayoutType:     cls.LayoutType,
		Classification: cls,
	})
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	log := l.log.With("document_id", id, "document", name)

	if recs.Len() > 0 {
		if err := l.db.InsertRecords(ctx, id, recs); err != nil {
			l.undo(ctx, id, log)
			return nil, fmt.Errorf("insert records: %w", err)
		}
	}

	stored, err := l.storeChunks(ctx, id, chunks)
	if err != nil {
		l.undo(ctx, id, log)
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	log.Info("document persisted", "type", cls.DocumentType, "records", recs.Len(), "chunks", stored)
	return &PersistResult{DocumentID: id, Records: recs.Len(), Chunks: stored}, nil
}

func (l *Loader) storeChunks(ctx context.Context, documentID int64, chunks []models.Chunk) (int, error) {
	var valid []models.Chunk
	for _, c := range chunks {
		c.Text = strings.TrimSpace(c.Text)
		if c.Text == "" {
			l.log.Warn("skipping empty chunk", "id", c.ID)
			continue
		}
		if c.ID == "" {
			c.ID = l.newID()
		}
		c.Metadata.DocumentID = documentID
		valid = append(valid, c)
	}

	for start := 0; start < len(valid); start += l.batchSize {
		batch := valid[start:min(start+l.batchSize, len(valid))]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vecs, err := l.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vecs) != len(batch) {
			return 0, fmt.Errorf("%w: %d vectors for %d chunks", ErrEmbeddingMismatch, len(vecs), len(batch))
		}

		records := make([]models.VectorRecord, len(batch))
		for i, c := range batch {
			records[i] = models.VectorRecord{ID: c.ID, Text: c.Text, Metadata: c.Metadata, Embedding: vecs[i]}
		}
		if err := l.vectors.Upsert(ctx, l.collection, records); err != nil {
			return 0, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}
	return len(valid), nil
}

// undo removes the vectors and the header row (records cascade). It runs on
// a context detached from cancellation so a cancelled ingest still cleans up.
func (l *Loader) undo(ctx context.Context, documentID int64, log *logger.Logger) {
	if !l.compensate {
		log.Warn("partial document left in place")
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := l.vectors.DeleteByDocument(ctx, l.collection, documentID); err != nil {
		log.Error("compensation: delete vectors failed", "err", err)
	}
	if err := l.db.DeleteDocument(ctx, documentID); err != nil {
		log.Error("compensation: delete document failed", "err", err)
		return
	}
	log.Warn("partially persisted document removed")
}
