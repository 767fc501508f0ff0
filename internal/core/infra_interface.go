package core

import (
	"context"
	"io"

	"github.com/Shivamm1101/doc-ai/internal/models"
)

// DbClient defines the relational persistence operations for documents and
// their structured records.
type DbClient interface {
	CreateDocument(ctx context.Context, doc *models.Document) (int64, error)
	GetDocumentByID(ctx context.Context, id int64) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
	DeleteDocument(ctx context.Context, id int64) error

	// InsertRecords writes every record for one document in a single transaction.
	InsertRecords(ctx context.Context, documentID int64, recs *models.Records) error
	ListCostItems(ctx context.Context, documentID int64) ([]models.CostItem, error)
	KeywordSearch(ctx context.Context, keyword string, limit int) ([]models.RecordMatch, error)

	Close() error
}

// VectorStore holds chunk embeddings grouped into named collections.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, records []models.VectorRecord) error
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]models.ChunkMatch, error)
	DeleteByDocument(ctx context.Context, collection string, documentID int64) error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// FileStore reads a document by path. Paths may be local or object storage URLs.
type FileStore interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}
