package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var (
	ErrInvalidFilename = errors.New("invalid file name")
	ErrNotPDF          = errors.New("only .pdf files are accepted")
	ErrNotFound        = errors.New("document not found")
)

// UploadResult is an ingested upload plus its archive location, if any.
type UploadResult struct {
	*ingestion_engine.IngestResult
	StorageURL string `json:"storage_url,omitempty"`
}

// DocumentService saves uploads under a local directory, optionally archives
// them to object storage and runs them through the ingestion pipeline.
type DocumentService struct {
	db       core.DbClient
	storage  core.ObjectClient
	bucket   string
	ingestor ingestion_engine.Ingestor
	dir      string
	log      *logger.Logger
}

// NewDocumentService builds the service. storage may be nil to skip archiving.
func NewDocumentService(db core.DbClient, storage core.ObjectClient, bucket string, ing ingestion_engine.Ingestor, dir string, log *logger.Logger) *DocumentService {
	return &DocumentService{
		db:       db,
		storage:  storage,
		bucket:   bucket,
		ingestor: ing,
		dir:      dir,
		log:      log.With("component", "document-service"),
	}
}

// Upload stores the file and ingests it synchronously.
func (s *DocumentService) Upload(ctx context.Context, filename, contentType string, data io.Reader) (*UploadResult, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	local, err := s.save(id, name, data)
	if err != nil {
		return nil, err
	}

	out := &UploadResult{}
	if s.storage != nil {
		out.StorageURL = s.archive(ctx, local, objectKey(id, name), contentType)
	}

	res, err := s.ingestor.Ingest(ctx, local)
	if err != nil {
		if rmErr := os.RemoveAll(filepath.Dir(local)); rmErr != nil {
			s.log.Warn("remove failed upload", "file", local, "err", rmErr)
		}
		return nil, err
	}
	out.IngestResult = res
	return out, nil
}

// save writes the upload to <dir>/<id>/<name>; the base name stays the
// client's file name.
func (s *DocumentService) save(id, name string, data io.Reader) (string, error) {
	uploadDir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	local := filepath.Join(uploadDir, name)
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", local, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", local, err)
	}
	return local, nil
}

// archive copies the saved file to object storage. Failure only costs the
// archive copy, so it is logged and the upload continues.
func (s *DocumentService) archive(ctx context.Context, local, key, contentType string) string {
	f, err := os.Open(local)
	if err != nil {
		s.log.Warn("archive skipped", "file", local, "err", err)
		return ""
	}
	defer f.Close()

	if contentType == "" {
		contentType = "application/pdf"
	}
	url, err := s.storage.UploadFile(ctx, s.bucket, key, f, contentType)
	if err != nil {
		s.log.Warn("archive upload failed", "key", key, "err", err)
		return ""
	}
	return url
}

func (s *DocumentService) List(ctx context.Context) ([]models.DocumentSummary, error) {
	return s.db.ListDocuments(ctx)
}

// Get returns ErrNotFound when no document has the id.
func (s *DocumentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return doc, nil
}

// CostItems lists a document's cost rows in page order.
func (s *DocumentService) CostItems(ctx context.Context, documentID int64) ([]models.CostItem, error) {
	if _, err := s.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return s.db.ListCostItems(ctx, documentID)
}

func cleanFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", ErrInvalidFilename
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", fmt.Errorf("%w: %s", ErrNotPDF, name)
	}
	return name, nil
}

// objectKey creates a consistent S3 key layout.
func objectKey(id, filename string) string {
	return path.Join("documents", id, strings.ReplaceAll(filename, " ", "_"))
}
