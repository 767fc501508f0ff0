package services

import (
	"context"
	"io"
	"os"

	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

type fakeIngestor struct {
	paths  []string
	bodies []string
	err    error
}

func (f *fakeIngestor) Ingest(_ context.Context, path string) (*ingestion_engine.IngestResult, error) {
	f.paths = append(f.paths, path)
	b, _ := os.ReadFile(path)
	f.bodies = append(f.bodies, string(b))
	if f.err != nil {
		return nil, f.err
	}
	return &ingestion_engine.IngestResult{DocumentID: 11, Name: "boq.pdf", DocumentType: models.DocumentTypeCosting, Records: 3, Chunks: 2}, nil
}

func (f *fakeIngestor) IngestMany(ctx context.Context, paths []string) *ingestion_engine.BatchReport {
	return &ingestion_engine.BatchReport{}
}

type fakeObjects struct {
	key  string
	body string
	err  error
}

func (f *fakeObjects) UploadFile(_ context.Context, bucket, key string, data io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(data)
	f.key, f.body = key, string(b)
	return "https://" + bucket + ".s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *fakeObjects) DeleteFile(context.Context, string, string) error { return nil }

func (f *fakeObjects) GetFile(context.Context, string, string) ([]byte, error) { return nil, nil }

type fakeDB struct {
	keyword string
	limit   int
	matches []models.RecordMatch
	docs    map[int64]*models.Document
	costs   map[int64][]models.CostItem
}

func (f *fakeDB) CreateDocument(context.Context, *models.Document) (int64, error) { return 0, nil }

func (f *fakeDB) GetDocumentByID(_ context.Context, id int64) (*models.Document, error) {
	return f.docs[id], nil
}

func (f *fakeDB) ListDocuments(context.Context) ([]models.DocumentSummary, error) {
	return []models.DocumentSummary{{Document: models.Document{ID: 1, Name: "boq.pdf"}, CostItems: 4}}, nil
}

func (f *fakeDB) DeleteDocument(context.Context, int64) error { return nil }

func (f *fakeDB) InsertRecords(context.Context, int64, *models.Records) error { return nil }

func (f *fakeDB) ListCostItems(_ context.Context, id int64) ([]models.CostItem, error) {
	return f.costs[id], nil
}

func (f *fakeDB) KeywordSearch(_ context.Context, keyword string, limit int) ([]models.RecordMatch, error) {
	f.keyword, f.limit = keyword, limit
	return f.matches, nil
}

func (f *fakeDB) Close() error { return nil }

type fakeEmbedder struct {
	texts []string
	err   error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type fakeVectors struct {
	collection string
	k          int
	matches    []models.ChunkMatch
}

func (f *fakeVectors) Upsert(context.Context, string, []models.VectorRecord) error { return nil }

func (f *fakeVectors) Query(_ context.Context, collection string, _ []float32, k int) ([]models.ChunkMatch, error) {
	f.collection, f.k = collection, k
	return f.matches, nil
}

func (f *fakeVectors) DeleteByDocument(context.Context, string, int64) error { return nil }

type fakeLLM struct {
	system, user string
	reply        string
	err          error
}

func (f *fakeLLM) Generate(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}
