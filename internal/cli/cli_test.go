package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/models"
	"github.com/Shivamm1101/doc-ai/internal/services"
)

type stubIngestor struct {
	paths []string
}

func (s *stubIngestor) Ingest(_ context.Context, path string) (*ingestion_engine.IngestResult, error) {
	return nil, errors.New("not used")
}

func (s *stubIngestor) IngestMany(_ context.Context, paths []string) *ingestion_engine.BatchReport {
	s.paths = paths
	report := &ingestion_engine.BatchReport{}
	for i, p := range paths {
		if p == "broken.pdf" {
			report.Documents = append(report.Documents, ingestion_engine.DocumentReport{
				Path: p, Stage: ingestion_engine.StageClassify, Error: "malformed model response",
			})
			report.Failed++
			continue
		}
		report.Documents = append(report.Documents, ingestion_engine.DocumentReport{
			Path:  p,
			Stage: ingestion_engine.StageDone,
			Result: &ingestion_engine.IngestResult{
				DocumentID: int64(i + 1), Name: p, DocumentType: models.DocumentTypeCosting, Records: 3, Chunks: 2,
			},
		})
		report.Succeeded++
	}
	return report
}

type stubPreviewer struct{}

func (stubPreviewer) Process(_ context.Context, paths []string) []ingestion_engine.DocumentResult {
	out := make([]ingestion_engine.DocumentResult, len(paths))
	for i, p := range paths {
		out[i].Path = p
		if p == "broken.pdf" {
			out[i].Stage, out[i].Err = ingestion_engine.StageClassify, errors.New("malformed model response")
			continue
		}
		out[i].Stage = ingestion_engine.StageDone
		out[i].Classification = &models.Classification{DocumentType: models.DocumentTypeSchedule}
		out[i].Extraction = &ingestion_engine.ExtractionResult{
			Items: []any{map[string]any{"task_name": "Piling", "page_number": 1}},
			Pages: []ingestion_engine.PageOutcome{
				{PageNumber: 1},
				{PageNumber: 2, Failure: ingestion_engine.FailureLLM, Err: errors.New("400")},
			},
		}
	}
	return out
}

type stubSearcher struct {
	k        int
	limit    int
	answered bool
}

func (s *stubSearcher) Search(_ context.Context, query string, k int) ([]models.ChunkMatch, error) {
	s.k = k
	return []models.ChunkMatch{{
		ID:       "c1",
		Text:     "rebar supply for level 2 slabs",
		Metadata: models.ChunkMetadata{DocumentType: models.DocumentTypeCosting, PageNumber: 4},
		Score:    0.12,
	}}, nil
}

func (s *stubSearcher) Answer(ctx context.Context, query string, k int) (*services.SearchResult, error) {
	s.answered = true
	matches, _ := s.Search(ctx, query, k)
	return &services.SearchResult{Results: matches, Answer: "Rebar is on page 4."}, nil
}

func (s *stubSearcher) Records(_ context.Context, keyword string, limit int) ([]models.RecordMatch, error) {
	s.limit = limit
	page := 4
	return []models.RecordMatch{{DocumentID: 1, DocumentName: "boq.pdf", Kind: models.RecordKindCostItem, Text: "Rebar", PageNumber: &page}}, nil
}

type stubLister struct{}

func (stubLister) List(context.Context) ([]models.DocumentSummary, error) {
	return []models.DocumentSummary{{
		Document:  models.Document{ID: 7, Name: "boq.pdf", Type: models.DocumentTypeCosting},
		CostItems: 12,
	}}, nil
}

type testServices struct {
	ingestor *stubIngestor
	search   *stubSearcher
	closed   bool
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{ingestor: &stubIngestor{}, search: &stubSearcher{}}
	orig := buildApp
	buildApp = func(context.Context) (*appServices, error) {
		return &appServices{
			Ingestor:  ts.ingestor,
			Previewer: stubPreviewer{},
			Search:    ts.search,
			Documents: stubLister{},
			Close:     func() { ts.closed = true },
		}, nil
	}
	t.Cleanup(func() {
		buildApp = orig
		ingestJSON, searchJSON, recordsJSON, documentsJSON, extractJSON = false, false, false, false, false
		searchTopK, searchNoAnswer, recordsLimit = 5, false, 50
		rootCmd.SetArgs(nil)
	})
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ingest")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestIngestCmd_ReportsEachDocument(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "ingest", "a.pdf", "b.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ts.ingestor.paths)
	assert.Contains(t, out, "[ok]   a.pdf -> document 1")
	assert.Contains(t, out, "2 succeeded, 0 failed")
	assert.True(t, ts.closed)
}

func TestIngestCmd_FailureSetsError(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "ingest", "--json", "a.pdf", "broken.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, out, `"succeeded": 1`)
	assert.Contains(t, out, `"stage": "classify"`)
}

func TestExtractCmd_PrintsWithoutStoring(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "extract", "gantt.pdf")

	require.NoError(t, err)
	assert.Contains(t, out, "[ok]   gantt.pdf (project_schedule, 1 items)")
	assert.Contains(t, out, "failed pages: [2]")
	assert.Empty(t, ts.ingestor.paths)
}

func TestExtractCmd_JSONAndFailure(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "extract", "--json", "gantt.pdf", "broken.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, out, `"task_name": "Piling"`)
	assert.Contains(t, out, `"error": "malformed model response"`)
}

func TestSearchCmd_Flags(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
	require.NotNil(t, searchCmd.Flags().Lookup("no-answer"))
}

func TestSearchCmd_PrintsAnswer(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "search", "--top-k", "3", "where is rebar")

	require.NoError(t, err)
	assert.True(t, ts.search.answered)
	assert.Equal(t, 3, ts.search.k)
	assert.Contains(t, out, "Rebar is on page 4.")
	assert.Contains(t, out, "[1] construction_costing page 4")
}

func TestSearchCmd_NoAnswer(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "search", "--no-answer", "rebar")

	require.NoError(t, err)
	assert.False(t, ts.search.answered)
	assert.NotContains(t, out, "Answer:")
	assert.Contains(t, out, "Results:")
}

func TestRecordsCmd_PassesLimit(t *testing.T) {
	ts := setupTestServices(t)

	flag := recordsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)

	out, err := execute(t, "records", "-n", "10", "rebar")

	require.NoError(t, err)
	assert.Equal(t, 10, ts.search.limit)
	assert.Contains(t, out, "Rebar (document 1, page 4)")
}

func TestDocumentsCmd_Lists(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "documents")

	require.NoError(t, err)
	assert.Contains(t, out, "7  boq.pdf  [construction_costing]  costs=12")
}

func TestBuildAppError(t *testing.T) {
	setupTestServices(t)
	buildApp = func(context.Context) (*appServices, error) { return nil, errors.New("DATABASE_URL not set") }

	_, err := execute(t, "documents")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL not set")
}

func TestBootstrapCmd(t *testing.T) {
	setupTestServices(t)
	orig := bootstrapDB
	t.Cleanup(func() { bootstrapDB = orig })

	called := false
	bootstrapDB = func(context.Context) error { called = true; return nil }

	out, err := execute(t, "bootstrap")

	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, out, "Database schema is ready.")
}
