package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

// Stage names the pipeline step a document reached or failed in.
type Stage string

const (
	StageRead     Stage = "read"
	StageClassify Stage = "classify"
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StagePersist  Stage = "persist"
	StageDone     Stage = "done"
)

// StageError wraps a document failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// DocumentResult is the classify-and-extract outcome for one path.
type DocumentResult struct {
	Path           string
	Classification *models.Classification
	Extraction     *ExtractionResult
	Stage          Stage
	Err            error
}

// IngestResult describes one fully ingested document.
type IngestResult struct {
	DocumentID   int64               `json:"document_id"`
	Name         string              `json:"document_name"`
	DocumentType models.DocumentType `json:"document_type"`
	Records      int                 `json:"records"`
	Chunks       int                 `json:"chunks"`
	FailedPages  []int               `json:"failed_pages,omitempty"`
}

// DocumentReport is one line of a batch ingestion report.
type DocumentReport struct {
	Path   string        `json:"path"`
	Stage  Stage         `json:"stage"`
	Result *IngestResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
	Err    error         `json:"-"`
}

type BatchReport struct {
	Documents []DocumentReport `json:"documents"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// Pipeline orchestrates classification, extraction, chunking and persistence.
type Pipeline struct {
	files      core.FileStore
	opener     core.PDFOpener
	classifier *Classifier
	extractor  *StructuredExtractor
	chunker    *Chunker
	loader     *Loader
	cfg        IngestConfig
	log        *logger.Logger
}

func NewPipeline(
	files core.FileStore,
	opener core.PDFOpener,
	classifier *Classifier,
	extractor *StructuredExtractor,
	chunker *Chunker,
	loader *Loader,
	cfg IngestConfig,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		files:      files,
		opener:     opener,
		classifier: classifier,
		extractor:  extractor,
		chunker:    chunker,
		loader:     loader,
		cfg:        cfg,
		log:        log.With("component", "pipeline"),
	}
}

// Process classifies every path sequentially, then extracts the classified
// documents on a bounded pool. Results keep input order and every failure is
// confined to its own document.
func (p *Pipeline) Process(ctx context.Context, paths []string) []DocumentResult {
	results := make([]DocumentResult, len(paths))
	data := make([][]byte, len(paths))
	var pending []int

	for i, path := range paths {
		results[i].Path = path
		b, err := p.files.ReadFile(ctx, path)
		if err != nil {
			results[i].Stage, results[i].Err = StageRead, err
			p.log.Warn("read failed", "path", path, "err", err)
			continue
		}
		cls, err := p.classifier.Classify(ctx, b)
		if err != nil {
			results[i].Stage, results[i].Err = StageClassify, err
			p.log.Warn("classification failed", "path", path, "err", err)
			continue
		}
		results[i].Classification = cls
		data[i] = b
		pending = append(pending, i)
	}

	err := p.runBounded(len(pending), func(j int) {
		i := pending[j]
		res, err := p.extract(ctx, data[i], results[i].Classification.DocumentType)
		if err != nil {
			results[i].Stage, results[i].Err = StageExtract, err
			p.log.Warn("extraction failed", "path", results[i].Path, "err", err)
			return
		}
		results[i].Extraction = res
		results[i].Stage = StageDone
	})
	if err != nil {
		for _, i := range pending {
			if results[i].Stage == "" {
				results[i].Stage, results[i].Err = StageExtract, err
			}
		}
	}
	return results
}

// Ingest runs the whole pipeline for one document and returns the new id.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*IngestResult, error) {
	fail := func(stage Stage, err error) (*IngestResult, error) {
		return nil, &StageError{Stage: stage, Path: path, Err: err}
	}

	data, err := p.files.ReadFile(ctx, path)
	if err != nil {
		return fail(StageRead, err)
	}
	cls, err := p.classifier.Classify(ctx, data)
	if err != nil {
		return fail(StageClassify, err)
	}
	extraction, err := p.extract(ctx, data, cls.DocumentType)
	if err != nil {
		return fail(StageExtract, err)
	}

	pages, err := ReadPages(p.opener, data, PageOptions{
		MaxTextChars:  p.cfg.ChunkPageMaxChars,
		IncludeTables: p.chunker.Options().IncludeTables,
	}, p.log)
	if err != nil {
		return fail(StageChunk, err)
	}
	chunks := p.chunker.Chunk(pages, cls.DocumentType)

	name := filepath.Base(path)
	stored, err := p.loader.Persist(ctx, name, cls, extraction.Items, chunks)
	if err != nil {
		return fail(StagePersist, err)
	}

	return &IngestResult{
		DocumentID:   stored.DocumentID,
		Name:         name,
		DocumentType: cls.DocumentType,
		Records:      stored.Records,
		Chunks:       stored.Chunks,
		FailedPages:  extraction.FailedPages(),
	}, nil
}

// extract skips structured extraction for types without a template so the
// document still gets its header row and chunks.
func (p *Pipeline) extract(ctx context.Context, data []byte, t models.DocumentType) (*ExtractionResult, error) {
	if !SupportsExtraction(t) {
		p.log.Info("no extraction template, storing chunks only", "type", t)
		return &ExtractionResult{}, nil
	}
	return p.extractor.Extract(ctx, data, t)
}

// IngestMany ingests every path on the document pool and reports each one.
func (p *Pipeline) IngestMany(ctx context.Context, paths []string) *BatchReport {
	report := &BatchReport{Documents: make([]DocumentReport, len(paths))}

	err := p.runBounded(len(paths), func(i int) {
		rep := DocumentReport{Path: paths[i], Stage: StageDone}
		res, err := p.Ingest(ctx, paths[i])
		if err != nil {
			rep.Stage, rep.Err, rep.Error = StageRead, err, err.Error()
			var se *StageError
			if errors.As(err, &se) {
				rep.Stage = se.Stage
			}
			p.log.Warn("document ingestion failed", "path", paths[i], "stage", rep.Stage, "err", err)
		}
		rep.Result = res
		report.Documents[i] = rep
	})
	if err != nil {
		for i := range report.Documents {
			if report.Documents[i].Stage == "" {
				report.Documents[i] = DocumentReport{Path: paths[i], Stage: StageRead, Err: err, Error: err.Error()}
			}
		}
	}

	for _, d := range report.Documents {
		if d.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
	p.log.Info("batch ingestion finished", "documents", len(paths), "succeeded", report.Succeeded, "failed", report.Failed)
	return report
}

// runBounded calls fn for 0..n-1. A single unit runs inline; more run on an
// ants pool of min(DocWorkers, n). It returns once every submitted call is done.
func (p *Pipeline) runBounded(n int, fn func(i int)) error {
	switch n {
	case 0:
		return nil
	case 1:
		fn(0)
		return nil
	}

	pool, err := ants.NewPool(min(max(p.cfg.DocWorkers, 1), n))
	if err != nil {
		return fmt.Errorf("document pool: %w", err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		submitErr error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit document %d: %w", i, err)
			break
		}
	}
	wg.Wait()
	return submitErr
}
