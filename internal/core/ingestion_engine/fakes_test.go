package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

type fakePage struct {
	text      string
	tables    [][][]string
	textErr   error
	tablesErr error
}

func (p fakePage) Text() (string, error)          { return p.text, p.textErr }
func (p fakePage) Tables() ([][][]string, error) { return p.tables, p.tablesErr }

type fakeDoc struct {
	pages []fakePage
}

func (d *fakeDoc) NumPages() int { return len(d.pages) }

func (d *fakeDoc) Page(n int) (core.PDFPage, error) {
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", n)
	}
	return d.pages[n-1], nil
}

// fakeOpener resolves the raw bytes as a key into docs.
type fakeOpener struct {
	docs map[string]*fakeDoc
}

func (o *fakeOpener) Open(data []byte) (core.PDFDocument, error) {
	d, ok := o.docs[string(data)]
	if !ok {
		return nil, errors.New("not a pdf")
	}
	return d, nil
}

func textPages(texts ...string) *fakeDoc {
	d := &fakeDoc{}
	for _, t := range texts {
		d.pages = append(d.pages, fakePage{text: t})
	}
	return d
}

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	fn      func(ctx context.Context, prompt string) (string, error)
}

func (c *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return c.fn(ctx, prompt)
}

func (c *fakeCompleter) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (o *fakeOCR) RecognizePDF(context.Context, []byte) (string, error) {
	o.calls++
	return o.text, o.err
}

type fakeFiles map[string][]byte

func (f fakeFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	b, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return b, nil
}

type fakeDB struct {
	mu        sync.Mutex
	nextID    int64
	docs      map[int64]*models.Document
	records   map[int64]*models.Records
	deleted   []int64
	insertErr error
	createErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{docs: map[int64]*models.Document{}, records: map[int64]*models.Records{}}
}

func (d *fakeDB) CreateDocument(_ context.Context, doc *models.Document) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return 0, d.createErr
	}
	d.nextID++
	cp := *doc
	cp.ID = d.nextID
	d.docs[cp.ID] = &cp
	return cp.ID, nil
}

func (d *fakeDB) GetDocumentByID(_ context.Context, id int64) (*models.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.docs[id], nil
}

func (d *fakeDB) ListDocuments(context.Context) ([]models.DocumentSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.DocumentSummary
	for id, doc := range d.docs {
		s := models.DocumentSummary{Document: *doc}
		if r := d.records[id]; r != nil {
			s.CostItems = len(r.CostItems)
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *fakeDB) DeleteDocument(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.docs, id)
	delete(d.records, id)
	d.deleted = append(d.deleted, id)
	return nil
}

func (d *fakeDB) InsertRecords(_ context.Context, id int64, recs *models.Records) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.insertErr != nil {
		return d.insertErr
	}
	d.records[id] = recs
	return nil
}

func (d *fakeDB) ListCostItems(_ context.Context, id int64) ([]models.CostItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.records[id]
	if r == nil {
		return nil, nil
	}
	return r.CostItems, nil
}

func (d *fakeDB) KeywordSearch(context.Context, string, int) ([]models.RecordMatch, error) {
	return nil, nil
}

func (d *fakeDB) Close() error { return nil }

type fakeVectors struct {
	mu        sync.Mutex
	stored    map[string][]models.VectorRecord
	upserts   int
	deleted   []int64
	upsertErr error
}

func newFakeVectors() *fakeVectors {
	return &fakeVectors{stored: map[string][]models.VectorRecord{}}
}

func (v *fakeVectors) Upsert(_ context.Context, collection string, recs []models.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.upsertErr != nil {
		return v.upsertErr
	}
	v.upserts++
	v.stored[collection] = append(v.stored[collection], recs...)
	return nil
}

func (v *fakeVectors) Query(context.Context, string, []float32, int) ([]models.ChunkMatch, error) {
	return nil, nil
}

func (v *fakeVectors) DeleteByDocument(_ context.Context, collection string, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleted = append(v.deleted, id)
	kept := v.stored[collection][:0]
	for _, r := range v.stored[collection] {
		if r.Metadata.DocumentID != id {
			kept = append(kept, r)
		}
	}
	v.stored[collection] = kept
	return nil
}

type fakeEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	short   bool
	err     error
}

func (e *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return nil, e.err
	}
	n := len(texts)
	if e.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}
