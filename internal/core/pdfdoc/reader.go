package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/Shivamm1101/doc-ai/internal/core"
)

var (
	ErrEmptyDocument   = errors.New("pdf: empty document")
	ErrPageOutOfRange  = errors.New("pdf: page out of range")
	errLibraryPanicked = errors.New("pdf: parser panic")
)

var _ core.PDFOpener = (*Reader)(nil)

// Reader opens PDFs with ledongthuc/pdf. The parser panics on some malformed
// inputs, so every call into it converts panics into errors.
type Reader struct {
	tables TableOptions
}

func NewReader(opts TableOptions) *Reader {
	return &Reader{tables: opts}
}

func (r *Reader) Open(data []byte) (doc core.PDFDocument, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	defer recoverInto(&err)

	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	return &document{r: rd, tables: r.tables}, nil
}

type document struct {
	r      *pdf.Reader
	tables TableOptions
}

func (d *document) NumPages() int {
	return d.r.NumPage()
}

func (d *document) Page(n int) (pg core.PDFPage, err error) {
	if n < 1 || n > d.r.NumPage() {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, d.r.NumPage())
	}
	defer recoverInto(&err)

	p := d.r.Page(n)
	return &page{p: p, null: p.V.IsNull(), tables: d.tables}, nil
}

type page struct {
	p      pdf.Page
	null   bool
	tables TableOptions
}

func (p *page) Text() (text string, err error) {
	if p.null {
		return "", nil
	}
	defer recoverInto(&err)
	return p.p.GetPlainText(nil)
}

func (p *page) Tables() (tables [][][]string, err error) {
	if p.null {
		return nil, nil
	}
	defer recoverInto(&err)

	rows, err := p.p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("pdf rows: %w", err)
	}

	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		line := make(Line, 0, len(row.Content))
		for _, t := range row.Content {
			line = append(line, Run{X: t.X, W: t.W, S: t.S})
		}
		lines = append(lines, line)
	}
	return DetectTables(lines, p.tables), nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", errLibraryPanicked, r)
	}
}
