package core

import "context"

// PDFPage exposes the text and table content of one page.
type PDFPage interface {
	Text() (string, error)
	// Tables returns each detected table as rows of cells.
	Tables() ([][][]string, error)
}

// PDFDocument is an opened PDF. Pages are numbered from 1.
type PDFDocument interface {
	NumPages() int
	Page(n int) (PDFPage, error)
}

type PDFOpener interface {
	Open(data []byte) (PDFDocument, error)
}

// OCREngine recognizes text from a rasterized PDF.
type OCREngine interface {
	RecognizePDF(ctx context.Context, data []byte) (string, error)
}
