package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var ErrMalformedResponse = errors.New("malformed classification response")

const truncationMarker = "\n...[TRUNCATED]..."

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// Classifier assigns a document type, layout and structural flags to a PDF.
type Classifier struct {
	opener   core.PDFOpener
	ocr      core.OCREngine
	llm      core.Completer
	maxChars int
	ocrMin   int
	log      *logger.Logger
}

// NewClassifier builds a classifier. ocr may be nil, which disables the
// low-text fallback.
func NewClassifier(opener core.PDFOpener, ocr core.OCREngine, llm core.Completer, cfg IngestConfig, log *logger.Logger) *Classifier {
	return &Classifier{
		opener:   opener,
		ocr:      ocr,
		llm:      llm,
		maxChars: cfg.ClassifyMaxChars,
		ocrMin:   cfg.OCRMinChars,
		log:      log.With("component", "classifier"),
	}
}

// Classify reads the document text (falling back to OCR when there is too
// little of it), asks the model for a verdict and parses it. Open, model and
// parse failures are all fatal for the document.
func (c *Classifier) Classify(ctx context.Context, data []byte) (*models.Classification, error) {
	text, err := c.documentText(ctx, data)
	if err != nil {
		return nil, err
	}
	content := truncateWithMarker(cleanText(text), c.maxChars)

	reply, err := c.llm.Complete(ctx, strings.Replace(classificationPrompt, "{{CONTENT}}", content, 1))
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	cls, err := parseClassification(reply)
	if err != nil {
		c.log.Warn("unparseable classification", "reply", reply, "err", err)
		return nil, err
	}
	c.log.Info("document classified", "type", cls.DocumentType, "layout", cls.LayoutType)
	return cls, nil
}

func (c *Classifier) documentText(ctx context.Context, data []byte) (string, error) {
	doc, err := c.opener.Open(data)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for i := 1; i <= doc.NumPages(); i++ {
		pg, err := doc.Page(i)
		if err != nil {
			c.log.Warn("skipping unreadable page", "page", i, "err", err)
			continue
		}
		t, err := pg.Text()
		if err != nil {
			c.log.Warn("skipping page text", "page", i, "err", err)
			continue
		}
		parts = append(parts, t)
	}
	text := strings.Join(parts, "\n")

	if c.ocr == nil || utf8.RuneCountInString(strings.TrimSpace(text)) >= c.ocrMin {
		return text, nil
	}

	c.log.Info("low text density, running ocr", "chars", utf8.RuneCountInString(strings.TrimSpace(text)))
	ocrText, err := c.ocr.RecognizePDF(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.log.Warn("ocr fallback failed, using direct text", "err", err)
		return text, nil
	}
	if strings.TrimSpace(ocrText) == "" {
		return text, nil
	}
	return ocrText, nil
}

func parseClassification(reply string) (*models.Classification, error) {
	var raw struct {
		PDFType    string                 `json:"pdf_type"`
		LayoutType string                 `json:"layout_type"`
		Flags      models.StructuralFlags `json:"flags"`
		Reason     string                 `json:"reason"`
	}
	if err := ParseJSONObject(reply, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(raw.PDFType) == "" {
		return nil, fmt.Errorf("%w: missing pdf_type", ErrMalformedResponse)
	}

	t, _ := models.ParseDocumentType(raw.PDFType)
	return &models.Classification{
		DocumentType: t,
		LayoutType:   strings.TrimSpace(raw.LayoutType),
		Flags:        raw.Flags,
		Reason:       strings.TrimSpace(raw.Reason),
	}, nil
}

// cleanText drops NULs and other control characters except newline and tab,
// collapses runs of spaces and limits blank lines to one.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = multiNewlineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func truncateWithMarker(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + truncationMarker
}
