package ingestion_engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Shivamm1101/doc-ai/internal/models"
)

var ErrUnsupportedDocumentType = errors.New("unsupported document type")

// extractionTemplate describes how pages of one document type are prompted.
type extractionTemplate struct {
	body string
	// substitute fills {{PAGE_*}} placeholders instead of appending a page block.
	substitute bool
	// digitsOnly skips pages without any digit.
	digitsOnly bool
}

var extractionTemplates = map[models.DocumentType]extractionTemplate{
	models.DocumentTypeCosting:  {body: costingPagePrompt, substitute: true, digitsOnly: true},
	models.DocumentTypeSchedule: {body: schedulePrompt},
	models.DocumentTypeApproval: {body: approvalPrompt},
	models.DocumentTypeCircular: {body: regulatoryPrompt},
}

func templateFor(t models.DocumentType) (extractionTemplate, error) {
	tmpl, ok := extractionTemplates[t]
	if !ok {
		return extractionTemplate{}, fmt.Errorf("%w: %q", ErrUnsupportedDocumentType, t)
	}
	return tmpl, nil
}

// SupportsExtraction reports whether structured extraction exists for t.
func SupportsExtraction(t models.DocumentType) bool {
	_, ok := extractionTemplates[t]
	return ok
}

func (t extractionTemplate) eligible(p PageContent) bool {
	if p.IsEmpty() {
		return false
	}
	return !t.digitsOnly || p.HasDigits()
}

func (t extractionTemplate) render(p PageContent) string {
	tables := p.TablesMarkdown()
	if t.substitute {
		return strings.NewReplacer(
			"{{PAGE_NUMBER}}", strconv.Itoa(p.PageNumber),
			"{{PAGE_TEXT}}", p.Text,
			"{{PAGE_TABLES}}", tables,
		).Replace(t.body)
	}

	parts := []string{
		strings.TrimSpace(t.body),
		"Page number: " + strconv.Itoa(p.PageNumber),
		"PAGE TEXT:\n" + p.Text,
	}
	if tables != "" {
		parts = append(parts, "PAGE TABLES (markdown):\n"+tables)
	}
	return strings.Join(parts, "\n\n")
}
