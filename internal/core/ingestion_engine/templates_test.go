package ingestion_engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivamm1101/doc-ai/internal/models"
)

func TestTemplateFor_Unsupported(t *testing.T) {
	_, err := templateFor(models.DocumentTypeOther)
	assert.ErrorIs(t, err, ErrUnsupportedDocumentType)
	assert.False(t, SupportsExtraction(models.DocumentTypeOther))

	for _, dt := range []models.DocumentType{
		models.DocumentTypeCosting, models.DocumentTypeSchedule,
		models.DocumentTypeApproval, models.DocumentTypeCircular,
	} {
		assert.True(t, SupportsExtraction(dt), dt)
	}
}

func TestCostingTemplate_SubstitutesPlaceholders(t *testing.T) {
	tmpl, err := templateFor(models.DocumentTypeCosting)
	require.NoError(t, err)
	page := PageContent{PageNumber: 4, Text: "Excavation 120 m3", Tables: []string{"| a |\n| --- |\n| 1 |"}}

	prompt := tmpl.render(page)

	assert.NotContains(t, prompt, "{{")
	assert.Contains(t, prompt, "PAGE NUMBER: 4")
	assert.Contains(t, prompt, "Excavation 120 m3")
	assert.Contains(t, prompt, "### Table 1 (page 4)")
}

func TestCostingTemplate_SkipsPagesWithoutDigits(t *testing.T) {
	tmpl, err := templateFor(models.DocumentTypeCosting)
	require.NoError(t, err)

	assert.False(t, tmpl.eligible(PageContent{PageNumber: 9, Text: "Terms and conditions"}))
	assert.True(t, tmpl.eligible(PageContent{PageNumber: 9, Text: "Total 4,500"}))
	assert.False(t, tmpl.eligible(PageContent{PageNumber: 1, Text: "   "}))
}

func TestScheduleTemplate_AppendsPageBlock(t *testing.T) {
	tmpl, err := templateFor(models.DocumentTypeSchedule)
	require.NoError(t, err)

	plain := tmpl.render(PageContent{PageNumber: 2, Text: "Piling works"})
	assert.True(t, strings.HasSuffix(plain, "Page number: 2\n\nPAGE TEXT:\nPiling works"))
	assert.NotContains(t, plain, "PAGE TABLES")

	withTables := tmpl.render(PageContent{PageNumber: 2, Text: "Piling", Tables: []string{"| x |\n| --- |"}})
	assert.Contains(t, withTables, "PAGE TABLES (markdown):\n### Table 1 (page 2)")
	assert.True(t, tmpl.eligible(PageContent{Text: "no digits needed"}))
}
