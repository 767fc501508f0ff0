package ingestion_engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
)

// PageContent is the text and markdown-rendered tables of one page. Tables
// hold the pipe tables without headings.
type PageContent struct {
	PageNumber int
	Text       string
	Tables     []string
}

// TablesMarkdown renders every table under a "### Table N (page P)" heading,
// separated by blank lines.
func (p PageContent) TablesMarkdown() string {
	parts := make([]string, len(p.Tables))
	for i, t := range p.Tables {
		parts[i] = fmt.Sprintf("### Table %d (page %d)\n%s", i+1, p.PageNumber, t)
	}
	return strings.Join(parts, "\n\n")
}

// IsEmpty reports whether the page carries no letter or digit at all.
func (p PageContent) IsEmpty() bool {
	return !p.contains(isAlnum)
}

// HasDigits reports whether a digit appears in the text or the tables.
func (p PageContent) HasDigits() bool {
	return p.contains(unicode.IsDigit)
}

func (p PageContent) contains(f func(rune) bool) bool {
	if strings.ContainsFunc(p.Text, f) {
		return true
	}
	for _, t := range p.Tables {
		if strings.ContainsFunc(t, f) {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

type PageOptions struct {
	MaxTextChars  int
	IncludeTables bool
}

// ExtractPageContent reads one page. A table extraction failure is logged and
// the page continues text-only; a text failure is returned.
func ExtractPageContent(page core.PDFPage, pageNumber int, opts PageOptions, log *logger.Logger) (PageContent, error) {
	text, err := page.Text()
	if err != nil {
		return PageContent{}, fmt.Errorf("page %d text: %w", pageNumber, err)
	}
	pc := PageContent{
		PageNumber: pageNumber,
		Text:       truncateRunes(strings.TrimSpace(text), opts.MaxTextChars),
	}
	if !opts.IncludeTables {
		return pc, nil
	}

	tables, err := page.Tables()
	if err != nil {
		log.Warn("table extraction failed, continuing text-only", "page", pageNumber, "err", err)
		return pc, nil
	}
	for _, rows := range tables {
		md := TableToMarkdown(rows)
		if md == "" {
			continue
		}
		pc.Tables = append(pc.Tables, md)
	}
	return pc, nil
}

// ReadPages extracts every page in order. Any page error aborts the read.
func ReadPages(opener core.PDFOpener, data []byte, opts PageOptions, log *logger.Logger) ([]PageContent, error) {
	doc, err := opener.Open(data)
	if err != nil {
		return nil, err
	}
	n := doc.NumPages()
	pages := make([]PageContent, 0, n)
	for i := 1; i <= n; i++ {
		pg, err := doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pc, err := ExtractPageContent(pg, i, opts, log)
		if err != nil {
			return nil, err
		}
		pages = append(pages, pc)
	}
	return pages, nil
}

// TableToMarkdown renders rows as a pipe table. The first row with any
// non-empty cell is the header; ragged rows are padded and fully empty rows
// are dropped. Returns "" when no row has content.
func TableToMarkdown(rows [][]string) string {
	cleaned := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		nonEmpty := false
		for i, c := range row {
			cells[i] = cleanCell(c)
			if cells[i] != "" {
				nonEmpty = true
			}
		}
		if nonEmpty {
			cleaned = append(cleaned, cells)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}

	cols := 0
	for _, row := range cleaned {
		cols = max(cols, len(row))
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		padded := make([]string, cols)
		copy(padded, cells)
		b.WriteString("| ")
		b.WriteString(strings.Join(padded, " | "))
		b.WriteString(" |\n")
	}

	writeRow(cleaned[0])
	sep := make([]string, cols)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range cleaned[1:] {
		writeRow(row)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
