package ingestion_engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

const scheduleVerdict = "```json\n" + `{"pdf_type":"project_schedule","layout_type":"gantt",` +
	`"flags":{"contains_text":true,"contains_gantt":true},"reason":"bars over weeks"}` + "\n```"

func replyWith(reply string, err error) *fakeCompleter {
	return &fakeCompleter{fn: func(context.Context, string) (string, error) { return reply, err }}
}

func newTestClassifier(docs map[string]*fakeDoc, ocr *fakeOCR, llm *fakeCompleter, cfg IngestConfig) *Classifier {
	var engine core.OCREngine
	if ocr != nil {
		engine = ocr
	}
	return NewClassifier(&fakeOpener{docs: docs}, engine, llm, cfg, logger.Nop())
}

func TestClassify_ParsesFencedVerdict(t *testing.T) {
	llm := replyWith(scheduleVerdict, nil)
	c := newTestClassifier(map[string]*fakeDoc{"pdf": textPages(strings.Repeat("schedule ", 30))}, nil, llm, DefaultIngestConfig())

	cls, err := c.Classify(context.Background(), []byte("pdf"))

	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeSchedule, cls.DocumentType)
	assert.Equal(t, "gantt", cls.LayoutType)
	assert.True(t, cls.Flags.ContainsGantt)
	assert.False(t, cls.Flags.RequiresOCR)
	assert.Equal(t, "bars over weeks", cls.Reason)
	require.Len(t, llm.Prompts(), 1)
	assert.Contains(t, llm.Prompts()[0], "schedule schedule")
	assert.NotContains(t, llm.Prompts()[0], "{{CONTENT}}")
}

func TestClassify_TypeAliasesAndUnknown(t *testing.T) {
	docs := map[string]*fakeDoc{"pdf": textPages(strings.Repeat("x ", 100))}

	cls, err := newTestClassifier(docs, nil, replyWith(`{"pdf_type":"construction_process"}`, nil), DefaultIngestConfig()).
		Classify(context.Background(), []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeApproval, cls.DocumentType)

	cls, err = newTestClassifier(docs, nil, replyWith(`{"pdf_type":"brochure"}`, nil), DefaultIngestConfig()).
		Classify(context.Background(), []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeOther, cls.DocumentType)
}

func TestClassify_MalformedReplyIsFatal(t *testing.T) {
	docs := map[string]*fakeDoc{"pdf": textPages(strings.Repeat("x ", 100))}

	for _, reply := range []string{"I think it is a schedule.", `{"layout_type":"table"}`} {
		_, err := newTestClassifier(docs, nil, replyWith(reply, nil), DefaultIngestConfig()).
			Classify(context.Background(), []byte("pdf"))
		assert.ErrorIs(t, err, ErrMalformedResponse, reply)
	}
}

func TestClassify_ModelErrorIsWrapped(t *testing.T) {
	boom := errors.New("permission denied")
	docs := map[string]*fakeDoc{"pdf": textPages(strings.Repeat("x ", 100))}

	_, err := newTestClassifier(docs, nil, replyWith("", boom), DefaultIngestConfig()).
		Classify(context.Background(), []byte("pdf"))

	assert.ErrorIs(t, err, boom)
}

func TestClassify_UnreadableFile(t *testing.T) {
	_, err := newTestClassifier(nil, nil, replyWith(scheduleVerdict, nil), DefaultIngestConfig()).
		Classify(context.Background(), []byte("not a pdf"))
	assert.ErrorContains(t, err, "open pdf")
}

func TestClassify_OCRFallbackOnSparseText(t *testing.T) {
	ocr := &fakeOCR{text: "STEP 1 submit plans STEP 2 obtain approval"}
	llm := replyWith(`{"pdf_type":"construction_approval"}`, nil)
	c := newTestClassifier(map[string]*fakeDoc{"scan": textPages("  ", "p2")}, ocr, llm, DefaultIngestConfig())

	_, err := c.Classify(context.Background(), []byte("scan"))

	require.NoError(t, err)
	assert.Equal(t, 1, ocr.calls)
	assert.Contains(t, llm.Prompts()[0], "STEP 1 submit plans")
}

func TestClassify_OCRSkippedWithEnoughText(t *testing.T) {
	ocr := &fakeOCR{text: "ocr text"}
	llm := replyWith(scheduleVerdict, nil)
	c := newTestClassifier(map[string]*fakeDoc{"pdf": textPages(strings.Repeat("a", 150))}, ocr, llm, DefaultIngestConfig())

	_, err := c.Classify(context.Background(), []byte("pdf"))

	require.NoError(t, err)
	assert.Zero(t, ocr.calls)
}

func TestClassify_OCRFailureKeepsDirectText(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("pdftoppm missing")}
	llm := replyWith(scheduleVerdict, nil)
	c := newTestClassifier(map[string]*fakeDoc{"pdf": textPages("short text")}, ocr, llm, DefaultIngestConfig())

	_, err := c.Classify(context.Background(), []byte("pdf"))

	require.NoError(t, err)
	assert.Contains(t, llm.Prompts()[0], "short text")
}

func TestClassify_TruncatesCleanedText(t *testing.T) {
	cfg := DefaultIngestConfig()
	cfg.ClassifyMaxChars = 20
	llm := replyWith(scheduleVerdict, nil)
	c := newTestClassifier(map[string]*fakeDoc{"pdf": textPages("abc\x00def" + strings.Repeat("z", 200))}, nil, llm, cfg)

	_, err := c.Classify(context.Background(), []byte("pdf"))

	require.NoError(t, err)
	prompt := llm.Prompts()[0]
	assert.Contains(t, prompt, "abcdef"+strings.Repeat("z", 14)+truncationMarker)
	assert.NotContains(t, prompt, "\x00")
}

func TestCleanText(t *testing.T) {
	in := "Line\x07 one   with\t\tgaps\r\n\n\n\n\nLine two\x00"
	assert.Equal(t, "Line one with gaps\n\nLine two", cleanText(in))
}
