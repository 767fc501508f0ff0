package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/core/llm"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

// PageOutcome is the extraction result for one eligible page. Failure is
// FailureNone on success.
type PageOutcome struct {
	PageNumber int
	Items      []any
	Failure    FailureKind
	Err        error
}

// ExtractionResult holds the merged items in page order plus every page outcome.
type ExtractionResult struct {
	Items []any
	Pages []PageOutcome
}

// FailedPages lists pages whose extraction failed, in page order.
func (r *ExtractionResult) FailedPages() []int {
	if r == nil {
		return nil
	}
	var out []int
	for _, p := range r.Pages {
		if p.Failure != FailureNone {
			out = append(out, p.PageNumber)
		}
	}
	return out
}

// StructuredExtractor turns document pages into typed JSON items, one model
// call per eligible page.
type StructuredExtractor struct {
	opener   core.PDFOpener
	llm      core.Completer
	workers  int
	maxChars int
	log      *logger.Logger
}

func NewStructuredExtractor(opener core.PDFOpener, llm core.Completer, cfg IngestConfig, log *logger.Logger) *StructuredExtractor {
	return &StructuredExtractor{
		opener:   opener,
		llm:      llm,
		workers:  max(cfg.PageWorkers, 1),
		maxChars: cfg.PageTextMaxChars,
		log:      log.With("component", "structured-extractor"),
	}
}

// Extract reads every page sequentially, then prompts the eligible pages on
// a bounded worker group. Page failures are isolated in the result; an
// unsupported type, an unreadable file or cancellation fail the call.
func (e *StructuredExtractor) Extract(ctx context.Context, data []byte, docType models.DocumentType) (*ExtractionResult, error) {
	tmpl, err := templateFor(docType)
	if err != nil {
		return nil, err
	}

	pages, err := ReadPages(e.opener, data, PageOptions{MaxTextChars: e.maxChars, IncludeTables: true}, e.log)
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}

	var eligible []PageContent
	for _, p := range pages {
		if tmpl.eligible(p) {
			eligible = append(eligible, p)
		}
	}
	e.log.Debug("pages selected for extraction", "type", docType, "pages", len(pages), "eligible", len(eligible))

	outcomes := make([]PageOutcome, len(eligible))
	switch len(eligible) {
	case 0:
	case 1:
		outcomes[0] = e.extractPage(ctx, tmpl, eligible[0])
	default:
		var g errgroup.Group
		g.SetLimit(min(e.workers, len(eligible)))
		for i, p := range eligible {
			g.Go(func() error {
				outcomes[i] = e.extractPage(ctx, tmpl, p)
				return nil
			})
		}
		_ = g.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].PageNumber < outcomes[j].PageNumber })

	res := &ExtractionResult{Pages: outcomes}
	for _, o := range outcomes {
		res.Items = append(res.Items, o.Items...)
	}
	if failed := res.FailedPages(); len(failed) > 0 {
		e.log.Warn("some pages failed extraction", "type", docType, "failed_pages", failed)
	}
	return res, nil
}

func (e *StructuredExtractor) extractPage(ctx context.Context, tmpl extractionTemplate, p PageContent) PageOutcome {
	out := PageOutcome{PageNumber: p.PageNumber}

	reply, err := e.llm.Complete(ctx, tmpl.render(p))
	if err != nil {
		out.Err = err
		out.Failure = FailureLLM
		if errors.Is(err, llm.ErrRetryExhausted) {
			out.Failure = FailureRetryExhausted
		}
		e.log.Warn("page extraction failed", "page", p.PageNumber, "failure", out.Failure, "err", err)
		return out
	}

	items, kind := ParseJSONArray(reply)
	if kind != FailureNone {
		out.Failure = kind
		out.Err = fmt.Errorf("page %d: %s", p.PageNumber, kind)
		e.log.Warn("unusable page reply", "page", p.PageNumber, "failure", kind)
		return out
	}

	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if _, has := m["page_number"]; !has {
			m["page_number"] = p.PageNumber
		}
	}
	out.Items = items
	return out
}
