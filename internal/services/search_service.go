package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var ErrEmptyQuery = errors.New("query is empty")

const (
	defaultTopK    = 5
	maxTopK        = 50
	defaultRecords = 50
)

const answerSystemPrompt = `You answer questions about construction documents using only the context
provided. Cite page numbers when they are given. If the context does not
contain the answer, say "I cannot find this in the documents."`

// SearchResult is a semantic search plus an optional grounded answer.
type SearchResult struct {
	Results []models.ChunkMatch `json:"results"`
	Answer  string              `json:"answer,omitempty"`
}

type SearchService struct {
	embedder   core.EmbeddingProvider
	vectors    core.VectorStore
	db         core.DbClient
	llm        core.LLMProvider
	collection string
	log        *logger.Logger
}

func NewSearchService(embedder core.EmbeddingProvider, vectors core.VectorStore, db core.DbClient, llm core.LLMProvider, collection string, log *logger.Logger) *SearchService {
	return &SearchService{
		embedder:   embedder,
		vectors:    vectors,
		db:         db,
		llm:        llm,
		collection: collection,
		log:        log.With("component", "search-service"),
	}
}

// Search embeds the query and returns the k closest chunks.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]models.ChunkMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vecs))
	}
	return s.vectors.Query(ctx, s.collection, vecs[0], clampTopK(k))
}

// Answer runs Search and asks the model to answer from the matched chunks.
func (s *SearchService) Answer(ctx context.Context, query string, k int) (*SearchResult, error) {
	matches, err := s.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	res := &SearchResult{Results: matches}
	if len(matches) == 0 {
		return res, nil
	}

	user := fmt.Sprintf("Context:\n%s\nQuestion: %s", buildContext(matches), strings.TrimSpace(query))
	answer, err := s.llm.Generate(ctx, answerSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	res.Answer = strings.TrimSpace(answer)
	return res, nil
}

// Records runs a keyword search over the structured tables.
func (s *SearchService) Records(ctx context.Context, keyword string, limit int) ([]models.RecordMatch, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultRecords
	}
	return s.db.KeywordSearch(ctx, keyword, limit)
}

func buildContext(matches []models.ChunkMatch) string {
	var sb strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&sb, "[%s, page %d]\n%s\n---\n", m.Metadata.DocumentType, m.Metadata.PageNumber, m.Text)
	}
	return sb.String()
}

func clampTopK(k int) int {
	switch {
	case k <= 0:
		return defaultTopK
	case k > maxTopK:
		return maxTopK
	}
	return k
}
