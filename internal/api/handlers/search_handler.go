package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
	"github.com/Shivamm1101/doc-ai/internal/services"
)

type searchService interface {
	Search(ctx context.Context, query string, k int) ([]models.ChunkMatch, error)
	Answer(ctx context.Context, query string, k int) (*services.SearchResult, error)
	Records(ctx context.Context, keyword string, limit int) ([]models.RecordMatch, error)
}

type SearchHandler struct {
	search searchService
	log    *logger.Logger
}

func NewSearchHandler(search searchService, log *logger.Logger) *SearchHandler {
	return &SearchHandler{search: search, log: log.With("handler", "search")}
}

type SearchRequest struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	SkipAnswer bool   `json:"skip_answer"`
}

// Search answers POST /api/search with the closest chunks and, unless
// skip_answer is set, a model answer grounded on them.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	var (
		res *services.SearchResult
		err error
	)
	if req.SkipAnswer {
		var matches []models.ChunkMatch
		matches, err = h.search.Search(r.Context(), req.Query, req.TopK)
		res = &services.SearchResult{Results: matches}
	} else {
		res, err = h.search.Answer(r.Context(), req.Query, req.TopK)
	}
	if err != nil {
		h.fail(w, "search", err)
		return
	}
	if res.Results == nil {
		res.Results = []models.ChunkMatch{}
	}
	writeJSON(w, http.StatusOK, res)
}

// Records answers GET /api/records/search?q=keyword&limit=n.
func (h *SearchHandler) Records(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	matches, err := h.search.Records(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.fail(w, "records", err)
		return
	}
	if matches == nil {
		matches = []models.RecordMatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": matches})
}

func (h *SearchHandler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, services.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}
