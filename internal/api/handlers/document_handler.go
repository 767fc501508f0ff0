package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shivamm1101/doc-ai/internal/core/ingestion_engine"
	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
	"github.com/Shivamm1101/doc-ai/internal/services"
)

const maxUploadBytes = 64 << 20

type documentService interface {
	Upload(ctx context.Context, filename, contentType string, data io.Reader) (*services.UploadResult, error)
	List(ctx context.Context) ([]models.DocumentSummary, error)
	Get(ctx context.Context, id int64) (*models.Document, error)
	CostItems(ctx context.Context, documentID int64) ([]models.CostItem, error)
}

type DocumentHandler struct {
	docs    documentService
	timeout time.Duration
	log     *logger.Logger
}

func NewDocumentHandler(docs documentService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, timeout: 10 * time.Minute, log: log.With("handler", "documents")}
}

// UploadDocument saves the multipart "file" field and ingests it before responding.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.docs.Upload(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.uploadError(w, header.Filename, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *DocumentHandler) uploadError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, services.ErrNotPDF) || errors.Is(err, services.ErrInvalidFilename) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var se *ingestion_engine.StageError
	if errors.As(err, &se) && se.Stage != ingestion_engine.StagePersist {
		h.log.Warn("upload rejected", "file", name, "stage", se.Stage, "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: se.Err.Error(), Stage: string(se.Stage)})
		return
	}

	h.log.Error("upload failed", "file", name, "err", err)
	writeError(w, http.StatusInternalServerError, "ingestion failed")
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		h.log.Error("list documents failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	if docs == nil {
		docs = []models.DocumentSummary{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument serves GET /api/documents/{id}.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		h.lookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetCostItems serves GET /api/documents/{id}/cost-items.
func (h *DocumentHandler) GetCostItems(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	items, err := h.docs.CostItems(r.Context(), id)
	if err != nil {
		h.lookupError(w, id, err)
		return
	}
	if items == nil {
		items = []models.CostItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return 0, false
	}
	return id, true
}

func (h *DocumentHandler) lookupError(w http.ResponseWriter, id int64, err error) {
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	h.log.Error("document lookup failed", "document_id", id, "err", err)
	writeError(w, http.StatusInternalServerError, "could not load document")
}
