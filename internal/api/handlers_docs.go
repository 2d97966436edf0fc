package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/dartrag/internal/pathstore"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists all stored documents for a company.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		jsonError(w, "document store not configured", http.StatusServiceUnavailable)
		return
	}
	corpCode := chi.URLParam(r, "corpCode")

	docs, err := s.docs.ListDocuments(r.Context(), corpCode)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []pathstore.DocumentMeta{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"corp_code": corpCode, "documents": docs})
}

// handleDeleteDocument deletes a document and all its chunks.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		jsonError(w, "document store not configured", http.StatusServiceUnavailable)
		return
	}
	corpCode := chi.URLParam(r, "corpCode")
	docID := chi.URLParam(r, "docID")

	err := s.docs.DeleteDocument(r.Context(), corpCode, docID)
	switch {
	case errors.Is(err, pathstore.ErrNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
	case err != nil:
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
	}
}
