package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/auth"
	"github.com/cognitext/cognitext/internal/document"
	"github.com/cognitext/cognitext/internal/embedding"
	"github.com/cognitext/cognitext/internal/vectorstore"
)

type SearchHandler struct {
	docs     *document.Store
	embedder *embedding.Service
	vectors  vectorstore.VectorStore
}

func NewSearchHandler(docs *document.Store, embedder *embedding.Service, vectors vectorstore.VectorStore) *SearchHandler {
	return &SearchHandler{docs: docs, embedder: embedder, vectors: vectors}
}

type searchRequest struct {
	DocumentID uuid.UUID `json:"document_id"`
	Query      string    `json:"query"`
	TopK       int       `json:"top_k,omitempty"`
}

// Search runs a similarity search within one document's namespace.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DocumentID == uuid.Nil || req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_id and query required"})
		return
	}

	if _, err := h.docs.GetForOwner(r.Context(), req.DocumentID, ident.UserID); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	queryVec, err := h.embedder.EmbedSingle(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "embed query: " + err.Error()})
		return
	}

	results, err := h.vectors.Search(r.Context(), req.DocumentID, queryVec, req.TopK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}
