package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/auth"
	"github.com/cognitext/cognitext/internal/cache"
	"github.com/cognitext/cognitext/internal/document"
	"github.com/cognitext/cognitext/internal/ingest"
	"github.com/cognitext/cognitext/internal/models"
)

type DocumentHandler struct {
	docs    *document.Store
	cleaner *ingest.Cleaner
	cache   *cache.Cache
}

func NewDocumentHandler(docs *document.Store, cleaner *ingest.Cleaner, c *cache.Cache) *DocumentHandler {
	return &DocumentHandler{docs: docs, cleaner: cleaner, cache: c}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	docs, err := h.docs.ListByOwner(r.Context(), ident.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

// Lookup resolves a storage key to the owner's document, used by the client
// right after an upload to learn the document id.
func (h *DocumentHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key required"})
		return
	}

	doc, err := h.docs.GetByKey(r.Context(), key, ident.UserID)
	if errors.Is(err, document.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Status reports the ingestion status for polling clients. Unknown ids are
// PENDING: the poller may ask before the worker has created the record.
// Terminal statuses never change, so they are cached.
func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	cacheKey := "docstatus:" + id.String()
	var status string
	if err := h.cache.Get(r.Context(), cacheKey, &status); err == nil {
		writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": status})
		return
	}

	status, err = h.docs.Status(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if models.IsTerminal(status) {
		_ = h.cache.Set(r.Context(), cacheKey, status, time.Hour)
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": status})
}

func (h *DocumentHandler) Messages(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	if _, err := h.docs.GetForOwner(r.Context(), id, ident.UserID); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var cursor *uuid.UUID
	if c := r.URL.Query().Get("cursor"); c != "" {
		cid, err := uuid.Parse(c)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cursor"})
			return
		}
		cursor = &cid
	}

	page, err := h.docs.ListMessages(r.Context(), id, limit, cursor)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *DocumentHandler) MessageCounts(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	counts, err := h.docs.UserMessageCounts(r.Context(), ident.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

// Delete removes the document everywhere: messages, row, blob, vectors. The
// optional key query param lets a retry finish external cleanup after the
// local record is already gone.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	err = h.cleaner.Delete(r.Context(), id, ident.UserID, r.URL.Query().Get("key"))
	var cleanupErr *ingest.CleanupError
	switch {
	case errors.Is(err, document.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
	case errors.As(err, &cleanupErr):
		// Local deletion committed; the caller should retry to finish
		// the external sweep.
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": cleanupErr.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		_ = h.cache.Delete(r.Context(), "docstatus:"+id.String())
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
