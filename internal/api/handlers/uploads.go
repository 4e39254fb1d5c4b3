package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/ingest"
	"github.com/cognitext/cognitext/internal/models"
)

// IngestEnqueuer dispatches upload events to the worker process.
type IngestEnqueuer interface {
	EnqueueDocumentIngest(ev ingest.UploadEvent) error
}

// UploadHandler receives upload-completion callbacks from the object storage
// service and hands them to the worker. The callback authenticates with a
// shared secret, not a user token: it is machine-to-machine.
type UploadHandler struct {
	queue  IngestEnqueuer
	secret string
}

func NewUploadHandler(qc IngestEnqueuer, callbackSecret string) *UploadHandler {
	return &UploadHandler{queue: qc, secret: callbackSecret}
}

type uploadCompleteRequest struct {
	StorageKey       string `json:"storage_key"`
	DisplayName      string `json:"display_name"`
	DownloadURL      string `json:"download_url"`
	OwnerID          string `json:"owner_id"`
	SubscriptionTier string `json:"subscription_tier"`
}

func (h *UploadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get("X-Callback-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid callback secret"})
		return
	}

	var req uploadCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.StorageKey == "" || req.DownloadURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "storage_key and download_url required"})
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid owner_id"})
		return
	}

	tier := req.SubscriptionTier
	if tier != models.TierPro {
		tier = models.TierFree
	}

	if err := h.queue.EnqueueDocumentIngest(ingest.UploadEvent{
		StorageKey:       req.StorageKey,
		DisplayName:      req.DisplayName,
		DownloadURL:      req.DownloadURL,
		OwnerID:          ownerID,
		SubscriptionTier: tier,
	}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "storage_key": req.StorageKey})
}
