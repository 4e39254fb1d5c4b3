package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/cognitext/cognitext/internal/ingest"
	"github.com/cognitext/cognitext/internal/queue"
)

type IngestWorker struct {
	orchestrator *ingest.Orchestrator
}

func NewIngestWorker(orchestrator *ingest.Orchestrator) *IngestWorker {
	return &IngestWorker{orchestrator: orchestrator}
}

// ProcessTask runs one ingestion. An error return makes asynq redeliver the
// event, which only happens for failures before the document record exists;
// after that point the orchestrator absorbs failures into a FAILED status and
// returns nil.
func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var ev ingest.UploadEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("unmarshal upload event: %w", err)
	}

	slog.Info("ingesting document", "storage_key", ev.StorageKey, "owner_id", ev.OwnerID)

	res, err := w.orchestrator.Ingest(ctx, ev)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", ev.StorageKey, err)
	}
	if res.Skipped {
		return nil
	}

	slog.Info("ingestion finished", "document_id", res.DocumentID, "storage_key", ev.StorageKey)
	return nil
}

// Mux returns the task mux for the worker process.
func Mux(iw *IngestWorker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeDocumentIngest, asynq.HandlerFunc(iw.ProcessTask))
	return mux
}
