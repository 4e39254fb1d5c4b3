// Package ingest drives uploaded PDFs from object storage to indexed,
// queryable vectors, and coordinates the reverse path when a document is
// deleted.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/models"
	"github.com/cognitext/cognitext/internal/quota"
	"github.com/cognitext/cognitext/pkg/pdftext"
)

// UploadEvent is the upload-completion notification delivered by the object
// storage collaborator.
type UploadEvent struct {
	StorageKey       string    `json:"storage_key"`
	DisplayName      string    `json:"display_name"`
	DownloadURL      string    `json:"download_url"`
	OwnerID          uuid.UUID `json:"owner_id"`
	SubscriptionTier string    `json:"subscription_tier"`
}

// Result reports pipeline completion, not indexing outcome: callers must read
// the document status to learn whether indexing succeeded.
type Result struct {
	DocumentID uuid.UUID
	Skipped    bool
}

// DocumentRecorder is the slice of the document store the orchestrator needs.
type DocumentRecorder interface {
	CreateIfAbsent(ctx context.Context, doc *models.Document) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, outcome string) error
}

type BlobFetcher interface {
	FetchURL(ctx context.Context, url string) ([]byte, error)
}

type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]pdftext.Page, error)
}

type Indexer interface {
	Index(ctx context.Context, documentID uuid.UUID, pages []pdftext.Page) error
}

type Orchestrator struct {
	docs      DocumentRecorder
	fetcher   BlobFetcher
	extractor Extractor
	indexer   Indexer
	quota     quota.Policy
}

func NewOrchestrator(docs DocumentRecorder, fetcher BlobFetcher, extractor Extractor, indexer Indexer, policy quota.Policy) *Orchestrator {
	return &Orchestrator{
		docs:      docs,
		fetcher:   fetcher,
		extractor: extractor,
		indexer:   indexer,
		quota:     policy,
	}
}

// Ingest runs the pipeline for one upload-completion event. Duplicate
// deliveries of the same storage key return a skipped result without
// re-processing. Once the document record exists, the document always reaches
// a terminal status: every processing failure is converted to FAILED here,
// never surfaced to the event deliverer.
func (o *Orchestrator) Ingest(ctx context.Context, ev UploadEvent) (res *Result, err error) {
	doc := &models.Document{
		ID:          uuid.New(),
		OwnerID:     ev.OwnerID,
		StorageKey:  ev.StorageKey,
		DisplayName: ev.DisplayName,
		SourceURL:   ev.DownloadURL,
		Status:      models.StatusProcessing,
	}

	created, err := o.docs.CreateIfAbsent(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if !created {
		slog.Info("duplicate upload event skipped", "storage_key", ev.StorageKey)
		return &Result{Skipped: true}, nil
	}

	// Commit point. From here cleanup is the only undo path, and the
	// deferred finalizer guarantees a terminal status on every exit,
	// including panics.
	outcome := models.StatusFailed
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during ingestion", "document_id", doc.ID, "panic", r)
			outcome = models.StatusFailed
			res, err = &Result{DocumentID: doc.ID}, nil
		}
		o.finalize(ctx, doc.ID, outcome)
	}()

	if procErr := o.process(ctx, doc.ID, ev); procErr != nil {
		slog.Warn("ingestion failed", "document_id", doc.ID, "storage_key", ev.StorageKey, "error", procErr)
		return &Result{DocumentID: doc.ID}, nil
	}

	outcome = models.StatusSuccess
	slog.Info("document indexed", "document_id", doc.ID, "storage_key", ev.StorageKey)
	return &Result{DocumentID: doc.ID}, nil
}

func (o *Orchestrator) process(ctx context.Context, documentID uuid.UUID, ev UploadEvent) error {
	blob, err := o.fetcher.FetchURL(ctx, ev.DownloadURL)
	if err != nil {
		return fmt.Errorf("fetch blob: %w", err)
	}

	pages, err := o.extractor.Extract(ctx, blob)
	if err != nil {
		return &ExtractionError{Err: err}
	}

	// Quota is checked after extraction (page count unknown before) and
	// before indexing (over-limit documents must not incur embedding cost).
	subscribed := ev.SubscriptionTier == models.TierPro
	if err := o.quota.Evaluate(len(pages), subscribed); err != nil {
		return err
	}

	if err := o.indexer.Index(ctx, documentID, pages); err != nil {
		return &IndexingError{Err: err}
	}
	return nil
}

// finalize records the terminal status. The parent context may already be
// cancelled or poisoned by the failure being finalized, so the write uses a
// detached context; if it still cannot reach the database the document is
// stuck in PROCESSING and needs out-of-band repair.
func (o *Orchestrator) finalize(ctx context.Context, documentID uuid.UUID, outcome string) {
	if err := o.docs.Complete(context.WithoutCancel(ctx), documentID, outcome); err != nil {
		slog.Error("failed to finalize document status; document left in PROCESSING",
			"document_id", documentID, "outcome", outcome, "error", err)
	}
}
