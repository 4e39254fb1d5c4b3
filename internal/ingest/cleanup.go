package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cognitext/cognitext/internal/document"
	"github.com/cognitext/cognitext/internal/models"
	"github.com/cognitext/cognitext/internal/vectorstore"
)

// CleanupStore is the slice of the document store the cleaner needs.
type CleanupStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	DeleteMessages(ctx context.Context, documentID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Cleaner removes a document's messages, row, stored blob, and vector
// namespace. The row and message deletes are the authoritative deletion; the
// blob and namespace sweeps are best-effort and safe to retry.
type Cleaner struct {
	docs    CleanupStore
	blobs   BlobDeleter
	vectors vectorstore.VectorStore
}

func NewCleaner(docs CleanupStore, blobs BlobDeleter, vectors vectorstore.VectorStore) *Cleaner {
	return &Cleaner{docs: docs, blobs: blobs, vectors: vectors}
}

// Delete removes everything belonging to the document. Ownership is
// re-verified here even though the API layer already checked it. When the
// local record is already gone — a retry after a partial failure — the
// external sweep still runs using the caller-provided storage key, so
// repeated deletes converge on a fully cleaned state.
func (c *Cleaner) Delete(ctx context.Context, documentID, ownerID uuid.UUID, storageKey string) error {
	doc, err := c.docs.GetByID(ctx, documentID)
	switch {
	case errors.Is(err, document.ErrNotFound):
		if storageKey == "" {
			return document.ErrNotFound
		}
		slog.Info("document row already deleted, retrying external cleanup", "document_id", documentID)
	case err != nil:
		return fmt.Errorf("load document: %w", err)
	case doc.OwnerID != ownerID:
		return document.ErrNotFound
	default:
		storageKey = doc.StorageKey

		// Messages must go before the document row: no message may
		// outlive its document.
		if _, err := c.docs.DeleteMessages(ctx, documentID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := c.docs.Delete(ctx, documentID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
	}

	// The local deletion above is committed and is never rolled back; a
	// failure below leaves the document logically deleted but physically
	// lingering until a retry.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.blobs.Delete(gctx, storageKey); err != nil {
			return fmt.Errorf("delete blob %s: %w", storageKey, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.vectors.DeleteNamespace(gctx, documentID); err != nil {
			return fmt.Errorf("delete namespace %s: %w", documentID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Warn("external cleanup incomplete", "document_id", documentID, "error", err)
		return &CleanupError{Err: err}
	}

	return nil
}
