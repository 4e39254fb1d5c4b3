package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/vectorstore"
	"github.com/cognitext/cognitext/pkg/chunker"
	"github.com/cognitext/cognitext/pkg/pdftext"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndexer turns page text into embedding vectors and upserts them into
// the document's namespace. Chunks smaller than a page are allowed, but every
// chunk keeps its source page number for downstream retrieval.
type VectorIndexer struct {
	embedder Embedder
	store    vectorstore.VectorStore
	opts     chunker.Options
}

func NewVectorIndexer(embedder Embedder, store vectorstore.VectorStore) *VectorIndexer {
	return &VectorIndexer{
		embedder: embedder,
		store:    store,
		opts:     chunker.DefaultOptions(),
	}
}

// Index is all-or-nothing: if any chunk cannot be embedded or stored, no
// vector is written and the whole call fails.
func (ix *VectorIndexer) Index(ctx context.Context, documentID uuid.UUID, pages []pdftext.Page) error {
	var chunks []vectorstore.Chunk
	var texts []string

	for _, page := range pages {
		for _, c := range chunker.Split(page.Text, ix.opts) {
			chunks = append(chunks, vectorstore.Chunk{
				ID:         uuid.New(),
				DocumentID: documentID,
				PageNumber: page.Number,
				ChunkIndex: c.Index,
				Content:    c.Content,
			})
			texts = append(texts, c.Content)
		}
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable text in %d pages", len(pages))
	}

	embeddings, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := ix.store.UpsertNamespace(ctx, documentID, chunks); err != nil {
		return fmt.Errorf("upsert namespace: %w", err)
	}
	return nil
}
