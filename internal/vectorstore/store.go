// Package vectorstore holds the embedding vectors for each document. Vectors
// are partitioned into namespaces keyed by document id; no operation ever
// touches more than one namespace.
package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

// Chunk is one embedded piece of a document page. PageNumber and ChunkIndex
// together map the vector back to its source text.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	PageNumber int
	ChunkIndex int
	Content    string
	Embedding  []float32
}

type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
}

type VectorStore interface {
	// UpsertNamespace writes all chunks into the document's namespace
	// atomically: either every vector lands or none do.
	UpsertNamespace(ctx context.Context, documentID uuid.UUID, chunks []Chunk) error

	// Search returns the topK nearest chunks within one namespace.
	Search(ctx context.Context, documentID uuid.UUID, query []float32, topK int) ([]SearchResult, error)

	// DeleteNamespace removes every vector for the document. Deleting an
	// absent namespace is not an error.
	DeleteNamespace(ctx context.Context, documentID uuid.UUID) error
}
