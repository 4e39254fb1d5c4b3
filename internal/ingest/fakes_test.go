package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/document"
	"github.com/cognitext/cognitext/internal/models"
	"github.com/cognitext/cognitext/internal/vectorstore"
	"github.com/cognitext/cognitext/pkg/pdftext"
)

// fakeDocStore backs both the recorder and cleanup interfaces with an
// in-memory map guarded the way the database's unique constraint would be.
type fakeDocStore struct {
	mu       sync.Mutex
	byKey    map[string]*models.Document
	byID     map[uuid.UUID]*models.Document
	messages map[uuid.UUID]int

	completeErr error
	calls       []string
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		byKey:    make(map[string]*models.Document),
		byID:     make(map[uuid.UUID]*models.Document),
		messages: make(map[uuid.UUID]int),
	}
}

func (f *fakeDocStore) CreateIfAbsent(_ context.Context, doc *models.Document) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byKey[doc.StorageKey]; ok {
		return false, nil
	}
	cp := *doc
	f.byKey[cp.StorageKey] = &cp
	f.byID[cp.ID] = &cp
	return true, nil
}

func (f *fakeDocStore) Complete(_ context.Context, id uuid.UUID, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	d, ok := f.byID[id]
	if !ok {
		return document.ErrNotFound
	}
	if models.IsTerminal(d.Status) {
		if d.Status == outcome {
			return nil
		}
		return &document.InvariantViolationError{DocumentID: id, From: d.Status, To: outcome}
	}
	d.Status = outcome
	return nil
}

func (f *fakeDocStore) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocStore) DeleteMessages(_ context.Context, documentID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete_messages")
	n := int64(f.messages[documentID])
	delete(f.messages, documentID)
	return n, nil
}

func (f *fakeDocStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete_document")
	d, ok := f.byID[id]
	if ok {
		delete(f.byKey, d.StorageKey)
		delete(f.byID, id)
	}
	return nil
}

func (f *fakeDocStore) status(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return models.StatusPending
	}
	return d.Status
}

func (f *fakeDocStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byKey)
}

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) FetchURL(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

type fakeExtractor struct {
	pages []pdftext.Page
	err   error
}

func (f *fakeExtractor) Extract(context.Context, []byte) ([]pdftext.Page, error) {
	return f.pages, f.err
}

type fakeIndexer struct {
	mu     sync.Mutex
	calls  int
	pages  []pdftext.Page
	err    error
	panics bool
}

func (f *fakeIndexer) Index(_ context.Context, _ uuid.UUID, pages []pdftext.Page) error {
	f.mu.Lock()
	f.calls++
	f.pages = pages
	f.mu.Unlock()
	if f.panics {
		panic("indexer blew up")
	}
	return f.err
}

func (f *fakeIndexer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeBlobDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeBlobDeleter) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeVectorStore struct {
	mu         sync.Mutex
	namespaces map[uuid.UUID][]vectorstore.Chunk
	upsertErr  error
	deleteErr  error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{namespaces: make(map[uuid.UUID][]vectorstore.Chunk)}
}

func (f *fakeVectorStore) UpsertNamespace(_ context.Context, documentID uuid.UUID, chunks []vectorstore.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.namespaces[documentID] = chunks
	return nil
}

func (f *fakeVectorStore) Search(context.Context, uuid.UUID, []float32, int) ([]vectorstore.SearchResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeVectorStore) DeleteNamespace(_ context.Context, documentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.namespaces, documentID)
	return nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}
