package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitext/cognitext/internal/models"
	"github.com/cognitext/cognitext/internal/quota"
	"github.com/cognitext/cognitext/pkg/pdftext"
)

func testPages(n int) []pdftext.Page {
	pages := make([]pdftext.Page, n)
	for i := range pages {
		pages[i] = pdftext.Page{Number: i + 1, Text: fmt.Sprintf("page %d text", i+1)}
	}
	return pages
}

func testEvent(key string) UploadEvent {
	return UploadEvent{
		StorageKey:       key,
		DisplayName:      key + ".pdf",
		DownloadURL:      "https://storage.example.com/" + key,
		OwnerID:          uuid.New(),
		SubscriptionTier: models.TierFree,
	}
}

func newTestOrchestrator(docs *fakeDocStore, fetcher BlobFetcher, extractor Extractor, indexer Indexer) *Orchestrator {
	return NewOrchestrator(docs, fetcher, extractor, indexer,
		quota.Policy{FreeMaxPages: 3, ProMaxPages: 25})
}

func TestIngest_Success(t *testing.T) {
	docs := newFakeDocStore()
	indexer := &fakeIndexer{}
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(3)}, indexer)

	res, err := o.Ingest(context.Background(), testEvent("abc"))
	require.NoError(t, err)
	require.False(t, res.Skipped)

	assert.Equal(t, models.StatusSuccess, docs.status(res.DocumentID))
	assert.Equal(t, 1, indexer.callCount())
	assert.Len(t, indexer.pages, 3)
}

func TestIngest_DuplicateKeySkips(t *testing.T) {
	docs := newFakeDocStore()
	indexer := &fakeIndexer{}
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(2)}, indexer)

	first, err := o.Ingest(context.Background(), testEvent("abc"))
	require.NoError(t, err)
	require.False(t, first.Skipped)

	second, err := o.Ingest(context.Background(), testEvent("abc"))
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	assert.Equal(t, 1, docs.count())
	assert.Equal(t, 1, indexer.callCount())
}

func TestIngest_ConcurrentDeliveries(t *testing.T) {
	docs := newFakeDocStore()
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(1)}, &fakeIndexer{})

	const n = 16
	results := make([]*Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := o.Ingest(context.Background(), testEvent("same-key"))
			require.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	skipped := 0
	for _, res := range results {
		if res.Skipped {
			skipped++
		}
	}
	assert.Equal(t, n-1, skipped)
	assert.Equal(t, 1, docs.count())
}

func TestIngest_QuotaExceededFailsWithoutIndexing(t *testing.T) {
	docs := newFakeDocStore()
	indexer := &fakeIndexer{}
	// Free limit is 3; 4 pages must be rejected before any embedding work.
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(4)}, indexer)

	res, err := o.Ingest(context.Background(), testEvent("big"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, docs.status(res.DocumentID))
	assert.Equal(t, 0, indexer.callCount())
}

func TestIngest_ProTierAcceptsLargerDocument(t *testing.T) {
	docs := newFakeDocStore()
	indexer := &fakeIndexer{}
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(4)}, indexer)

	ev := testEvent("big-pro")
	ev.SubscriptionTier = models.TierPro

	res, err := o.Ingest(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, docs.status(res.DocumentID))
	assert.Equal(t, 1, indexer.callCount())
}

func TestIngest_FetchFailureEndsFailed(t *testing.T) {
	docs := newFakeDocStore()
	indexer := &fakeIndexer{}
	o := newTestOrchestrator(docs, &fakeFetcher{err: fmt.Errorf("connection reset")}, &fakeExtractor{}, indexer)

	res, err := o.Ingest(context.Background(), testEvent("gone"))
	require.NoError(t, err)

	// Record exists and reached a terminal status despite the fetch failure.
	assert.Equal(t, models.StatusFailed, docs.status(res.DocumentID))
	assert.Equal(t, 0, indexer.callCount())
}

func TestIngest_ExtractionFailureEndsFailed(t *testing.T) {
	docs := newFakeDocStore()
	indexer := &fakeIndexer{}
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("not a pdf")}, &fakeExtractor{err: fmt.Errorf("open pdf: bad header")}, indexer)

	res, err := o.Ingest(context.Background(), testEvent("corrupt"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, docs.status(res.DocumentID))
	assert.Equal(t, 0, indexer.callCount())
}

func TestIngest_IndexingFailureEndsFailed(t *testing.T) {
	docs := newFakeDocStore()
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(2)},
		&fakeIndexer{err: fmt.Errorf("upstream 503")})

	res, err := o.Ingest(context.Background(), testEvent("flaky"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, docs.status(res.DocumentID))
}

func TestIngest_PanicIsRecoveredAndFinalized(t *testing.T) {
	docs := newFakeDocStore()
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(1)},
		&fakeIndexer{panics: true})

	res, err := o.Ingest(context.Background(), testEvent("boom"))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, models.StatusFailed, docs.status(res.DocumentID))
}

func TestIngest_RepeatFinalizeSameOutcomeIsNoop(t *testing.T) {
	docs := newFakeDocStore()
	o := newTestOrchestrator(docs, &fakeFetcher{data: []byte("%PDF")}, &fakeExtractor{pages: testPages(1)}, &fakeIndexer{})

	res, err := o.Ingest(context.Background(), testEvent("abc"))
	require.NoError(t, err)

	require.NoError(t, docs.Complete(context.Background(), res.DocumentID, models.StatusSuccess))
	assert.Error(t, docs.Complete(context.Background(), res.DocumentID, models.StatusFailed))
}
