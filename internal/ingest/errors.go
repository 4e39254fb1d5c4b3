package ingest

import "fmt"

// ExtractionError wraps a text-extraction failure (malformed or empty PDF).
// The pipeline maps it to a FAILED document status.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extraction failed: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// IndexingError wraps an embedding or vector-upsert failure, typically
// transient or external.
type IndexingError struct {
	Err error
}

func (e *IndexingError) Error() string { return fmt.Sprintf("indexing failed: %v", e.Err) }
func (e *IndexingError) Unwrap() error { return e.Err }

// CleanupError reports a partial failure while deleting external state (blob
// or vector namespace). The local deletion is already committed and is never
// rolled back; the call is safe to retry.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string { return fmt.Sprintf("cleanup incomplete: %v", e.Err) }
func (e *CleanupError) Unwrap() error { return e.Err }
