package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents one uploaded PDF. StorageKey is assigned by the object
// storage service and is unique: it is the natural deduplication key for
// upload-completion events. The document id doubles as the vector namespace.
type Document struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	StorageKey  string    `json:"storage_key" db:"storage_key"`
	DisplayName string    `json:"display_name" db:"display_name"`
	SourceURL   string    `json:"source_url" db:"source_url"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one question/answer turn associated with a document. Messages
// never outlive their document: cleanup deletes them first.
type Message struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DocumentID    uuid.UUID `json:"document_id" db:"document_id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	IsUserMessage bool      `json:"is_user_message" db:"is_user_message"`
	Text          string    `json:"text" db:"text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Document statuses. PENDING is implicit: it is reported for ids the store
// does not know and is never written to the database.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
)

// Subscription tiers carried on upload-completion events.
const (
	TierFree = "FREE"
	TierPro  = "PRO"
)

// IsTerminal reports whether a status permits no further transition.
func IsTerminal(status string) bool {
	return status == StatusSuccess || status == StatusFailed
}
