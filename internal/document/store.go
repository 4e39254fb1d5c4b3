// Package document persists document records and their messages, and owns the
// status lifecycle PENDING -> PROCESSING -> {SUCCESS, FAILED}.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cognitext/cognitext/internal/models"
)

// ErrNotFound is returned when a document does not exist or is not owned by
// the requesting user.
var ErrNotFound = errors.New("document not found")

const documentColumns = "id, owner_id, storage_key, display_name, source_url, status, created_at, updated_at"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateIfAbsent inserts the document with status PROCESSING, deduplicating
// on storage_key. The unique constraint makes check-and-create a single
// atomic operation: of N concurrent calls with the same key, exactly one
// returns created=true.
func (s *Store) CreateIfAbsent(ctx context.Context, doc *models.Document) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO documents (id, owner_id, storage_key, display_name, source_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (storage_key) DO NOTHING`,
		doc.ID, doc.OwnerID, doc.StorageKey, doc.DisplayName, doc.SourceURL, models.StatusProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("insert document: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.get(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1",
		id,
	)
}

func (s *Store) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Document, error) {
	return s.get(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1 AND owner_id = $2",
		id, ownerID,
	)
}

// GetByKey looks a document up by its storage key, scoped to the owner.
func (s *Store) GetByKey(ctx context.Context, key string, ownerID uuid.UUID) (*models.Document, error) {
	return s.get(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE storage_key = $1 AND owner_id = $2",
		key, ownerID,
	)
}

func (s *Store) get(ctx context.Context, query string, args ...any) (*models.Document, error) {
	var d models.Document
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&d.ID, &d.OwnerID, &d.StorageKey, &d.DisplayName, &d.SourceURL, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.StorageKey, &d.DisplayName, &d.SourceURL, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
