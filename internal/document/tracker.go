package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cognitext/cognitext/internal/models"
)

// InvariantViolationError reports a conflicting terminal transition, e.g.
// completing a SUCCESS document as FAILED. It signals a logic bug in the
// caller and must not be swallowed.
type InvariantViolationError struct {
	DocumentID uuid.UUID
	From       string
	To         string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: document %s cannot transition %s -> %s", e.DocumentID, e.From, e.To)
}

// Status reports the current document status. Unknown ids are PENDING:
// pollers may ask before the record exists.
func (s *Store) Status(ctx context.Context, id uuid.UUID) (string, error) {
	var status string
	err := s.db.QueryRow(ctx, "SELECT status FROM documents WHERE id = $1", id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StatusPending, nil
	}
	if err != nil {
		return "", fmt.Errorf("read status: %w", err)
	}
	return status, nil
}

// Complete drives the document to a terminal status. SUCCESS and FAILED are
// final: repeating the same outcome is a no-op, a conflicting outcome is an
// InvariantViolationError, an unknown id is ErrNotFound.
func (s *Store) Complete(ctx context.Context, id uuid.UUID, outcome string) error {
	if !models.IsTerminal(outcome) {
		return &InvariantViolationError{DocumentID: id, From: models.StatusProcessing, To: outcome}
	}

	tag, err := s.db.Exec(ctx,
		"UPDATE documents SET status = $2, updated_at = now() WHERE id = $1 AND status = $3",
		id, outcome, models.StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("complete document: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = s.db.QueryRow(ctx, "SELECT status FROM documents WHERE id = $1", id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	return resolveRepeatComplete(id, current, outcome)
}

// resolveRepeatComplete decides what a Complete call against an
// already-terminal document means: repeating the same outcome is fine,
// flipping to the other one is a bug.
func resolveRepeatComplete(id uuid.UUID, current, outcome string) error {
	if current == outcome {
		return nil
	}
	return &InvariantViolationError{DocumentID: id, From: current, To: outcome}
}
