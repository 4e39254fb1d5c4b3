package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cognitext/cognitext/internal/models"
)

// MessagePage is one page of a cursor-paginated message listing, newest
// first. NextCursor is nil on the last page.
type MessagePage struct {
	Messages   []models.Message `json:"messages"`
	NextCursor *uuid.UUID       `json:"next_cursor,omitempty"`
}

// ListMessages returns up to limit messages for the document, newest first.
// cursor, when set, is the id of the last message of the previous page.
func (s *Store) ListMessages(ctx context.Context, documentID uuid.UUID, limit int, cursor *uuid.UUID) (*MessagePage, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, owner_id, is_user_message, text, created_at
		 FROM messages
		 WHERE document_id = $1
		   AND ($2::uuid IS NULL OR (created_at, id) < (SELECT created_at, id FROM messages WHERE id = $2))
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		documentID, cursor, limit+1,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.OwnerID, &m.IsUserMessage, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &MessagePage{Messages: msgs}
	if len(msgs) > limit {
		last := msgs[limit-1]
		page.Messages = msgs[:limit]
		page.NextCursor = &last.ID
	}
	return page, nil
}

// DeleteMessages removes every message referencing the document. Cleanup
// calls this before deleting the document row so no message ever outlives it.
func (s *Store) DeleteMessages(ctx context.Context, documentID uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM messages WHERE document_id = $1", documentID)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UserMessageCounts returns, per document, how many questions the owner has
// asked.
func (s *Store) UserMessageCounts(ctx context.Context, ownerID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := s.db.Query(ctx,
		`SELECT document_id, count(*) FROM messages
		 WHERE owner_id = $1 AND is_user_message
		 GROUP BY document_id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var docID uuid.UUID
		var n int64
		if err := rows.Scan(&docID, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[docID] = n
	}
	return counts, rows.Err()
}
