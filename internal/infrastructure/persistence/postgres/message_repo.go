package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/message"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MessageRepository implements message.Repository for PostgreSQL.
type MessageRepository struct {
	conn *Connection
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(conn *Connection) *MessageRepository {
	return &MessageRepository{conn: conn}
}

// Create creates a message.
func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, title, text, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		m.ID, m.SenderID, m.ReceiverID, m.Title, m.Text, m.IsRead, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID returns a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*message.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, title, text, is_read, created_at
		FROM messages WHERE id = $1
	`
	return r.scanMessage(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// ListByReceiver returns a profile's inbox, newest first.
func (r *MessageRepository) ListByReceiver(ctx context.Context, receiverID string) ([]*message.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, title, text, is_read, created_at
		FROM messages WHERE receiver_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []*message.Message
	for rows.Next() {
		m, err := r.scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag on the receiver's own message.
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrMessageNotFound
	}
	return nil
}

// scanMessage scans one message row.
func (r *MessageRepository) scanMessage(row pgx.Row) (*message.Message, error) {
	var m message.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Title, &m.Text, &m.IsRead, &m.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	return &m, nil
}
