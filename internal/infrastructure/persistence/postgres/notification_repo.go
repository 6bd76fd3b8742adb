package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create creates a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, text, type, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		n.ID, n.UserID, n.Title, n.Text, string(n.Type), n.Data, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID returns a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	query := `
		SELECT id, user_id, title, text, type, data, is_read, created_at
		FROM notifications WHERE id = $1
	`
	return r.scanNotification(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// ListByUser returns the profile's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, title, text, type, data, is_read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag on the recipient's own notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// scanNotification scans one notification row.
func (r *NotificationRepository) scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var typ string
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Text, &typ, &n.Data, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	n.Type = notification.Type(typ)
	return &n, nil
}
