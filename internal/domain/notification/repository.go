package notification

import "context"

// Repository persists notifications.
type Repository interface {
	// Create stores a notification.
	Create(ctx context.Context, n *Notification) error

	// GetByID returns a notification or shared.ErrNotificationNotFound.
	GetByID(ctx context.Context, id string) (*Notification, error)

	// ListByUser returns the profile's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)

	// MarkRead flips the read flag on one notification. Returns
	// shared.ErrNotificationNotFound when the row does not exist or
	// belongs to another profile.
	MarkRead(ctx context.Context, id, userID string) error
}
