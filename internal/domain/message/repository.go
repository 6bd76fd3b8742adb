package message

import "context"

// Repository persists direct messages.
type Repository interface {
	// Create stores a message.
	Create(ctx context.Context, m *Message) error

	// GetByID returns a message or shared.ErrMessageNotFound.
	GetByID(ctx context.Context, id string) (*Message, error)

	// ListByReceiver returns a profile's inbox, newest first.
	ListByReceiver(ctx context.Context, receiverID string) ([]*Message, error)

	// MarkRead flips the read flag on one message. Returns
	// shared.ErrMessageNotFound when the row does not exist or belongs to
	// another inbox.
	MarkRead(ctx context.Context, id, receiverID string) error
}
