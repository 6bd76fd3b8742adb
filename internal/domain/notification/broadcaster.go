package notification

import "context"

// Broadcaster pushes a freshly created notification to the recipient's
// real-time channel. Delivery is best effort: the durable row is the source
// of truth and a failed broadcast must never fail the operation that
// produced the notification.
type Broadcaster interface {
	Publish(ctx context.Context, username string, n *Notification) error
}

// NopBroadcaster discards broadcasts. Used in tests and when the real-time
// backend is disabled.
type NopBroadcaster struct{}

// Publish implements Broadcaster.
func (NopBroadcaster) Publish(ctx context.Context, username string, n *Notification) error {
	return nil
}
