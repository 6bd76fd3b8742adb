// Package message contains direct profile-to-profile messages.
package message

import (
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// Limits mirrored by the storage schema.
const (
	MaxTitleLen = 64
	MaxTextLen  = 1024
)

// Message is a direct message between two profiles.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Title      string
	Text       string
	IsRead     bool
	CreatedAt  time.Time
}

// New validates and builds a message.
func New(id, senderID, receiverID, title, text string, now time.Time) (*Message, error) {
	if id == "" || senderID == "" || receiverID == "" {
		return nil, shared.WrapError("message", "New", shared.ErrInvalidID, "id, sender id and receiver id are required", nil)
	}
	if title == "" || text == "" {
		return nil, shared.WrapError("message", "New", shared.ErrEmptyValue, "title and text are required", nil)
	}
	if len(title) > MaxTitleLen || len(text) > MaxTextLen {
		return nil, shared.WrapError("message", "New", shared.ErrValueOutOfRange, "field exceeds storage limit", nil)
	}
	return &Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Title:      title,
		Text:       text,
		CreatedAt:  now,
	}, nil
}

// MarkRead flips the read flag. Idempotent.
func (m *Message) MarkRead() {
	m.IsRead = true
}
