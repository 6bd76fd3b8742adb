// Package notification contains durable in-app notifications. Rows are
// created only by the notification emitter in reaction to domain events;
// nothing else writes to this store.
package notification

import (
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// Type classifies a notification for the client UI.
type Type string

const (
	// TypeInvite tells a student a teacher opened a conversation room.
	// Data carries the room key.
	TypeInvite Type = "INVITE"

	// TypeSubscribe tells a teacher a student subscribed to their lesson.
	// Data carries the student's username.
	TypeSubscribe Type = "SUBSCRIBE"

	// TypeTeacherUnsubscribe tells a teacher a student left their lesson.
	TypeTeacherUnsubscribe Type = "TEACHER_UNSUBSCRIBE"

	// TypeStudentUnsubscribe tells a student they are no longer subscribed.
	TypeStudentUnsubscribe Type = "STUDENT_UNSUBSCRIBE"

	// TypeComment tells a teacher someone rated them.
	TypeComment Type = "COMMENT"

	// TypeNewBill tells a student a bill was issued to them.
	TypeNewBill Type = "NEW_BILL"

	// TypePaidBill tells a teacher a bill was paid.
	TypePaidBill Type = "PAID_BILL"

	// TypeDeleteBill tells a student a pending bill was withdrawn.
	TypeDeleteBill Type = "DELETE_BILL"
)

// IsValid reports whether the type is a known notification type.
func (t Type) IsValid() bool {
	switch t {
	case TypeInvite, TypeSubscribe, TypeTeacherUnsubscribe, TypeStudentUnsubscribe,
		TypeComment, TypeNewBill, TypePaidBill, TypeDeleteBill:
		return true
	}
	return false
}

// Limits mirrored by the storage schema.
const (
	MaxTitleLen = 128
	MaxTextLen  = 255
	MaxDataLen  = 64
)

// Notification is a durable message addressed to one profile.
type Notification struct {
	ID     string
	UserID string
	Title  string
	Text   string
	Type   Type

	// Data is an optional machine-readable payload the client acts on,
	// such as a room key for invites.
	Data string

	IsRead    bool
	CreatedAt time.Time
}

// New validates and builds a notification.
func New(id, userID, title, text string, typ Type, data string, now time.Time) (*Notification, error) {
	if id == "" || userID == "" {
		return nil, shared.WrapError("notification", "New", shared.ErrInvalidID, "id and user id are required", nil)
	}
	if title == "" || text == "" {
		return nil, shared.WrapError("notification", "New", shared.ErrEmptyValue, "title and text are required", nil)
	}
	if !typ.IsValid() {
		return nil, shared.WrapError("notification", "New", shared.ErrInvalidInput, "unknown notification type", nil)
	}
	if len(title) > MaxTitleLen || len(text) > MaxTextLen || len(data) > MaxDataLen {
		return nil, shared.WrapError("notification", "New", shared.ErrValueOutOfRange, "field exceeds storage limit", nil)
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Text:      text,
		Type:      typ,
		Data:      data,
		CreatedAt: now,
	}, nil
}

// MarkRead flips the read flag. Idempotent.
func (n *Notification) MarkRead() {
	n.IsRead = true
}
