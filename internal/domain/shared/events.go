package shared

import (
	"context"
	"time"
)

// EventKind identifies a domain lifecycle event that notification rules
// react to.
type EventKind string

const (
	EventMembershipCreated EventKind = "membership.created"
	EventMembershipDeleted EventKind = "membership.deleted"
	EventRoomOpened        EventKind = "room.opened"
	EventCommentCreated    EventKind = "comment.created"
	EventBillCreated       EventKind = "bill.created"
	EventBillPaid          EventKind = "bill.paid"
	EventBillDeleted       EventKind = "bill.deleted"
)

// IsValid reports whether the kind is one of the known event kinds.
func (k EventKind) IsValid() bool {
	switch k {
	case EventMembershipCreated, EventMembershipDeleted, EventRoomOpened,
		EventCommentCreated, EventBillCreated, EventBillPaid, EventBillDeleted:
		return true
	}
	return false
}

// Party identifies one side of an event: the teacher or the student involved.
type Party struct {
	// ProfileID is the ID of the profile.
	ProfileID string

	// Username is the unique login name, used for addressing broadcasts.
	Username string

	// DisplayName is the human-readable name used in notification texts.
	DisplayName string
}

// Event is a flat descriptor of something that happened between a teacher
// and a student around a lesson. Commands build one after a successful
// mutation and hand it to the notification emitter in the same transaction.
type Event struct {
	// Kind is what happened.
	Kind EventKind

	// Teacher is the lesson owner side of the event.
	Teacher Party

	// Student is the subscriber side of the event.
	Student Party

	// LessonTitle names the lesson the event is about.
	LessonTitle string

	// Data carries a kind-specific payload: the room key for
	// EventRoomOpened, the bill amount for billing events, empty otherwise.
	Data string

	// OccurredAt is when the event happened (UTC).
	OccurredAt time.Time
}

// EventEmitter reacts to a domain event, typically by writing notifications.
// Commands call it synchronously inside their transaction.
type EventEmitter interface {
	Emit(ctx context.Context, ev Event) error
}
