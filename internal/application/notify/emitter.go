// Package notify turns domain events into durable notifications and
// real-time broadcasts. It owns the full event-to-notification rule table;
// no other code creates notification rows.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/internal/domain/shared"
	"github.com/koreline/koreline-hub/pkg/logger"
)

// Emitter applies the notification rules to one event at a time. It is
// called synchronously by commands, inside the command's transaction, so a
// failed notification write rolls the whole operation back.
//
// Rules:
//
//	membership.created  -> SUBSCRIBE to the teacher (data: student username)
//	membership.deleted  -> TEACHER_UNSUBSCRIBE to the teacher
//	                       STUDENT_UNSUBSCRIBE to the student
//	room.opened         -> INVITE to the student (data: room key)
//	comment.created     -> COMMENT to the teacher
//	bill.created        -> NEW_BILL to the student
//	bill.paid           -> PAID_BILL to the teacher
//	bill.deleted        -> DELETE_BILL to the student
type Emitter struct {
	notifications notification.Repository
	broadcaster   notification.Broadcaster
	log           *logger.Logger

	newID func() string
	now   func() time.Time
}

// NewEmitter creates an emitter. A nil broadcaster disables real-time
// delivery; a nil logger falls back to the default.
func NewEmitter(repo notification.Repository, broadcaster notification.Broadcaster, log *logger.Logger) *Emitter {
	if broadcaster == nil {
		broadcaster = notification.NopBroadcaster{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Emitter{
		notifications: repo,
		broadcaster:   broadcaster,
		log:           log.With(logger.Component("notify.emitter")),
		newID:         uuid.NewString,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Emit creates the notification rows the event calls for and broadcasts
// each of them. Row creation errors propagate to the caller; broadcast
// errors are logged and swallowed.
func (e *Emitter) Emit(ctx context.Context, ev shared.Event) error {
	if !ev.Kind.IsValid() {
		return shared.WrapError("notify", "Emit", shared.ErrInvalidInput, fmt.Sprintf("unknown event kind %q", ev.Kind), nil)
	}

	for _, row := range e.rowsFor(ev) {
		n, err := notification.New(e.newID(), row.recipient.ProfileID, row.title, row.text, row.typ, row.data, e.now())
		if err != nil {
			return fmt.Errorf("emit %s: %w", ev.Kind, err)
		}
		if err := e.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("emit %s: %w", ev.Kind, err)
		}

		if err := e.broadcaster.Publish(ctx, row.recipient.Username, n); err != nil {
			e.log.Warn("realtime broadcast failed",
				logger.Username(row.recipient.Username),
				logger.String("type", string(n.Type)),
				logger.Err(err),
			)
		}
	}
	return nil
}

// row is one pending notification produced by a rule.
type row struct {
	recipient shared.Party
	typ       notification.Type
	title     string
	text      string
	data      string
}

// rowsFor is the rule table.
func (e *Emitter) rowsFor(ev shared.Event) []row {
	switch ev.Kind {
	case shared.EventMembershipCreated:
		return []row{{
			recipient: ev.Teacher,
			typ:       notification.TypeSubscribe,
			title:     "New student",
			text:      fmt.Sprintf("Student %s subscribed to your lesson %s.", ev.Student.DisplayName, ev.LessonTitle),
			data:      ev.Student.Username,
		}}

	case shared.EventMembershipDeleted:
		// Every deletion notifies both sides, whoever initiated it.
		return []row{
			{
				recipient: ev.Teacher,
				typ:       notification.TypeTeacherUnsubscribe,
				title:     "Student unsubscribed",
				text:      fmt.Sprintf("Student %s was unsubscribed from your lesson %s.", ev.Student.DisplayName, ev.LessonTitle),
			},
			{
				recipient: ev.Student,
				typ:       notification.TypeStudentUnsubscribe,
				title:     "Removed from lesson",
				text:      fmt.Sprintf("You were unsubscribed from the lesson %s.", ev.LessonTitle),
			},
		}

	case shared.EventRoomOpened:
		return []row{{
			recipient: ev.Student,
			typ:       notification.TypeInvite,
			title:     "Conversation invite",
			text:      fmt.Sprintf("Teacher %s invited you to a conversation about the lesson %s.", ev.Teacher.DisplayName, ev.LessonTitle),
			data:      ev.Data,
		}}

	case shared.EventCommentCreated:
		return []row{{
			recipient: ev.Teacher,
			typ:       notification.TypeComment,
			title:     "New comment",
			text:      fmt.Sprintf("User %s left you a review.", ev.Student.DisplayName),
		}}

	case shared.EventBillCreated:
		return []row{{
			recipient: ev.Student,
			typ:       notification.TypeNewBill,
			title:     "New bill",
			text:      fmt.Sprintf("You were billed for the lesson %s.", ev.LessonTitle),
			data:      ev.Data,
		}}

	case shared.EventBillPaid:
		return []row{{
			recipient: ev.Teacher,
			typ:       notification.TypePaidBill,
			title:     "Bill paid",
			text:      fmt.Sprintf("Student %s paid the bill for the lesson %s.", ev.Student.DisplayName, ev.LessonTitle),
			data:      ev.Data,
		}}

	case shared.EventBillDeleted:
		return []row{{
			recipient: ev.Student,
			typ:       notification.TypeDeleteBill,
			title:     "Bill removed",
			text:      fmt.Sprintf("The bill for the lesson %s was withdrawn.", ev.LessonTitle),
		}}
	}
	return nil
}
