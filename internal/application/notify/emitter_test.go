package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

type memNotificationRepo struct {
	rows []*notification.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	cp := *n
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	for _, n := range r.rows {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			n.MarkRead()
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

type recordingBroadcaster struct {
	channels []string
	err      error
}

func (b *recordingBroadcaster) Publish(_ context.Context, username string, _ *notification.Notification) error {
	b.channels = append(b.channels, username)
	return b.err
}

func event(kind shared.EventKind) shared.Event {
	return shared.Event{
		Kind:        kind,
		Teacher:     shared.Party{ProfileID: "teacher1", Username: "boris", DisplayName: "Boris Pak"},
		Student:     shared.Party{ProfileID: "student1", Username: "alice", DisplayName: "Alice Kim"},
		LessonTitle: "Algebra",
		Data:        "payload",
		OccurredAt:  time.Now().UTC(),
	}
}

func TestEmitRules(t *testing.T) {
	cases := []struct {
		kind       shared.EventKind
		recipients []string // profile IDs, in emit order
		types      []notification.Type
	}{
		{shared.EventMembershipCreated, []string{"teacher1"}, []notification.Type{notification.TypeSubscribe}},
		{shared.EventMembershipDeleted, []string{"teacher1", "student1"}, []notification.Type{notification.TypeTeacherUnsubscribe, notification.TypeStudentUnsubscribe}},
		{shared.EventRoomOpened, []string{"student1"}, []notification.Type{notification.TypeInvite}},
		{shared.EventCommentCreated, []string{"teacher1"}, []notification.Type{notification.TypeComment}},
		{shared.EventBillCreated, []string{"student1"}, []notification.Type{notification.TypeNewBill}},
		{shared.EventBillPaid, []string{"teacher1"}, []notification.Type{notification.TypePaidBill}},
		{shared.EventBillDeleted, []string{"student1"}, []notification.Type{notification.TypeDeleteBill}},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			repo := &memNotificationRepo{}
			bc := &recordingBroadcaster{}
			e := NewEmitter(repo, bc, nil)

			require.NoError(t, e.Emit(context.Background(), event(tc.kind)))

			require.Len(t, repo.rows, len(tc.recipients))
			for i, n := range repo.rows {
				assert.Equal(t, tc.recipients[i], n.UserID)
				assert.Equal(t, tc.types[i], n.Type)
				assert.False(t, n.IsRead)
			}
			// Every stored row was also broadcast.
			assert.Len(t, bc.channels, len(tc.recipients))
		})
	}
}

func TestEmitDataPayloads(t *testing.T) {
	repo := &memNotificationRepo{}
	e := NewEmitter(repo, nil, nil)
	ctx := context.Background()

	// The invite carries the room key.
	ev := event(shared.EventRoomOpened)
	ev.Data = "0123456789abcdef0123456789abcdef"
	require.NoError(t, e.Emit(ctx, ev))
	assert.Equal(t, "0123456789abcdef0123456789abcdef", repo.rows[0].Data)

	// The subscribe notification carries the student's username.
	require.NoError(t, e.Emit(ctx, event(shared.EventMembershipCreated)))
	assert.Equal(t, "alice", repo.rows[1].Data)
}

func TestEmitUnknownKind(t *testing.T) {
	repo := &memNotificationRepo{}
	e := NewEmitter(repo, nil, nil)

	err := e.Emit(context.Background(), event(shared.EventKind("something.else")))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, repo.rows)
}

func TestEmitBroadcastFailureIsNotFatal(t *testing.T) {
	repo := &memNotificationRepo{}
	bc := &recordingBroadcaster{err: errors.New("redis is down")}
	e := NewEmitter(repo, bc, nil)

	// The durable row is the source of truth; a dead broadcast channel
	// must not fail the emit.
	err := e.Emit(context.Background(), event(shared.EventMembershipCreated))
	assert.NoError(t, err)
	assert.Len(t, repo.rows, 1)
}

func TestEmitBroadcastAddressing(t *testing.T) {
	repo := &memNotificationRepo{}
	bc := &recordingBroadcaster{}
	e := NewEmitter(repo, bc, nil)

	require.NoError(t, e.Emit(context.Background(), event(shared.EventMembershipDeleted)))

	// Broadcasts address usernames, not profile IDs.
	assert.Equal(t, []string{"boris", "alice"}, bc.channels)
}
