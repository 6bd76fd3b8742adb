package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreline/koreline-hub/internal/domain/room"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

func TestOpenRoom(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewOpenRoomHandler(w.lessons, w.memberships, w.rooms, w.profiles, w.emitter, w.tx)

	res, err := h.Handle(ctx, OpenRoomCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	})
	require.NoError(t, err)
	assert.False(t, res.AlreadyOpen)
	assert.True(t, res.Room.IsOpen)
	assert.True(t, room.ValidKey(res.Room.Key))

	// The invite carries the room key so the client can join directly.
	require.Len(t, w.emitter.events, 1)
	ev := w.emitter.events[0]
	assert.Equal(t, shared.EventRoomOpened, ev.Kind)
	assert.Equal(t, res.Room.Key, ev.Data)
	assert.Equal(t, w.student.ID, ev.Student.ProfileID)
}

func TestOpenRoomIdempotent(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewOpenRoomHandler(w.lessons, w.memberships, w.rooms, w.profiles, w.emitter, w.tx)

	cmd := OpenRoomCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	}

	first, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	second, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, second.AlreadyOpen)
	assert.Equal(t, first.Room.Key, second.Room.Key)

	// No second invite for the reopen.
	assert.Len(t, w.emitter.events, 1)
}

func TestOpenRoomNotOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewOpenRoomHandler(w.lessons, w.memberships, w.rooms, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, OpenRoomCommand{
		ActorID:         w.student.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	})
	assert.ErrorIs(t, err, shared.ErrNotRoomTeacher)
}

func TestOpenRoomUnknownStudentBeatsOwnership(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewOpenRoomHandler(w.lessons, w.memberships, w.rooms, w.profiles, w.emitter, w.tx)

	// The student handle is resolved first, so even a non-owner naming a
	// nonexistent student hears "no such profile", not "not your lesson".
	_, err := h.Handle(ctx, OpenRoomCommand{
		ActorID:         w.student.ID,
		LessonSlug:      "algebra",
		StudentUsername: "nobody",
	})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func TestOpenRoomNotSubscribed(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewOpenRoomHandler(w.lessons, w.memberships, w.rooms, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, OpenRoomCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	})
	assert.ErrorIs(t, err, shared.ErrMembershipNotFound)
	assert.Empty(t, w.emitter.events)
}

func TestCloseRooms(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)

	open := NewOpenRoomHandler(w.lessons, w.memberships, w.rooms, w.profiles, w.emitter, w.tx)
	opened, err := open.Handle(ctx, OpenRoomCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	})
	require.NoError(t, err)

	h := NewCloseRoomsHandler(w.rooms, w.profiles)
	res, err := h.Handle(ctx, CloseRoomsCommand{ActorID: w.teacher.ID, StudentUsername: w.student.Username})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Closed)
	assert.False(t, res.Skipped)

	// Closed rooms are no longer addressable by key.
	_, err = w.rooms.GetOpenByKey(ctx, opened.Room.Key)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCloseRoomsNonTeacherIsNoOp(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewCloseRoomsHandler(w.rooms, w.profiles)

	res, err := h.Handle(ctx, CloseRoomsCommand{ActorID: w.student.ID, StudentUsername: w.teacher.Username})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 0, res.Closed)
}

func TestCloseRoomsUnknownStudent(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewCloseRoomsHandler(w.rooms, w.profiles)

	res, err := h.Handle(ctx, CloseRoomsCommand{ActorID: w.teacher.ID, StudentUsername: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Closed)
	assert.False(t, res.Skipped)
}
