package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

func TestJoinLesson(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewJoinLessonHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	res, err := h.Handle(ctx, JoinLessonCommand{StudentID: w.student.ID, LessonSlug: "algebra"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.MembershipID)

	exists, err := w.memberships.Exists(ctx, w.lesson.ID, w.student.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, w.emitter.events, 1)
	ev := w.emitter.events[0]
	assert.Equal(t, shared.EventMembershipCreated, ev.Kind)
	assert.Equal(t, w.teacher.ID, ev.Teacher.ProfileID)
	assert.Equal(t, w.student.ID, ev.Student.ProfileID)
	assert.Equal(t, "Algebra", ev.LessonTitle)
}

func TestJoinLessonOwnLesson(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewJoinLessonHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, JoinLessonCommand{StudentID: w.teacher.ID, LessonSlug: "algebra"})
	assert.ErrorIs(t, err, shared.ErrOwnLessonJoin)
	assert.Empty(t, w.emitter.events)
}

func TestJoinLessonTwice(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewJoinLessonHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, JoinLessonCommand{StudentID: w.student.ID, LessonSlug: "algebra"})
	require.NoError(t, err)

	_, err = h.Handle(ctx, JoinLessonCommand{StudentID: w.student.ID, LessonSlug: "algebra"})
	assert.ErrorIs(t, err, shared.ErrAlreadyMember)
	assert.Len(t, w.emitter.events, 1)
}

func TestJoinLessonUnknownSlug(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewJoinLessonHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, JoinLessonCommand{StudentID: w.student.ID, LessonSlug: "no-such-lesson"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLeaveLesson(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewLeaveLessonHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	err := h.Handle(ctx, LeaveLessonCommand{StudentID: w.student.ID, LessonSlug: "algebra"})
	require.NoError(t, err)

	exists, err := w.memberships.Exists(ctx, w.lesson.ID, w.student.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, []shared.EventKind{shared.EventMembershipDeleted}, w.emitter.kinds())
}

func TestLeaveLessonNotSubscribed(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewLeaveLessonHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	err := h.Handle(ctx, LeaveLessonCommand{StudentID: w.student.ID, LessonSlug: "algebra"})
	assert.ErrorIs(t, err, shared.ErrMembershipNotFound)
	assert.Empty(t, w.emitter.events)
}

func TestUnsubscribeStudent(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewUnsubscribeStudentHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	err := h.Handle(ctx, UnsubscribeStudentCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	})
	require.NoError(t, err)

	exists, err := w.memberships.Exists(ctx, w.lesson.ID, w.student.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Teacher-initiated removal emits the same event as a voluntary leave.
	assert.Equal(t, []shared.EventKind{shared.EventMembershipDeleted}, w.emitter.kinds())
}

func TestUnsubscribeStudentNotOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewUnsubscribeStudentHandler(w.lessons, w.memberships, w.profiles, w.emitter, w.tx)

	err := h.Handle(ctx, UnsubscribeStudentCommand{
		ActorID:         w.student.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
	})
	assert.ErrorIs(t, err, shared.ErrNotLessonOwner)
}
