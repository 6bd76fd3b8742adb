package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

func TestCreateLesson(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewCreateLessonHandler(w.lessons, w.profiles, w.tx)

	res, err := h.Handle(ctx, CreateLessonCommand{
		TeacherID:        w.student.ID,
		Title:            "Conversational English",
		SubjectName:      "English",
		StageName:        "Beginner",
		ShortDescription: "Small talk practice",
		Price:            15,
	})
	require.NoError(t, err)
	assert.Equal(t, "conversational-english", res.Lesson.Slug)
	assert.Equal(t, "English", res.Lesson.SubjectName)
	assert.Equal(t, "Beginner", res.Lesson.StageName)

	// First publication turns the author into a teacher.
	assert.True(t, res.BecameTeacher)
	author, err := w.profiles.GetByID(ctx, w.student.ID)
	require.NoError(t, err)
	assert.True(t, author.CanTeach)
}

func TestCreateLessonSlugCollision(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewCreateLessonHandler(w.lessons, w.profiles, w.tx)

	// The world already holds a lesson with slug "algebra".
	res, err := h.Handle(ctx, CreateLessonCommand{
		TeacherID:   w.teacher.ID,
		Title:       "Algebra",
		SubjectName: "Mathematics",
		StageName:   "Advanced",
		Price:       20,
	})
	require.NoError(t, err)
	assert.Equal(t, "algebra-1", res.Lesson.Slug)

	// An established teacher stays one.
	assert.False(t, res.BecameTeacher)
}

func TestCreateLessonUnknownSubject(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewCreateLessonHandler(w.lessons, w.profiles, w.tx)

	_, err := h.Handle(ctx, CreateLessonCommand{
		TeacherID:   w.teacher.ID,
		Title:       "Alchemy",
		SubjectName: "Alchemy",
		StageName:   "Beginner",
	})
	assert.ErrorIs(t, err, shared.ErrSubjectNotFound)
}

func TestCreateLessonValidation(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewCreateLessonHandler(w.lessons, w.profiles, w.tx)

	_, err := h.Handle(ctx, CreateLessonCommand{
		TeacherID:   w.teacher.ID,
		Title:       "   ",
		SubjectName: "Mathematics",
		StageName:   "Beginner",
	})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = h.Handle(ctx, CreateLessonCommand{
		TeacherID:   w.teacher.ID,
		Title:       "Algebra",
		SubjectName: "Mathematics",
		StageName:   "Beginner",
		Price:       -5,
	})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}

func TestUpdateLessonRetitleRegeneratesSlug(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewUpdateLessonHandler(w.lessons, w.profiles, w.tx)

	title := "Linear Algebra"
	updated, err := h.Handle(ctx, UpdateLessonCommand{
		ActorID: w.teacher.ID,
		Slug:    "algebra",
		Title:   &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", updated.Title)
	assert.Equal(t, "linear-algebra", updated.Slug)

	// The old slug is free again.
	_, err = w.lessons.GetBySlug(ctx, "algebra")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateLessonNotOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewUpdateLessonHandler(w.lessons, w.profiles, w.tx)

	price := 99
	_, err := h.Handle(ctx, UpdateLessonCommand{
		ActorID: w.student.ID,
		Slug:    "algebra",
		Price:   &price,
	})
	assert.ErrorIs(t, err, shared.ErrNotLessonOwner)
}

func TestDeleteLesson(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewDeleteLessonHandler(w.lessons)

	err := h.Handle(ctx, DeleteLessonCommand{ActorID: w.teacher.ID, Slug: "algebra"})
	require.NoError(t, err)

	_, err = w.lessons.GetBySlug(ctx, "algebra")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteLessonNotOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewDeleteLessonHandler(w.lessons)

	err := h.Handle(ctx, DeleteLessonCommand{ActorID: w.student.ID, Slug: "algebra"})
	assert.ErrorIs(t, err, shared.ErrNotLessonOwner)
}
