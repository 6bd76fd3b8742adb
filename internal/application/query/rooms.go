// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/room"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROOM LOOKUPS
// A room is visible only to its two participants; anyone else holding the
// key is rejected. Closed rooms never match: a stale key behaves exactly
// like a key that never existed.
// ══════════════════════════════════════════════════════════════════════════════

// RoomView is a room together with the lesson it belongs to.
type RoomView struct {
	Room   *room.Room
	Lesson *lesson.Lesson
}

// RoomByKeyHandler resolves a room key for a participant.
type RoomByKeyHandler struct {
	rooms   room.Repository
	lessons lesson.Repository
}

// NewRoomByKeyHandler creates a new RoomByKeyHandler.
func NewRoomByKeyHandler(rooms room.Repository, lessons lesson.Repository) *RoomByKeyHandler {
	return &RoomByKeyHandler{rooms: rooms, lessons: lessons}
}

// Handle returns the open room with the key. A missing or closed room is
// shared.ErrRoomNotFound; a viewer who is neither the teacher nor the
// student gets shared.ErrNotRoomMember.
func (h *RoomByKeyHandler) Handle(ctx context.Context, viewerID, key string) (*RoomView, error) {
	if !room.ValidKey(key) {
		return nil, shared.ErrRoomNotFound
	}

	r, err := h.rooms.GetOpenByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	l, err := h.lessons.GetByID(ctx, r.LessonID)
	if err != nil {
		return nil, err
	}
	if viewerID != r.StudentID && viewerID != l.TeacherID {
		return nil, shared.ErrNotRoomMember
	}
	return &RoomView{Room: r, Lesson: l}, nil
}

// RoomForLessonHandler finds an open room for a lesson. A student looks up
// their own room after receiving an invite; the lesson's teacher names the
// student whose room they want.
type RoomForLessonHandler struct {
	lessons  lesson.Repository
	rooms    room.Repository
	profiles profile.Repository
}

// NewRoomForLessonHandler creates a new RoomForLessonHandler.
func NewRoomForLessonHandler(
	lessons lesson.Repository,
	rooms room.Repository,
	profiles profile.Repository,
) *RoomForLessonHandler {
	return &RoomForLessonHandler{lessons: lessons, rooms: rooms, profiles: profiles}
}

// Handle returns the open room between the lesson and a student, or
// shared.ErrRoomNotFound. For a student viewer the student side is the
// viewer and studentUsername is ignored; the lesson's teacher must pass
// studentUsername since they may have a room open per student.
func (h *RoomForLessonHandler) Handle(ctx context.Context, viewerID, lessonSlug, studentUsername string) (*RoomView, error) {
	l, err := h.lessons.GetBySlug(ctx, lessonSlug)
	if err != nil {
		return nil, err
	}

	studentID := viewerID
	if l.TeacherID == viewerID {
		if studentUsername == "" {
			return nil, shared.WrapError("room", "FindForLesson", shared.ErrEmptyValue,
				"student username is required when the teacher looks up a room", nil)
		}
		student, err := h.profiles.GetByUsername(ctx, studentUsername)
		if err != nil {
			return nil, err
		}
		studentID = student.ID
	}

	r, err := h.rooms.GetOpenByLessonStudent(ctx, l.ID, studentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrRoomNotFound
		}
		return nil, err
	}
	return &RoomView{Room: r, Lesson: l}, nil
}
