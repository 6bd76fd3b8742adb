package room

import (
	"context"
	"time"
)

// Repository persists conversation rooms.
type Repository interface {
	// Create stores a new open room. Returns shared.ErrRoomKeyTaken when
	// the key collides and shared.ErrRoomOpen when an open room already
	// exists for the (lesson, student) pair.
	Create(ctx context.Context, r *Room) error

	// GetOpenByKey returns the open room with this key or
	// shared.ErrRoomNotFound. Closed rooms never match.
	GetOpenByKey(ctx context.Context, key string) (*Room, error)

	// GetOpenByLessonStudent returns the open room for the pair or
	// shared.ErrRoomNotFound.
	GetOpenByLessonStudent(ctx context.Context, lessonID, studentID string) (*Room, error)

	// CloseAllForTeacherStudent closes every open room between any of the
	// teacher's lessons and the given student, stamping closedAt. Returns
	// how many rooms were closed.
	CloseAllForTeacherStudent(ctx context.Context, teacherID, studentID string, closedAt time.Time) (int, error)
}
