package lesson

import (
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// Membership records that a student is subscribed to a lesson. It exists or
// it does not; there is no intermediate state. At most one membership may
// exist per (lesson, student) pair.
type Membership struct {
	ID        string
	LessonID  string
	StudentID string
	CreatedAt time.Time
}

// NewMembership validates and builds a membership record.
func NewMembership(id, lessonID, studentID string, now time.Time) (*Membership, error) {
	if id == "" || lessonID == "" || studentID == "" {
		return nil, shared.WrapError("membership", "New", shared.ErrInvalidID, "id, lesson id and student id are required", nil)
	}
	return &Membership{
		ID:        id,
		LessonID:  lessonID,
		StudentID: studentID,
		CreatedAt: now,
	}, nil
}
