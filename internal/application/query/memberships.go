package query

import (
	"context"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBERSHIP LISTINGS
// ══════════════════════════════════════════════════════════════════════════════

// ListSubscriptionsHandler lists the lessons a student is subscribed to.
type ListSubscriptionsHandler struct {
	memberships lesson.MembershipRepository
	lessons     lesson.Repository
}

// NewListSubscriptionsHandler creates a new ListSubscriptionsHandler.
func NewListSubscriptionsHandler(memberships lesson.MembershipRepository, lessons lesson.Repository) *ListSubscriptionsHandler {
	return &ListSubscriptionsHandler{memberships: memberships, lessons: lessons}
}

// Handle returns the student's subscribed lessons, newest subscription first.
func (h *ListSubscriptionsHandler) Handle(ctx context.Context, studentID string) ([]*lesson.Lesson, error) {
	ms, err := h.memberships.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]*lesson.Lesson, 0, len(ms))
	for _, m := range ms {
		l, err := h.lessons.GetByID(ctx, m.LessonID)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ListLessonStudentsHandler lists the students of one of the actor's lessons.
type ListLessonStudentsHandler struct {
	lessons     lesson.Repository
	memberships lesson.MembershipRepository
	profiles    profile.Repository
}

// NewListLessonStudentsHandler creates a new ListLessonStudentsHandler.
func NewListLessonStudentsHandler(
	lessons lesson.Repository,
	memberships lesson.MembershipRepository,
	profiles profile.Repository,
) *ListLessonStudentsHandler {
	return &ListLessonStudentsHandler{lessons: lessons, memberships: memberships, profiles: profiles}
}

// Handle returns the subscribed students. Only the lesson owner may look.
func (h *ListLessonStudentsHandler) Handle(ctx context.Context, actorID, lessonSlug string) ([]*profile.Profile, error) {
	l, err := h.lessons.GetBySlug(ctx, lessonSlug)
	if err != nil {
		return nil, err
	}
	if l.TeacherID != actorID {
		return nil, shared.ErrNotLessonOwner
	}

	ms, err := h.memberships.ListByLesson(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*profile.Profile, 0, len(ms))
	for _, m := range ms {
		p, err := h.profiles.GetByID(ctx, m.StudentID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
