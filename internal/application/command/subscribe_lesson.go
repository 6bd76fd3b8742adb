package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOIN LESSON COMMAND
// Subscribes a student to a lesson. At most one membership may exist per
// (lesson, student) pair; a concurrent duplicate join loses with a conflict.
// The teacher is notified inside the same transaction.
// ══════════════════════════════════════════════════════════════════════════════

// JoinLessonCommand subscribes the acting student to a lesson.
type JoinLessonCommand struct {
	// StudentID is the acting profile.
	StudentID string

	// LessonSlug identifies the lesson.
	LessonSlug string
}

// JoinLessonResult contains the created membership.
type JoinLessonResult struct {
	MembershipID string
	CreatedAt    time.Time
}

// JoinLessonHandler handles the JoinLessonCommand.
type JoinLessonHandler struct {
	lessons     lesson.Repository
	memberships lesson.MembershipRepository
	profiles    profile.Repository
	emitter     shared.EventEmitter
	tx          shared.TxManager
}

// NewJoinLessonHandler creates a new JoinLessonHandler.
func NewJoinLessonHandler(
	lessons lesson.Repository,
	memberships lesson.MembershipRepository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *JoinLessonHandler {
	return &JoinLessonHandler{
		lessons:     lessons,
		memberships: memberships,
		profiles:    profiles,
		emitter:     emitter,
		tx:          tx,
	}
}

// Handle executes the join lesson command.
func (h *JoinLessonHandler) Handle(ctx context.Context, cmd JoinLessonCommand) (*JoinLessonResult, error) {
	l, err := h.lessons.GetBySlug(ctx, cmd.LessonSlug)
	if err != nil {
		return nil, err
	}
	if l.TeacherID == cmd.StudentID {
		return nil, shared.ErrOwnLessonJoin
	}

	student, err := h.profiles.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}
	teacher, err := h.profiles.GetByID(ctx, l.TeacherID)
	if err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique index still decides under concurrency.
	exists, err := h.memberships.Exists(ctx, l.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyMember
	}

	now := time.Now().UTC()
	m, err := lesson.NewMembership(uuid.NewString(), l.ID, student.ID, now)
	if err != nil {
		return nil, err
	}

	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.memberships.Create(ctx, m); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:        shared.EventMembershipCreated,
			Teacher:     teacher.Party(),
			Student:     student.Party(),
			LessonTitle: l.Title,
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	return &JoinLessonResult{MembershipID: m.ID, CreatedAt: m.CreatedAt}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LEAVE LESSON COMMAND
// The student removes their own membership. Both sides are notified, same
// as when the teacher removes the student.
// ══════════════════════════════════════════════════════════════════════════════

// LeaveLessonCommand unsubscribes the acting student from a lesson.
type LeaveLessonCommand struct {
	StudentID  string
	LessonSlug string
}

// LeaveLessonHandler handles the LeaveLessonCommand.
type LeaveLessonHandler struct {
	lessons     lesson.Repository
	memberships lesson.MembershipRepository
	profiles    profile.Repository
	emitter     shared.EventEmitter
	tx          shared.TxManager
}

// NewLeaveLessonHandler creates a new LeaveLessonHandler.
func NewLeaveLessonHandler(
	lessons lesson.Repository,
	memberships lesson.MembershipRepository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *LeaveLessonHandler {
	return &LeaveLessonHandler{
		lessons:     lessons,
		memberships: memberships,
		profiles:    profiles,
		emitter:     emitter,
		tx:          tx,
	}
}

// Handle executes the leave lesson command.
func (h *LeaveLessonHandler) Handle(ctx context.Context, cmd LeaveLessonCommand) error {
	l, err := h.lessons.GetBySlug(ctx, cmd.LessonSlug)
	if err != nil {
		return err
	}
	student, err := h.profiles.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return err
	}
	teacher, err := h.profiles.GetByID(ctx, l.TeacherID)
	if err != nil {
		return err
	}

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.memberships.Delete(ctx, l.ID, student.ID); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:        shared.EventMembershipDeleted,
			Teacher:     teacher.Party(),
			Student:     student.Party(),
			LessonTitle: l.Title,
			OccurredAt:  time.Now().UTC(),
		})
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// UNSUBSCRIBE STUDENT COMMAND
// The teacher removes a student from their own lesson. Emits the same pair
// of notifications as a voluntary leave.
// ══════════════════════════════════════════════════════════════════════════════

// UnsubscribeStudentCommand removes a student from the actor's lesson.
type UnsubscribeStudentCommand struct {
	// ActorID must own the lesson.
	ActorID string

	LessonSlug      string
	StudentUsername string
}

// UnsubscribeStudentHandler handles the UnsubscribeStudentCommand.
type UnsubscribeStudentHandler struct {
	lessons     lesson.Repository
	memberships lesson.MembershipRepository
	profiles    profile.Repository
	emitter     shared.EventEmitter
	tx          shared.TxManager
}

// NewUnsubscribeStudentHandler creates a new UnsubscribeStudentHandler.
func NewUnsubscribeStudentHandler(
	lessons lesson.Repository,
	memberships lesson.MembershipRepository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *UnsubscribeStudentHandler {
	return &UnsubscribeStudentHandler{
		lessons:     lessons,
		memberships: memberships,
		profiles:    profiles,
		emitter:     emitter,
		tx:          tx,
	}
}

// Handle executes the unsubscribe student command.
func (h *UnsubscribeStudentHandler) Handle(ctx context.Context, cmd UnsubscribeStudentCommand) error {
	l, err := h.lessons.GetBySlug(ctx, cmd.LessonSlug)
	if err != nil {
		return err
	}
	if l.TeacherID != cmd.ActorID {
		return shared.ErrNotLessonOwner
	}

	student, err := h.profiles.GetByUsername(ctx, cmd.StudentUsername)
	if err != nil {
		return err
	}
	teacher, err := h.profiles.GetByID(ctx, l.TeacherID)
	if err != nil {
		return err
	}

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.memberships.Delete(ctx, l.ID, student.ID); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:        shared.EventMembershipDeleted,
			Teacher:     teacher.Party(),
			Student:     student.Party(),
			LessonTitle: l.Title,
			OccurredAt:  time.Now().UTC(),
		})
	})
}
