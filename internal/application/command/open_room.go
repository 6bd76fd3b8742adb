package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/room"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// OPEN ROOM COMMAND
// The teacher opens a conversation room towards one subscribed student.
// At most one open room may exist per (lesson, student) pair: opening when
// one is already open returns the existing room instead of a second one.
// The student is invited via a notification carrying the room key.
// ══════════════════════════════════════════════════════════════════════════════

// OpenRoomCommand opens a room for a lesson and one of its students.
type OpenRoomCommand struct {
	// ActorID must own the lesson.
	ActorID string

	LessonSlug      string
	StudentUsername string
}

// OpenRoomResult contains the open room.
type OpenRoomResult struct {
	Room *room.Room

	// AlreadyOpen is true when an existing open room was returned instead
	// of a new one being created.
	AlreadyOpen bool
}

// OpenRoomHandler handles the OpenRoomCommand.
type OpenRoomHandler struct {
	lessons     lesson.Repository
	memberships lesson.MembershipRepository
	rooms       room.Repository
	profiles    profile.Repository
	emitter     shared.EventEmitter
	tx          shared.TxManager
}

// NewOpenRoomHandler creates a new OpenRoomHandler.
func NewOpenRoomHandler(
	lessons lesson.Repository,
	memberships lesson.MembershipRepository,
	rooms room.Repository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *OpenRoomHandler {
	return &OpenRoomHandler{
		lessons:     lessons,
		memberships: memberships,
		rooms:       rooms,
		profiles:    profiles,
		emitter:     emitter,
		tx:          tx,
	}
}

// Handle executes the open room command. The student handle and the lesson
// are resolved before ownership is judged, so a caller naming a nonexistent
// student or lesson learns that rather than being told off as a non-owner.
func (h *OpenRoomHandler) Handle(ctx context.Context, cmd OpenRoomCommand) (*OpenRoomResult, error) {
	student, err := h.profiles.GetByUsername(ctx, cmd.StudentUsername)
	if err != nil {
		return nil, err
	}

	l, err := h.lessons.GetBySlug(ctx, cmd.LessonSlug)
	if err != nil {
		return nil, err
	}
	if l.TeacherID != cmd.ActorID {
		return nil, shared.ErrNotRoomTeacher
	}

	teacher, err := h.profiles.GetByID(ctx, l.TeacherID)
	if err != nil {
		return nil, err
	}

	subscribed, err := h.memberships.Exists(ctx, l.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if !subscribed {
		return nil, shared.ErrMembershipNotFound
	}

	// Reopen is idempotent: hand back the room that is already open.
	if existing, err := h.rooms.GetOpenByLessonStudent(ctx, l.ID, student.ID); err == nil {
		return &OpenRoomResult{Room: existing, AlreadyOpen: true}, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	r, err := h.createRoom(ctx, l, teacher, student)
	if err != nil {
		// A concurrent open won the race; return its room.
		if errors.Is(err, shared.ErrRoomOpen) {
			existing, lookupErr := h.rooms.GetOpenByLessonStudent(ctx, l.ID, student.ID)
			if lookupErr != nil {
				return nil, err
			}
			return &OpenRoomResult{Room: existing, AlreadyOpen: true}, nil
		}
		return nil, err
	}

	return &OpenRoomResult{Room: r}, nil
}

// createRoom creates the room and the invite in one transaction, retrying
// once with a fresh key on a key collision.
func (h *OpenRoomHandler) createRoom(ctx context.Context, l *lesson.Lesson, teacher, student *profile.Profile) (*room.Room, error) {
	var r *room.Room

	attempt := func() error {
		key, err := room.GenerateKey()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		r, err = room.NewRoom(uuid.NewString(), l.ID, student.ID, key, now)
		if err != nil {
			return err
		}
		return h.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := h.rooms.Create(ctx, r); err != nil {
				return err
			}
			return h.emitter.Emit(ctx, shared.Event{
				Kind:        shared.EventRoomOpened,
				Teacher:     teacher.Party(),
				Student:     student.Party(),
				LessonTitle: l.Title,
				Data:        r.Key,
				OccurredAt:  now,
			})
		})
	}

	err := attempt()
	if errors.Is(err, shared.ErrRoomKeyTaken) {
		err = attempt()
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLOSE ROOMS COMMAND
// The teacher ends conversations with one student: every open room between
// any of the teacher's lessons and that student is closed in one sweep.
// A non-teacher caller is a silent no-op, mirroring the soft-fail contract
// of the close endpoint. No notifications are produced on close.
// ══════════════════════════════════════════════════════════════════════════════

// CloseRoomsCommand closes all open rooms between the actor and a student.
type CloseRoomsCommand struct {
	// ActorID is the calling profile.
	ActorID string

	StudentUsername string
}

// CloseRoomsResult reports what happened.
type CloseRoomsResult struct {
	// Closed is how many rooms were closed.
	Closed int

	// Skipped is true when the actor is not a teacher and the call was a
	// no-op.
	Skipped bool
}

// CloseRoomsHandler handles the CloseRoomsCommand.
type CloseRoomsHandler struct {
	rooms    room.Repository
	profiles profile.Repository
}

// NewCloseRoomsHandler creates a new CloseRoomsHandler.
func NewCloseRoomsHandler(rooms room.Repository, profiles profile.Repository) *CloseRoomsHandler {
	return &CloseRoomsHandler{rooms: rooms, profiles: profiles}
}

// Handle executes the close rooms command.
func (h *CloseRoomsHandler) Handle(ctx context.Context, cmd CloseRoomsCommand) (*CloseRoomsResult, error) {
	actor, err := h.profiles.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanTeach {
		return &CloseRoomsResult{Skipped: true}, nil
	}

	student, err := h.profiles.GetByUsername(ctx, cmd.StudentUsername)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Unknown student means there is nothing to close.
			return &CloseRoomsResult{}, nil
		}
		return nil, err
	}

	closed, err := h.rooms.CloseAllForTeacherStudent(ctx, actor.ID, student.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &CloseRoomsResult{Closed: closed}, nil
}
