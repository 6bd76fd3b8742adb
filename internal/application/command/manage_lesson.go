package command

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE LESSON COMMAND
// Publishes a lesson offer. The slug is derived from the title; a "-N"
// suffix resolves collisions. Publishing a first lesson turns the author
// into a teacher.
// ══════════════════════════════════════════════════════════════════════════════

// CreateLessonCommand contains the data to publish a lesson.
type CreateLessonCommand struct {
	// TeacherID is the authoring profile.
	TeacherID string

	Title            string
	SubjectName      string
	StageName        string
	ShortDescription string
	LongDescription  string

	// Price is tokens per 15 minutes.
	Price int
}

// Validate validates the command.
func (c CreateLessonCommand) Validate() error {
	if c.TeacherID == "" {
		return shared.WrapError("lesson", "Create", shared.ErrInvalidID, "teacher id is required", nil)
	}
	if strings.TrimSpace(c.Title) == "" {
		return shared.WrapError("lesson", "Create", shared.ErrEmptyValue, "title is required", nil)
	}
	if len(c.Title) > lesson.MaxTitleLen {
		return shared.WrapError("lesson", "Create", shared.ErrValueOutOfRange, "title too long", nil)
	}
	if len(c.ShortDescription) > lesson.MaxShortDescLen || len(c.LongDescription) > lesson.MaxLongDescLen {
		return shared.WrapError("lesson", "Create", shared.ErrValueOutOfRange, "description too long", nil)
	}
	if c.Price < 0 {
		return shared.WrapError("lesson", "Create", shared.ErrNegativeValue, "price cannot be negative", nil)
	}
	if c.SubjectName == "" || c.StageName == "" {
		return shared.WrapError("lesson", "Create", shared.ErrEmptyValue, "subject and stage are required", nil)
	}
	return nil
}

// CreateLessonResult contains the published lesson.
type CreateLessonResult struct {
	Lesson *lesson.Lesson

	// BecameTeacher is true when this publication flipped the author's
	// teaching flag.
	BecameTeacher bool
}

// CreateLessonHandler handles the CreateLessonCommand.
type CreateLessonHandler struct {
	lessons  lesson.Repository
	profiles profile.Repository
	tx       shared.TxManager
}

// NewCreateLessonHandler creates a new CreateLessonHandler.
func NewCreateLessonHandler(lessons lesson.Repository, profiles profile.Repository, tx shared.TxManager) *CreateLessonHandler {
	return &CreateLessonHandler{lessons: lessons, profiles: profiles, tx: tx}
}

// Handle executes the create lesson command.
func (h *CreateLessonHandler) Handle(ctx context.Context, cmd CreateLessonCommand) (*CreateLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	author, err := h.profiles.GetByID(ctx, cmd.TeacherID)
	if err != nil {
		return nil, err
	}

	subject, err := h.lessons.GetSubjectByName(ctx, cmd.SubjectName)
	if err != nil {
		return nil, err
	}
	stage, err := h.lessons.GetStageByName(ctx, cmd.StageName)
	if err != nil {
		return nil, err
	}

	slug, err := h.uniqueSlug(ctx, cmd.Title, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l, err := lesson.NewLesson(uuid.NewString(), author.ID, cmd.Title, slug, cmd.Price, now)
	if err != nil {
		return nil, err
	}
	l.SubjectID = subject.ID
	l.SubjectName = subject.Name
	l.StageID = stage.ID
	l.StageName = stage.Name
	l.ShortDescription = cmd.ShortDescription
	l.LongDescription = cmd.LongDescription

	becameTeacher := !author.CanTeach

	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.lessons.Create(ctx, l); err != nil {
			return err
		}
		if becameTeacher {
			author.GrantTeaching(now)
			return h.profiles.Update(ctx, author)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateLessonResult{Lesson: l, BecameTeacher: becameTeacher}, nil
}

// uniqueSlug slugifies the title and appends "-N" until the slug is free.
// keep is a slug that counts as free (the lesson's own, on retitle).
func (h *CreateLessonHandler) uniqueSlug(ctx context.Context, title, keep string) (string, error) {
	base := lesson.Slugify(title)
	if base == "" {
		return "", shared.WrapError("lesson", "Slugify", shared.ErrValidation, "title produces an empty slug", nil)
	}

	candidate := base
	for i := 1; ; i++ {
		if candidate == keep {
			return candidate, nil
		}
		taken, err := h.lessons.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE LESSON COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UpdateLessonCommand patches a lesson. Nil fields are left untouched.
// Retitling regenerates the slug; the slug is never set directly.
type UpdateLessonCommand struct {
	// ActorID is the profile performing the update, must own the lesson.
	ActorID string

	// Slug identifies the lesson.
	Slug string

	Title            *string
	SubjectName      *string
	StageName        *string
	ShortDescription *string
	LongDescription  *string
	Price            *int
}

// UpdateLessonHandler handles the UpdateLessonCommand.
type UpdateLessonHandler struct {
	lessons  lesson.Repository
	profiles profile.Repository
	tx       shared.TxManager
}

// NewUpdateLessonHandler creates a new UpdateLessonHandler.
func NewUpdateLessonHandler(lessons lesson.Repository, profiles profile.Repository, tx shared.TxManager) *UpdateLessonHandler {
	return &UpdateLessonHandler{lessons: lessons, profiles: profiles, tx: tx}
}

// Handle executes the update lesson command.
func (h *UpdateLessonHandler) Handle(ctx context.Context, cmd UpdateLessonCommand) (*lesson.Lesson, error) {
	l, err := h.lessons.GetBySlug(ctx, cmd.Slug)
	if err != nil {
		return nil, err
	}
	if l.TeacherID != cmd.ActorID {
		return nil, shared.ErrNotLessonOwner
	}

	if cmd.Title != nil && *cmd.Title != l.Title {
		if strings.TrimSpace(*cmd.Title) == "" {
			return nil, shared.WrapError("lesson", "Update", shared.ErrEmptyValue, "title is required", nil)
		}
		if len(*cmd.Title) > lesson.MaxTitleLen {
			return nil, shared.WrapError("lesson", "Update", shared.ErrValueOutOfRange, "title too long", nil)
		}
		creator := CreateLessonHandler{lessons: h.lessons, profiles: h.profiles, tx: h.tx}
		slug, err := creator.uniqueSlug(ctx, *cmd.Title, l.Slug)
		if err != nil {
			return nil, err
		}
		l.Title = strings.TrimSpace(*cmd.Title)
		l.Slug = slug
	}
	if cmd.SubjectName != nil {
		subject, err := h.lessons.GetSubjectByName(ctx, *cmd.SubjectName)
		if err != nil {
			return nil, err
		}
		l.SubjectID = subject.ID
		l.SubjectName = subject.Name
	}
	if cmd.StageName != nil {
		stage, err := h.lessons.GetStageByName(ctx, *cmd.StageName)
		if err != nil {
			return nil, err
		}
		l.StageID = stage.ID
		l.StageName = stage.Name
	}
	if cmd.ShortDescription != nil {
		if len(*cmd.ShortDescription) > lesson.MaxShortDescLen {
			return nil, shared.WrapError("lesson", "Update", shared.ErrValueOutOfRange, "description too long", nil)
		}
		l.ShortDescription = *cmd.ShortDescription
	}
	if cmd.LongDescription != nil {
		if len(*cmd.LongDescription) > lesson.MaxLongDescLen {
			return nil, shared.WrapError("lesson", "Update", shared.ErrValueOutOfRange, "description too long", nil)
		}
		l.LongDescription = *cmd.LongDescription
	}
	if cmd.Price != nil {
		if *cmd.Price < 0 {
			return nil, shared.WrapError("lesson", "Update", shared.ErrNegativeValue, "price cannot be negative", nil)
		}
		l.Price = *cmd.Price
	}

	if err := h.lessons.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE LESSON COMMAND
// Removes the offer together with its memberships, rooms and bills.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteLessonCommand removes a lesson.
type DeleteLessonCommand struct {
	// ActorID must own the lesson.
	ActorID string

	// Slug identifies the lesson.
	Slug string
}

// DeleteLessonHandler handles the DeleteLessonCommand.
type DeleteLessonHandler struct {
	lessons lesson.Repository
}

// NewDeleteLessonHandler creates a new DeleteLessonHandler.
func NewDeleteLessonHandler(lessons lesson.Repository) *DeleteLessonHandler {
	return &DeleteLessonHandler{lessons: lessons}
}

// Handle executes the delete lesson command.
func (h *DeleteLessonHandler) Handle(ctx context.Context, cmd DeleteLessonCommand) error {
	l, err := h.lessons.GetBySlug(ctx, cmd.Slug)
	if err != nil {
		return err
	}
	if l.TeacherID != cmd.ActorID {
		return shared.ErrNotLessonOwner
	}
	return h.lessons.Delete(ctx, l.ID)
}
