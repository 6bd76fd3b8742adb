package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/comment"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE COMMENT COMMAND
// Leaves a rated review on a teacher's public profile. The teacher is
// notified in the same transaction.
// ══════════════════════════════════════════════════════════════════════════════

// CreateCommentCommand reviews a teacher.
type CreateCommentCommand struct {
	AuthorID        string
	TeacherUsername string
	Text            string

	// Rate is a 1 to 5 grade.
	Rate int
}

// CreateCommentHandler handles the CreateCommentCommand.
type CreateCommentHandler struct {
	comments comment.Repository
	profiles profile.Repository
	emitter  shared.EventEmitter
	tx       shared.TxManager
}

// NewCreateCommentHandler creates a new CreateCommentHandler.
func NewCreateCommentHandler(
	comments comment.Repository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *CreateCommentHandler {
	return &CreateCommentHandler{comments: comments, profiles: profiles, emitter: emitter, tx: tx}
}

// Handle executes the create comment command.
func (h *CreateCommentHandler) Handle(ctx context.Context, cmd CreateCommentCommand) (*comment.Comment, error) {
	teacher, err := h.profiles.GetByUsername(ctx, cmd.TeacherUsername)
	if err != nil {
		return nil, err
	}
	if !teacher.CanTeach {
		return nil, shared.ErrNotATeacher
	}

	author, err := h.profiles.GetByID(ctx, cmd.AuthorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c, err := comment.New(uuid.NewString(), author.ID, teacher.ID, cmd.Text, cmd.Rate, now)
	if err != nil {
		return nil, err
	}

	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.comments.Create(ctx, c); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:       shared.EventCommentCreated,
			Teacher:    teacher.Party(),
			Student:    author.Party(),
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORT COMMENT COMMAND
// Flags a comment for moderation. No notification is produced.
// ══════════════════════════════════════════════════════════════════════════════

// ReportCommentCommand files a report against a comment.
type ReportCommentCommand struct {
	AuthorID  string
	CommentID string
	Text      string
}

// ReportCommentHandler handles the ReportCommentCommand.
type ReportCommentHandler struct {
	comments comment.Repository
}

// NewReportCommentHandler creates a new ReportCommentHandler.
func NewReportCommentHandler(comments comment.Repository) *ReportCommentHandler {
	return &ReportCommentHandler{comments: comments}
}

// Handle executes the report comment command.
func (h *ReportCommentHandler) Handle(ctx context.Context, cmd ReportCommentCommand) (*comment.Report, error) {
	c, err := h.comments.GetByID(ctx, cmd.CommentID)
	if err != nil {
		return nil, err
	}

	r, err := comment.NewReport(uuid.NewString(), cmd.AuthorID, c.ID, cmd.Text, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := h.comments.CreateReport(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
