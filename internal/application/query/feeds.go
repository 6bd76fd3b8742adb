package query

import (
	"context"

	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/comment"
	"github.com/koreline/koreline-hub/internal/domain/message"
	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// PER-PROFILE FEEDS
// Notification feed, inbox, bills and the token ledger. All newest first.
// ══════════════════════════════════════════════════════════════════════════════

// FeedsHandler serves the per-profile read models.
type FeedsHandler struct {
	notifications notification.Repository
	messages      message.Repository
	bills         billing.Repository
}

// NewFeedsHandler creates a new FeedsHandler.
func NewFeedsHandler(
	notifications notification.Repository,
	messages message.Repository,
	bills billing.Repository,
) *FeedsHandler {
	return &FeedsHandler{notifications: notifications, messages: messages, bills: bills}
}

// Notifications returns the profile's notifications, newest first.
func (h *FeedsHandler) Notifications(ctx context.Context, profileID string) ([]*notification.Notification, error) {
	return h.notifications.ListByUser(ctx, profileID)
}

// Inbox returns the profile's received messages, newest first.
func (h *FeedsHandler) Inbox(ctx context.Context, profileID string) ([]*message.Message, error) {
	return h.messages.ListByReceiver(ctx, profileID)
}

// Bills returns the bills addressed to the profile, newest first.
func (h *FeedsHandler) Bills(ctx context.Context, profileID string) ([]*billing.Bill, error) {
	return h.bills.ListBillsByUser(ctx, profileID)
}

// Operations returns the profile's token ledger, newest first.
func (h *FeedsHandler) Operations(ctx context.Context, profileID string) ([]*billing.AccountOperation, error) {
	return h.bills.ListOperationsByUser(ctx, profileID)
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER COMMENTS
// ══════════════════════════════════════════════════════════════════════════════

// CommentView is a comment together with its author's public identity.
type CommentView struct {
	Comment        *comment.Comment
	AuthorUsername string
	AuthorName     string
}

// ListCommentsHandler lists a teacher's active comments.
type ListCommentsHandler struct {
	comments comment.Repository
	profiles profile.Repository
}

// NewListCommentsHandler creates a new ListCommentsHandler.
func NewListCommentsHandler(comments comment.Repository, profiles profile.Repository) *ListCommentsHandler {
	return &ListCommentsHandler{comments: comments, profiles: profiles}
}

// Handle returns the teacher's active comments, newest first.
func (h *ListCommentsHandler) Handle(ctx context.Context, teacherUsername string) ([]*CommentView, error) {
	teacher, err := h.profiles.GetByUsername(ctx, teacherUsername)
	if err != nil {
		return nil, err
	}

	cs, err := h.comments.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*CommentView, 0, len(cs))
	for _, c := range cs {
		author, err := h.profiles.GetByID(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}
		out = append(out, &CommentView{
			Comment:        c,
			AuthorUsername: author.Username,
			AuthorName:     author.DisplayName(),
		})
	}
	return out, nil
}
