package comment

import "context"

// Repository persists comments and their reports.
type Repository interface {
	// Create stores a comment.
	Create(ctx context.Context, c *Comment) error

	// GetByID returns a comment or shared.ErrCommentNotFound.
	GetByID(ctx context.Context, id string) (*Comment, error)

	// ListByTeacher returns a teacher's active comments, newest first.
	ListByTeacher(ctx context.Context, teacherID string) ([]*Comment, error)

	// CreateReport stores a report against a comment.
	CreateReport(ctx context.Context, r *Report) error
}
