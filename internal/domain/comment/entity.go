// Package comment contains teacher reviews and reports against them.
package comment

import (
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// MaxTextLen is mirrored by the storage schema.
const MaxTextLen = 255

// Comment is a rated review left on a teacher's public profile.
type Comment struct {
	ID        string
	AuthorID  string
	TeacherID string
	Text      string

	// Rate is a 1 to 5 grade.
	Rate int

	// IsActive is cleared by moderation; inactive comments are hidden
	// from listings.
	IsActive bool

	CreatedAt time.Time
}

// New validates and builds an active comment.
func New(id, authorID, teacherID, text string, rate int, now time.Time) (*Comment, error) {
	if id == "" || authorID == "" || teacherID == "" {
		return nil, shared.WrapError("comment", "New", shared.ErrInvalidID, "id, author id and teacher id are required", nil)
	}
	if text == "" {
		return nil, shared.WrapError("comment", "New", shared.ErrEmptyValue, "text is required", nil)
	}
	if len(text) > MaxTextLen {
		return nil, shared.WrapError("comment", "New", shared.ErrValueOutOfRange, "text too long", nil)
	}
	if rate < 1 || rate > 5 {
		return nil, shared.ErrInvalidRate
	}
	return &Comment{
		ID:        id,
		AuthorID:  authorID,
		TeacherID: teacherID,
		Text:      text,
		Rate:      rate,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// Report is a user complaint about a comment awaiting moderation.
type Report struct {
	ID        string
	AuthorID  string
	CommentID string
	Text      string
	IsPending bool
	CreatedAt time.Time
}

// NewReport validates and builds a pending report.
func NewReport(id, authorID, commentID, text string, now time.Time) (*Report, error) {
	if id == "" || authorID == "" || commentID == "" {
		return nil, shared.WrapError("comment", "NewReport", shared.ErrInvalidID, "id, author id and comment id are required", nil)
	}
	if text == "" {
		return nil, shared.WrapError("comment", "NewReport", shared.ErrEmptyValue, "text is required", nil)
	}
	return &Report{
		ID:        id,
		AuthorID:  authorID,
		CommentID: commentID,
		Text:      text,
		IsPending: true,
		CreatedAt: now,
	}, nil
}
