package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/comment"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CommentRepository implements comment.Repository for PostgreSQL.
type CommentRepository struct {
	conn *Connection
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(conn *Connection) *CommentRepository {
	return &CommentRepository{conn: conn}
}

// Create creates a comment.
func (r *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	query := `
		INSERT INTO comments (id, author_id, teacher_id, text, rate, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		c.ID, c.AuthorID, c.TeacherID, c.Text, c.Rate, c.IsActive, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID returns a comment by ID.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*comment.Comment, error) {
	query := `
		SELECT id, author_id, teacher_id, text, rate, is_active, created_at
		FROM comments WHERE id = $1
	`
	return r.scanComment(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// ListByTeacher returns a teacher's active comments, newest first.
func (r *CommentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*comment.Comment, error) {
	query := `
		SELECT id, author_id, teacher_id, text, rate, is_active, created_at
		FROM comments WHERE teacher_id = $1 AND is_active ORDER BY created_at DESC
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []*comment.Comment
	for rows.Next() {
		c, err := r.scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateReport stores a report against a comment.
func (r *CommentRepository) CreateReport(ctx context.Context, rep *comment.Report) error {
	query := `
		INSERT INTO reported_comments (id, author_id, comment_id, text, is_pending, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		rep.ID, rep.AuthorID, rep.CommentID, rep.Text, rep.IsPending, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment report: %w", err)
	}
	return nil
}

// scanComment scans one comment row.
func (r *CommentRepository) scanComment(row pgx.Row) (*comment.Comment, error) {
	var c comment.Comment
	err := row.Scan(&c.ID, &c.AuthorID, &c.TeacherID, &c.Text, &c.Rate, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return &c, nil
}
