package postgres

import (
	"context"
	"fmt"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBERSHIP REPOSITORY IMPLEMENTATION
// The uq_membership_lesson_student constraint is the authority on duplicate
// joins; the repository just translates its violation into the domain error.
// ══════════════════════════════════════════════════════════════════════════════

// MembershipRepository implements lesson.MembershipRepository for PostgreSQL.
type MembershipRepository struct {
	conn *Connection
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(conn *Connection) *MembershipRepository {
	return &MembershipRepository{conn: conn}
}

// Create creates a membership.
func (r *MembershipRepository) Create(ctx context.Context, m *lesson.Membership) error {
	query := `
		INSERT INTO lesson_memberships (id, lesson_id, student_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query, m.ID, m.LessonID, m.StudentID, m.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyMember
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// Delete removes the membership for the pair.
func (r *MembershipRepository) Delete(ctx context.Context, lessonID, studentID string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx,
		`DELETE FROM lesson_memberships WHERE lesson_id = $1 AND student_id = $2`,
		lessonID, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrMembershipNotFound
	}
	return nil
}

// Exists reports whether the student is subscribed to the lesson.
func (r *MembershipRepository) Exists(ctx context.Context, lessonID, studentID string) (bool, error) {
	var exists bool
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM lesson_memberships WHERE lesson_id = $1 AND student_id = $2)`,
		lessonID, studentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ListByStudent returns the student's memberships, newest first.
func (r *MembershipRepository) ListByStudent(ctx context.Context, studentID string) ([]*lesson.Membership, error) {
	return r.list(ctx,
		`SELECT id, lesson_id, student_id, created_at
		 FROM lesson_memberships WHERE student_id = $1 ORDER BY created_at DESC`,
		studentID)
}

// ListByLesson returns the lesson's memberships, newest first.
func (r *MembershipRepository) ListByLesson(ctx context.Context, lessonID string) ([]*lesson.Membership, error) {
	return r.list(ctx,
		`SELECT id, lesson_id, student_id, created_at
		 FROM lesson_memberships WHERE lesson_id = $1 ORDER BY created_at DESC`,
		lessonID)
}

func (r *MembershipRepository) list(ctx context.Context, query string, arg interface{}) ([]*lesson.Membership, error) {
	rows, err := r.conn.querier(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var out []*lesson.Membership
	for rows.Next() {
		var m lesson.Membership
		if err := rows.Scan(&m.ID, &m.LessonID, &m.StudentID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
