package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// Subjects and stages live here too: they are lookup tables the lesson
// aggregate references by ID but exposes by name.
// ══════════════════════════════════════════════════════════════════════════════

const lessonSelect = `
	SELECT l.id, l.teacher_id, l.title, l.slug,
	       l.subject_id, s.name, l.stage_id, st.name,
	       l.short_description, l.long_description, l.price, l.created_at
	FROM lessons l
	JOIN subjects s ON s.id = l.subject_id
	JOIN stages st ON st.id = l.stage_id
`

// LessonRepository implements lesson.Repository for PostgreSQL.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

// Create creates a new lesson.
func (r *LessonRepository) Create(ctx context.Context, l *lesson.Lesson) error {
	query := `
		INSERT INTO lessons (
			id, teacher_id, title, slug, subject_id, stage_id,
			short_description, long_description, price, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		l.ID,
		l.TeacherID,
		l.Title,
		l.Slug,
		l.SubjectID,
		l.StageID,
		l.ShortDescription,
		l.LongDescription,
		l.Price,
		l.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSlugTaken
		}
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetByID returns a lesson by ID.
func (r *LessonRepository) GetByID(ctx context.Context, id string) (*lesson.Lesson, error) {
	row := r.conn.querier(ctx).QueryRow(ctx, lessonSelect+` WHERE l.id = $1`, id)
	return r.scanLesson(row)
}

// GetBySlug returns a lesson by slug.
func (r *LessonRepository) GetBySlug(ctx context.Context, slug string) (*lesson.Lesson, error) {
	row := r.conn.querier(ctx).QueryRow(ctx, lessonSelect+` WHERE l.slug = $1`, slug)
	return r.scanLesson(row)
}

// List returns lessons matching the filter, newest first.
func (r *LessonRepository) List(ctx context.Context, f lesson.Filter) ([]*lesson.Lesson, error) {
	query := lessonSelect + ` WHERE 1=1`
	args := make([]interface{}, 0, 2)

	if f.TeacherUsername != "" {
		args = append(args, f.TeacherUsername)
		query += fmt.Sprintf(` AND l.teacher_id = (SELECT id FROM profiles WHERE username = $%d)`, len(args))
	}
	if f.Slug != "" {
		args = append(args, f.Slug)
		query += fmt.Sprintf(` AND l.slug = $%d`, len(args))
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := r.conn.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var out []*lesson.Lesson
	for rows.Next() {
		l, err := r.scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update updates mutable lesson fields.
func (r *LessonRepository) Update(ctx context.Context, l *lesson.Lesson) error {
	query := `
		UPDATE lessons SET
			title = $1,
			slug = $2,
			subject_id = $3,
			stage_id = $4,
			short_description = $5,
			long_description = $6,
			price = $7
		WHERE id = $8
	`

	tag, err := r.conn.querier(ctx).Exec(ctx, query,
		l.Title,
		l.Slug,
		l.SubjectID,
		l.StageID,
		l.ShortDescription,
		l.LongDescription,
		l.Price,
		l.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSlugTaken
		}
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrLessonNotFound
	}
	return nil
}

// Delete removes a lesson; dependents cascade in the schema.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrLessonNotFound
	}
	return nil
}

// SlugExists reports whether a slug is taken.
func (r *LessonRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM lessons WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// GetSubjectByName returns a subject by name.
func (r *LessonRepository) GetSubjectByName(ctx context.Context, name string) (*lesson.Subject, error) {
	var s lesson.Subject
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, name FROM subjects WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &s, nil
}

// GetStageByName returns a stage by name.
func (r *LessonRepository) GetStageByName(ctx context.Context, name string) (*lesson.Stage, error) {
	var s lesson.Stage
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, name FROM stages WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	return &s, nil
}

// ListSubjects returns all subjects ordered by name.
func (r *LessonRepository) ListSubjects(ctx context.Context) ([]*lesson.Subject, error) {
	rows, err := r.conn.querier(ctx).Query(ctx, `SELECT id, name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var out []*lesson.Subject
	for rows.Next() {
		var s lesson.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// ListStages returns all stages ordered by name.
func (r *LessonRepository) ListStages(ctx context.Context) ([]*lesson.Stage, error) {
	rows, err := r.conn.querier(ctx).Query(ctx, `SELECT id, name FROM stages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var out []*lesson.Stage
	for rows.Next() {
		var s lesson.Stage
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// scanLesson scans one joined lesson row.
func (r *LessonRepository) scanLesson(row pgx.Row) (*lesson.Lesson, error) {
	var l lesson.Lesson
	err := row.Scan(
		&l.ID,
		&l.TeacherID,
		&l.Title,
		&l.Slug,
		&l.SubjectID,
		&l.SubjectName,
		&l.StageID,
		&l.StageName,
		&l.ShortDescription,
		&l.LongDescription,
		&l.Price,
		&l.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to scan lesson: %w", err)
	}
	return &l, nil
}
