package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/room"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROOM REPOSITORY IMPLEMENTATION
// Two constraints guard room creation: the unique key and the partial
// unique index on open (lesson, student) pairs. Their violations map to
// distinct domain errors because the command reacts differently to each.
// ══════════════════════════════════════════════════════════════════════════════

// RoomRepository implements room.Repository for PostgreSQL.
type RoomRepository struct {
	conn *Connection
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(conn *Connection) *RoomRepository {
	return &RoomRepository{conn: conn}
}

// Create creates an open room.
func (r *RoomRepository) Create(ctx context.Context, rm *room.Room) error {
	query := `
		INSERT INTO rooms (id, lesson_id, student_id, key, is_open, created_at, close_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		rm.ID, rm.LessonID, rm.StudentID, rm.Key, rm.IsOpen, rm.CreatedAt, rm.CloseDate)
	if err != nil {
		switch UniqueViolationConstraint(err) {
		case "rooms_key_key":
			return shared.ErrRoomKeyTaken
		case "uq_rooms_open_pair":
			return shared.ErrRoomOpen
		}
		if IsUniqueViolation(err) {
			return shared.ErrRoomOpen
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetOpenByKey returns the open room with this key.
func (r *RoomRepository) GetOpenByKey(ctx context.Context, key string) (*room.Room, error) {
	query := `
		SELECT id, lesson_id, student_id, key, is_open, created_at, close_date
		FROM rooms WHERE key = $1 AND is_open
	`
	return r.scanRoom(r.conn.querier(ctx).QueryRow(ctx, query, key))
}

// GetOpenByLessonStudent returns the open room for the pair.
func (r *RoomRepository) GetOpenByLessonStudent(ctx context.Context, lessonID, studentID string) (*room.Room, error) {
	query := `
		SELECT id, lesson_id, student_id, key, is_open, created_at, close_date
		FROM rooms WHERE lesson_id = $1 AND student_id = $2 AND is_open
	`
	return r.scanRoom(r.conn.querier(ctx).QueryRow(ctx, query, lessonID, studentID))
}

// CloseAllForTeacherStudent closes every open room between the teacher's
// lessons and the student.
func (r *RoomRepository) CloseAllForTeacherStudent(ctx context.Context, teacherID, studentID string, closedAt time.Time) (int, error) {
	query := `
		UPDATE rooms SET is_open = FALSE, close_date = $1
		WHERE is_open
		  AND student_id = $2
		  AND lesson_id IN (SELECT id FROM lessons WHERE teacher_id = $3)
	`

	tag, err := r.conn.querier(ctx).Exec(ctx, query, closedAt, studentID, teacherID)
	if err != nil {
		return 0, fmt.Errorf("failed to close rooms: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// scanRoom scans one room row.
func (r *RoomRepository) scanRoom(row pgx.Row) (*room.Room, error) {
	var rm room.Room
	err := row.Scan(
		&rm.ID,
		&rm.LessonID,
		&rm.StudentID,
		&rm.Key,
		&rm.IsOpen,
		&rm.CreatedAt,
		&rm.CloseDate,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	return &rm, nil
}
