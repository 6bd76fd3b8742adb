package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/room"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// fakes
// ─────────────────────────────────────────────────────────────────────────────

type stubLessonRepo struct {
	lessons map[string]*lesson.Lesson
}

func (r *stubLessonRepo) Create(context.Context, *lesson.Lesson) error { return nil }

func (r *stubLessonRepo) GetByID(_ context.Context, id string) (*lesson.Lesson, error) {
	for _, l := range r.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, shared.ErrLessonNotFound
}

func (r *stubLessonRepo) GetBySlug(_ context.Context, slug string) (*lesson.Lesson, error) {
	if l, ok := r.lessons[slug]; ok {
		return l, nil
	}
	return nil, shared.ErrLessonNotFound
}

func (r *stubLessonRepo) List(context.Context, lesson.Filter) ([]*lesson.Lesson, error) {
	return nil, nil
}

func (r *stubLessonRepo) Update(context.Context, *lesson.Lesson) error { return nil }
func (r *stubLessonRepo) Delete(context.Context, string) error         { return nil }

func (r *stubLessonRepo) SlugExists(context.Context, string) (bool, error) { return false, nil }

func (r *stubLessonRepo) GetSubjectByName(context.Context, string) (*lesson.Subject, error) {
	return nil, shared.ErrSubjectNotFound
}

func (r *stubLessonRepo) GetStageByName(context.Context, string) (*lesson.Stage, error) {
	return nil, shared.ErrStageNotFound
}

func (r *stubLessonRepo) ListSubjects(context.Context) ([]*lesson.Subject, error) { return nil, nil }
func (r *stubLessonRepo) ListStages(context.Context) ([]*lesson.Stage, error)     { return nil, nil }

type stubRoomRepo struct {
	rooms []*room.Room
}

func (r *stubRoomRepo) Create(_ context.Context, rm *room.Room) error {
	r.rooms = append(r.rooms, rm)
	return nil
}

func (r *stubRoomRepo) GetOpenByKey(_ context.Context, key string) (*room.Room, error) {
	for _, rm := range r.rooms {
		if rm.Key == key && rm.IsOpen {
			return rm, nil
		}
	}
	return nil, shared.ErrRoomNotFound
}

func (r *stubRoomRepo) GetOpenByLessonStudent(_ context.Context, lessonID, studentID string) (*room.Room, error) {
	for _, rm := range r.rooms {
		if rm.LessonID == lessonID && rm.StudentID == studentID && rm.IsOpen {
			return rm, nil
		}
	}
	return nil, shared.ErrRoomNotFound
}

func (r *stubRoomRepo) CloseAllForTeacherStudent(context.Context, string, string, time.Time) (int, error) {
	return 0, nil
}

type stubProfileRepo struct {
	profiles []*profile.Profile
}

func (r *stubProfileRepo) Create(context.Context, *profile.Profile) error { return nil }

func (r *stubProfileRepo) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrProfileNotFound
}

func (r *stubProfileRepo) GetByIDForUpdate(ctx context.Context, id string) (*profile.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r *stubProfileRepo) GetByUsername(_ context.Context, username string) (*profile.Profile, error) {
	for _, p := range r.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, shared.ErrProfileNotFound
}

func (r *stubProfileRepo) GetByEmail(context.Context, string) (*profile.Profile, error) {
	return nil, shared.ErrProfileNotFound
}

func (r *stubProfileRepo) Update(context.Context, *profile.Profile) error { return nil }

func (r *stubProfileRepo) UsernameExists(context.Context, string) (bool, error) {
	return false, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// tests
// ─────────────────────────────────────────────────────────────────────────────

const roomKey = "0123456789abcdef0123456789abcdef"

func roomFixtures(t *testing.T) (*stubRoomRepo, *stubLessonRepo, *stubProfileRepo) {
	t.Helper()

	lessons := &stubLessonRepo{lessons: map[string]*lesson.Lesson{
		"algebra": {
			ID:        "lesson1",
			Slug:      "algebra",
			Title:     "Algebra",
			TeacherID: "teacher1",
		},
	}}

	profiles := &stubProfileRepo{profiles: []*profile.Profile{
		{ID: "teacher1", Username: "boris"},
		{ID: "student1", Username: "alice"},
		{ID: "student2", Username: "dana"},
	}}

	rm, err := room.NewRoom("room1", "lesson1", "student1", roomKey, time.Now().UTC())
	require.NoError(t, err)
	rooms := &stubRoomRepo{rooms: []*room.Room{rm}}
	return rooms, lessons, profiles
}

func TestRoomByKeyParticipants(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, _ := roomFixtures(t)
	h := NewRoomByKeyHandler(rooms, lessons)

	for _, viewer := range []string{"teacher1", "student1"} {
		view, err := h.Handle(ctx, viewer, roomKey)
		require.NoError(t, err, "viewer %s", viewer)
		assert.Equal(t, roomKey, view.Room.Key)
		assert.Equal(t, "Algebra", view.Lesson.Title)
	}
}

func TestRoomByKeyOutsider(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, _ := roomFixtures(t)
	h := NewRoomByKeyHandler(rooms, lessons)

	_, err := h.Handle(ctx, "intruder", roomKey)
	assert.ErrorIs(t, err, shared.ErrNotRoomMember)
}

func TestRoomByKeyBadShape(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, _ := roomFixtures(t)
	h := NewRoomByKeyHandler(rooms, lessons)

	_, err := h.Handle(ctx, "teacher1", "not-a-room-key")
	assert.ErrorIs(t, err, shared.ErrRoomNotFound)
}

func TestRoomByKeyClosedRoom(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, _ := roomFixtures(t)
	rooms.rooms[0].Close(time.Now().UTC())
	h := NewRoomByKeyHandler(rooms, lessons)

	_, err := h.Handle(ctx, "teacher1", roomKey)
	assert.ErrorIs(t, err, shared.ErrRoomNotFound)
}

func TestRoomForLessonStudent(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, profiles := roomFixtures(t)
	h := NewRoomForLessonHandler(lessons, rooms, profiles)

	view, err := h.Handle(ctx, "student1", "algebra", "")
	require.NoError(t, err)
	assert.Equal(t, roomKey, view.Room.Key)

	_, err = h.Handle(ctx, "student2", "algebra", "")
	assert.ErrorIs(t, err, shared.ErrRoomNotFound)
}

func TestRoomForLessonTeacher(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, profiles := roomFixtures(t)
	h := NewRoomForLessonHandler(lessons, rooms, profiles)

	view, err := h.Handle(ctx, "teacher1", "algebra", "alice")
	require.NoError(t, err)
	assert.Equal(t, roomKey, view.Room.Key)
	assert.Equal(t, "student1", view.Room.StudentID)

	_, err = h.Handle(ctx, "teacher1", "algebra", "dana")
	assert.ErrorIs(t, err, shared.ErrRoomNotFound)

	_, err = h.Handle(ctx, "teacher1", "algebra", "nobody")
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func TestRoomForLessonTeacherWithoutStudent(t *testing.T) {
	ctx := context.Background()
	rooms, lessons, profiles := roomFixtures(t)
	h := NewRoomForLessonHandler(lessons, rooms, profiles)

	_, err := h.Handle(ctx, "teacher1", "algebra", "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}
