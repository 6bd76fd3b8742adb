package command

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/room"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// In-memory repositories backing the handler tests. They enforce the same
// uniqueness contracts as the SQL implementations so the handlers see the
// same error surface.

// ─────────────────────────────────────────────────────────────────────────────
// profiles
// ─────────────────────────────────────────────────────────────────────────────

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*profile.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*profile.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.Username == p.Username {
			return shared.ErrUsernameTaken
		}
		if existing.Email == p.Email {
			return shared.ErrEmailTaken
		}
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByIDForUpdate(ctx context.Context, id string) (*profile.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProfileRepo) GetByUsername(_ context.Context, username string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrProfileNotFound
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrProfileNotFound
}

func (r *fakeProfileRepo) Update(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return shared.ErrProfileNotFound
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// auth tokens
// ─────────────────────────────────────────────────────────────────────────────

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]string)}
}

func (r *fakeTokenRepo) Store(_ context.Context, token, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = profileID
	return nil
}

func (r *fakeTokenRepo) GetProfileID(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.tokens[token]
	if !ok {
		return "", shared.ErrTokenNotFound
	}
	return id, nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// lessons, subjects, stages
// ─────────────────────────────────────────────────────────────────────────────

type fakeLessonRepo struct {
	mu       sync.Mutex
	lessons  map[string]*lesson.Lesson
	subjects []*lesson.Subject
	stages   []*lesson.Stage
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{
		lessons: make(map[string]*lesson.Lesson),
		subjects: []*lesson.Subject{
			{ID: "subj-math", Name: "Mathematics"},
			{ID: "subj-eng", Name: "English"},
		},
		stages: []*lesson.Stage{
			{ID: "stage-beginner", Name: "Beginner"},
			{ID: "stage-advanced", Name: "Advanced"},
		},
	}
}

func (r *fakeLessonRepo) Create(_ context.Context, l *lesson.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.lessons {
		if existing.Slug == l.Slug {
			return shared.ErrSlugTaken
		}
	}
	cp := *l
	r.lessons[l.ID] = &cp
	return nil
}

func (r *fakeLessonRepo) GetByID(_ context.Context, id string) (*lesson.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lessons[id]
	if !ok {
		return nil, shared.ErrLessonNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLessonRepo) GetBySlug(_ context.Context, slug string) (*lesson.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lessons {
		if l.Slug == slug {
			cp := *l
			return &cp, nil
		}
	}
	return nil, shared.ErrLessonNotFound
}

func (r *fakeLessonRepo) List(_ context.Context, f lesson.Filter) ([]*lesson.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*lesson.Lesson
	for _, l := range r.lessons {
		if f.Slug != "" && l.Slug != f.Slug {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeLessonRepo) Update(_ context.Context, l *lesson.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[l.ID]; !ok {
		return shared.ErrLessonNotFound
	}
	cp := *l
	r.lessons[l.ID] = &cp
	return nil
}

func (r *fakeLessonRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[id]; !ok {
		return shared.ErrLessonNotFound
	}
	delete(r.lessons, id)
	return nil
}

func (r *fakeLessonRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lessons {
		if l.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLessonRepo) GetSubjectByName(_ context.Context, name string) (*lesson.Subject, error) {
	for _, s := range r.subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, shared.ErrSubjectNotFound
}

func (r *fakeLessonRepo) GetStageByName(_ context.Context, name string) (*lesson.Stage, error) {
	for _, s := range r.stages {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, shared.ErrStageNotFound
}

func (r *fakeLessonRepo) ListSubjects(_ context.Context) ([]*lesson.Subject, error) {
	return r.subjects, nil
}

func (r *fakeLessonRepo) ListStages(_ context.Context) ([]*lesson.Stage, error) {
	return r.stages, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// memberships
// ─────────────────────────────────────────────────────────────────────────────

type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships map[string]*lesson.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[string]*lesson.Membership)}
}

func (r *fakeMembershipRepo) Create(_ context.Context, m *lesson.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.memberships {
		if existing.LessonID == m.LessonID && existing.StudentID == m.StudentID {
			return shared.ErrAlreadyMember
		}
	}
	cp := *m
	r.memberships[m.ID] = &cp
	return nil
}

func (r *fakeMembershipRepo) Delete(_ context.Context, lessonID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.memberships {
		if m.LessonID == lessonID && m.StudentID == studentID {
			delete(r.memberships, id)
			return nil
		}
	}
	return shared.ErrMembershipNotFound
}

func (r *fakeMembershipRepo) Exists(_ context.Context, lessonID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.LessonID == lessonID && m.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMembershipRepo) ListByStudent(_ context.Context, studentID string) ([]*lesson.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*lesson.Membership
	for _, m := range r.memberships {
		if m.StudentID == studentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListByLesson(_ context.Context, lessonID string) ([]*lesson.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*lesson.Membership
	for _, m := range r.memberships {
		if m.LessonID == lessonID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// rooms
// ─────────────────────────────────────────────────────────────────────────────

// fakeRoomRepo needs the lesson repo to resolve which lessons a teacher owns
// for the bulk close, the same join the SQL implementation does.
type fakeRoomRepo struct {
	mu      sync.Mutex
	rooms   map[string]*room.Room
	lessons *fakeLessonRepo
}

func newFakeRoomRepo(lessons *fakeLessonRepo) *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*room.Room), lessons: lessons}
}

func (r *fakeRoomRepo) Create(_ context.Context, rm *room.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rooms {
		if existing.Key == rm.Key {
			return shared.ErrRoomKeyTaken
		}
		if existing.IsOpen && existing.LessonID == rm.LessonID && existing.StudentID == rm.StudentID {
			return shared.ErrRoomOpen
		}
	}
	cp := *rm
	r.rooms[rm.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) GetOpenByKey(_ context.Context, key string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.rooms {
		if rm.Key == key && rm.IsOpen {
			cp := *rm
			return &cp, nil
		}
	}
	return nil, shared.ErrRoomNotFound
}

func (r *fakeRoomRepo) GetOpenByLessonStudent(_ context.Context, lessonID, studentID string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.rooms {
		if rm.LessonID == lessonID && rm.StudentID == studentID && rm.IsOpen {
			cp := *rm
			return &cp, nil
		}
	}
	return nil, shared.ErrRoomNotFound
}

func (r *fakeRoomRepo) CloseAllForTeacherStudent(ctx context.Context, teacherID, studentID string, closedAt time.Time) (int, error) {
	owned := make(map[string]bool)
	r.lessons.mu.Lock()
	for _, l := range r.lessons.lessons {
		if l.TeacherID == teacherID {
			owned[l.ID] = true
		}
	}
	r.lessons.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	closed := 0
	for _, rm := range r.rooms {
		if rm.IsOpen && rm.StudentID == studentID && owned[rm.LessonID] {
			rm.Close(closedAt)
			closed++
		}
	}
	return closed, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// billing
// ─────────────────────────────────────────────────────────────────────────────

type fakeBillingRepo struct {
	mu         sync.Mutex
	bills      map[string]*billing.Bill
	operations []*billing.AccountOperation
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{bills: make(map[string]*billing.Bill)}
}

func (r *fakeBillingRepo) CreateBill(_ context.Context, b *billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bills[b.ID] = &cp
	return nil
}

func (r *fakeBillingRepo) GetBill(_ context.Context, id string) (*billing.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, shared.ErrBillNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBillingRepo) GetBillForUpdate(ctx context.Context, id string) (*billing.Bill, error) {
	return r.GetBill(ctx, id)
}

func (r *fakeBillingRepo) UpdateBill(_ context.Context, b *billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[b.ID]; !ok {
		return shared.ErrBillNotFound
	}
	cp := *b
	r.bills[b.ID] = &cp
	return nil
}

func (r *fakeBillingRepo) DeleteBill(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[id]; !ok {
		return shared.ErrBillNotFound
	}
	delete(r.bills, id)
	return nil
}

func (r *fakeBillingRepo) ListBillsByUser(_ context.Context, userID string) ([]*billing.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*billing.Bill
	for _, b := range r.bills {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBillingRepo) CreateOperation(_ context.Context, op *billing.AccountOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *op
	r.operations = append(r.operations, &cp)
	return nil
}

func (r *fakeBillingRepo) ListOperationsByUser(_ context.Context, userID string) ([]*billing.AccountOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*billing.AccountOperation
	for _, op := range r.operations {
		if op.UserID == userID {
			cp := *op
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// event capture
// ─────────────────────────────────────────────────────────────────────────────

// captureEmitter records the events the handlers emit.
type captureEmitter struct {
	mu     sync.Mutex
	events []shared.Event
}

func (e *captureEmitter) Emit(_ context.Context, ev shared.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *captureEmitter) kinds() []shared.EventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]shared.EventKind, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Kind)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// test world
// ─────────────────────────────────────────────────────────────────────────────

// world bundles the fakes a handler test needs, pre-seeded with a teacher,
// a student and one published lesson.
type world struct {
	profiles    *fakeProfileRepo
	tokens      *fakeTokenRepo
	lessons     *fakeLessonRepo
	memberships *fakeMembershipRepo
	rooms       *fakeRoomRepo
	bills       *fakeBillingRepo
	emitter     *captureEmitter
	tx          shared.NopTxManager

	teacher *profile.Profile
	student *profile.Profile
	lesson  *lesson.Lesson
}

func newWorld(t interface{ Fatalf(string, ...any) }) *world {
	w := &world{
		profiles: newFakeProfileRepo(),
		tokens:   newFakeTokenRepo(),
		lessons:  newFakeLessonRepo(),
		bills:    newFakeBillingRepo(),
		emitter:  &captureEmitter{},
	}
	w.memberships = newFakeMembershipRepo()
	w.rooms = newFakeRoomRepo(w.lessons)

	ctx := context.Background()
	now := time.Now().UTC()

	w.teacher = &profile.Profile{
		ID: "teacher1", Username: "boris", Email: "boris@example.com",
		FirstName: "Boris", LastName: "Pak", PasswordHash: "hash",
		CanTeach: true, CreatedAt: now, UpdatedAt: now,
	}
	w.student = &profile.Profile{
		ID: "student1", Username: "alice", Email: "alice@example.com",
		FirstName: "Alice", LastName: "Kim", PasswordHash: "hash",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := w.profiles.Create(ctx, w.teacher); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	if err := w.profiles.Create(ctx, w.student); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	w.lesson = &lesson.Lesson{
		ID: "lesson1", TeacherID: w.teacher.ID, Title: "Algebra",
		Slug: "algebra", SubjectID: "subj-math", SubjectName: "Mathematics",
		StageID: "stage-beginner", StageName: "Beginner", Price: 10, CreatedAt: now,
	}
	if err := w.lessons.Create(ctx, w.lesson); err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	return w
}

// subscribe seeds a membership of the student to the seeded lesson.
func (w *world) subscribe(t interface{ Fatalf(string, ...any) }) {
	m, err := lesson.NewMembership("m1", w.lesson.ID, w.student.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("build membership: %v", err)
	}
	if err := w.memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}
