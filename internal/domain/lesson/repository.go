package lesson

import "context"

// Filter narrows lesson listings.
type Filter struct {
	// TeacherUsername keeps only lessons owned by this teacher.
	TeacherUsername string

	// Slug keeps only the lesson with this slug.
	Slug string
}

// Repository persists lessons and the subject/stage lookup tables.
type Repository interface {
	// Create stores a new lesson. Returns shared.ErrSlugTaken on a slug
	// uniqueness violation.
	Create(ctx context.Context, l *Lesson) error

	// GetByID returns a lesson by ID or shared.ErrLessonNotFound.
	GetByID(ctx context.Context, id string) (*Lesson, error)

	// GetBySlug returns a lesson by slug or shared.ErrLessonNotFound.
	GetBySlug(ctx context.Context, slug string) (*Lesson, error)

	// List returns lessons matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]*Lesson, error)

	// Update saves mutable lesson fields.
	Update(ctx context.Context, l *Lesson) error

	// Delete removes a lesson. Memberships, rooms and bills referencing it
	// are removed with it.
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether a slug is taken.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// GetSubjectByName returns a subject or shared.ErrSubjectNotFound.
	GetSubjectByName(ctx context.Context, name string) (*Subject, error)

	// GetStageByName returns a stage or shared.ErrStageNotFound.
	GetStageByName(ctx context.Context, name string) (*Stage, error)

	// ListSubjects returns all subjects ordered by name.
	ListSubjects(ctx context.Context) ([]*Subject, error)

	// ListStages returns all stages ordered by name.
	ListStages(ctx context.Context) ([]*Stage, error)
}

// MembershipRepository persists lesson memberships.
type MembershipRepository interface {
	// Create stores a membership. Returns shared.ErrAlreadyMember when the
	// (lesson, student) pair already exists, including when a concurrent
	// request won the race.
	Create(ctx context.Context, m *Membership) error

	// Delete removes the membership for the pair. Returns
	// shared.ErrMembershipNotFound when there is none.
	Delete(ctx context.Context, lessonID, studentID string) error

	// Exists reports whether the student is subscribed to the lesson.
	Exists(ctx context.Context, lessonID, studentID string) (bool, error)

	// ListByStudent returns the student's memberships, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*Membership, error)

	// ListByLesson returns the lesson's memberships, newest first.
	ListByLesson(ctx context.Context, lessonID string) ([]*Membership, error)
}
