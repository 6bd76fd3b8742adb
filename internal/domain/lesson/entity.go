// Package lesson contains the lesson offer aggregate and the membership
// records that tie students to it.
package lesson

import (
	"strings"
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// Limits mirrored by the storage schema.
const (
	MaxTitleLen     = 64
	MaxShortDescLen = 255
	MaxLongDescLen  = 2048
)

// Subject is a taught discipline, referenced by lessons.
type Subject struct {
	ID   string
	Name string
}

// Stage is an education level, referenced by lessons.
type Stage struct {
	ID   string
	Name string
}

// Lesson is a teacher's standing offer to teach a subject at a stage for a
// per-unit token price. The slug is the public identifier used in URLs.
type Lesson struct {
	ID        string
	TeacherID string
	Title     string
	Slug      string

	SubjectID   string
	SubjectName string
	StageID     string
	StageName   string

	ShortDescription string
	LongDescription  string

	// Price is tokens per 15 minutes of conversation.
	Price int

	CreatedAt time.Time
}

// NewLesson validates and builds a lesson. The slug must already be
// disambiguated by the caller.
func NewLesson(id, teacherID, title, slug string, price int, now time.Time) (*Lesson, error) {
	if id == "" || teacherID == "" {
		return nil, shared.WrapError("lesson", "New", shared.ErrInvalidID, "id and teacher id are required", nil)
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.WrapError("lesson", "New", shared.ErrEmptyValue, "title is required", nil)
	}
	if len(title) > MaxTitleLen {
		return nil, shared.WrapError("lesson", "New", shared.ErrValueOutOfRange, "title too long", nil)
	}
	if slug == "" {
		return nil, shared.WrapError("lesson", "New", shared.ErrEmptyValue, "slug is required", nil)
	}
	if price < 0 {
		return nil, shared.WrapError("lesson", "New", shared.ErrNegativeValue, "price cannot be negative", nil)
	}
	return &Lesson{
		ID:        id,
		TeacherID: teacherID,
		Title:     strings.TrimSpace(title),
		Slug:      slug,
		Price:     price,
		CreatedAt: now,
	}, nil
}

// Slugify turns a title into a URL slug: lowercase ASCII letters and digits
// separated by single hyphens. Uniqueness suffixes are appended by the
// caller when the base slug is taken.
func Slugify(title string) string {
	var b strings.Builder
	prevHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
