package http

import (
	"time"

	"github.com/koreline/koreline-hub/internal/application/query"
	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/message"
	"github.com/koreline/koreline-hub/internal/domain/notification"
	"github.com/koreline/koreline-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE VIEWS
// Wire representations of the domain entities. Private fields (email, token
// balance, password hash) only ever appear in the owner's own view.
// ══════════════════════════════════════════════════════════════════════════════

type profileView struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DisplayName string     `json:"display_name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	CanTeach    bool       `json:"can_teach"`
	Tokens      *int       `json:"tokens,omitempty"`
	Headline    string     `json:"headline"`
	Biography   string     `json:"biography"`
	CreatedAt   time.Time  `json:"created_at"`
}

// publicProfileView renders the fields anyone may see.
func publicProfileView(p *profile.Profile) profileView {
	return profileView{
		ID:          p.ID,
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName(),
		CanTeach:    p.CanTeach,
		Headline:    p.Headline,
		Biography:   p.Biography,
		CreatedAt:   p.CreatedAt,
	}
}

// ownProfileView adds the private fields for the profile's owner.
func ownProfileView(p *profile.Profile) profileView {
	v := publicProfileView(p)
	v.Email = p.Email
	v.BirthDate = p.BirthDate
	tokens := p.Tokens
	v.Tokens = &tokens
	return v
}

type lessonView struct {
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject"`
	Stage            string    `json:"stage"`
	ShortDescription string    `json:"short_description"`
	LongDescription  string    `json:"long_description"`
	Price            int       `json:"price"`
	TeacherID        string    `json:"teacher_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func newLessonView(l *lesson.Lesson) lessonView {
	return lessonView{
		ID:               l.ID,
		Slug:             l.Slug,
		Title:            l.Title,
		Subject:          l.SubjectName,
		Stage:            l.StageName,
		ShortDescription: l.ShortDescription,
		LongDescription:  l.LongDescription,
		Price:            l.Price,
		TeacherID:        l.TeacherID,
		CreatedAt:        l.CreatedAt,
	}
}

func newLessonViews(ls []*lesson.Lesson) []lessonView {
	out := make([]lessonView, 0, len(ls))
	for _, l := range ls {
		out = append(out, newLessonView(l))
	}
	return out
}

type roomView struct {
	Key         string     `json:"key"`
	IsOpen      bool       `json:"is_open"`
	LessonSlug  string     `json:"lesson_slug"`
	LessonTitle string     `json:"lesson_title"`
	CreatedAt   time.Time  `json:"created_at"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
}

func newRoomView(v *query.RoomView) roomView {
	return roomView{
		Key:         v.Room.Key,
		IsOpen:      v.Room.IsOpen,
		LessonSlug:  v.Lesson.Slug,
		LessonTitle: v.Lesson.Title,
		CreatedAt:   v.Room.CreatedAt,
		CloseDate:   v.Room.CloseDate,
	}
}

type notificationView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Data      string    `json:"data,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotificationViews(ns []*notification.Notification) []notificationView {
	out := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationView{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Text:      n.Text,
			Data:      n.Data,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

type billView struct {
	ID        string     `json:"id"`
	LessonID  string     `json:"lesson_id"`
	Amount    int        `json:"amount"`
	IsPaid    bool       `json:"is_paid"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func newBillView(b *billing.Bill) billView {
	return billView{
		ID:        b.ID,
		LessonID:  b.LessonID,
		Amount:    b.Amount,
		IsPaid:    b.IsPaid,
		CreatedAt: b.CreatedAt,
		PaidAt:    b.PaidAt,
	}
}

func newBillViews(bs []*billing.Bill) []billView {
	out := make([]billView, 0, len(bs))
	for _, b := range bs {
		out = append(out, newBillView(b))
	}
	return out
}

type operationView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func newOperationViews(ops []*billing.AccountOperation) []operationView {
	out := make([]operationView, 0, len(ops))
	for _, op := range ops {
		out = append(out, operationView{
			ID:        op.ID,
			Type:      string(op.Type),
			Amount:    op.Amount,
			CreatedAt: op.CreatedAt,
		})
	}
	return out
}

type commentView struct {
	ID             string    `json:"id"`
	AuthorUsername string    `json:"author_username"`
	AuthorName     string    `json:"author_name"`
	Text           string    `json:"text"`
	Rate           int       `json:"rate"`
	CreatedAt      time.Time `json:"created_at"`
}

func newCommentViews(cs []*query.CommentView) []commentView {
	out := make([]commentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, commentView{
			ID:             c.Comment.ID,
			AuthorUsername: c.AuthorUsername,
			AuthorName:     c.AuthorName,
			Text:           c.Comment.Text,
			Rate:           c.Comment.Rate,
			CreatedAt:      c.Comment.CreatedAt,
		})
	}
	return out
}

type messageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessageView(m *message.Message) messageView {
	return messageView{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Title:     m.Title,
		Text:      m.Text,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func newMessageViews(ms []*message.Message) []messageView {
	out := make([]messageView, 0, len(ms))
	for _, m := range ms {
		out = append(out, newMessageView(m))
	}
	return out
}
