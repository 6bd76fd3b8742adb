// Package profile contains the user profile aggregate: the account identity,
// the teaching capability flag, and the token balance.
package profile

import (
	"strings"
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// Limits mirrored by the storage schema.
const (
	MaxHeadlineLen  = 70
	MaxBiographyLen = 2048
)

// Profile is a marketplace account. Every account starts as a student;
// CanTeach flips to true the first time the account publishes a lesson and
// never flips back.
type Profile struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string

	// BirthDate is optional.
	BirthDate *time.Time

	// CanTeach marks the profile as a teacher. Read-only from the outside,
	// granted by publishing a lesson.
	CanTeach bool

	// Tokens is the platform currency balance. Never negative.
	Tokens int

	Headline  string
	Biography string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile creates a profile for a fresh registration.
func NewProfile(id, username, email, passwordHash string, now time.Time) (*Profile, error) {
	if id == "" {
		return nil, shared.WrapError("profile", "New", shared.ErrInvalidID, "id is required", nil)
	}
	if username == "" {
		return nil, shared.WrapError("profile", "New", shared.ErrEmptyValue, "username is required", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, shared.WrapError("profile", "New", shared.ErrInvalidFormat, "email is malformed", nil)
	}
	if passwordHash == "" {
		return nil, shared.WrapError("profile", "New", shared.ErrEmptyValue, "password hash is required", nil)
	}
	return &Profile{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// DisplayName returns the full name when set, otherwise the username.
func (p *Profile) DisplayName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full != "" {
		return full
	}
	return p.Username
}

// GrantTeaching marks the profile as a teacher. Idempotent.
func (p *Profile) GrantTeaching(now time.Time) {
	if p.CanTeach {
		return
	}
	p.CanTeach = true
	p.UpdatedAt = now
}

// Credit adds tokens to the balance.
func (p *Profile) Credit(amount int, now time.Time) error {
	if amount <= 0 {
		return shared.WrapError("profile", "Credit", shared.ErrValueOutOfRange, "amount must be positive", nil)
	}
	p.Tokens += amount
	p.UpdatedAt = now
	return nil
}

// Debit removes tokens from the balance. Fails when the balance would go
// negative.
func (p *Profile) Debit(amount int, now time.Time) error {
	if amount <= 0 {
		return shared.WrapError("profile", "Debit", shared.ErrValueOutOfRange, "amount must be positive", nil)
	}
	if amount > p.Tokens {
		return shared.ErrInsufficientTokens
	}
	p.Tokens -= amount
	p.UpdatedAt = now
	return nil
}

// Party packs the profile into an event party descriptor.
func (p *Profile) Party() shared.Party {
	return shared.Party{
		ProfileID:   p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName(),
	}
}
