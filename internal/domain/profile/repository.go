package profile

import "context"

// Repository persists profiles.
type Repository interface {
	// Create stores a new profile. Returns shared.ErrUsernameTaken or
	// shared.ErrEmailTaken on uniqueness violations.
	Create(ctx context.Context, p *Profile) error

	// GetByID returns a profile by ID or shared.ErrProfileNotFound.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// GetByIDForUpdate returns a profile by ID with its row locked for the
	// duration of the surrounding transaction. Balance mutations must read
	// through this so concurrent writers serialize instead of overwriting
	// each other.
	GetByIDForUpdate(ctx context.Context, id string) (*Profile, error)

	// GetByUsername returns a profile by username or shared.ErrProfileNotFound.
	GetByUsername(ctx context.Context, username string) (*Profile, error)

	// GetByEmail returns a profile by email or shared.ErrProfileNotFound.
	GetByEmail(ctx context.Context, email string) (*Profile, error)

	// Update saves mutable profile fields.
	Update(ctx context.Context, p *Profile) error

	// UsernameExists reports whether a username is taken.
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// TokenRepository persists opaque API tokens for the auth gate.
type TokenRepository interface {
	// Store associates a token with a profile.
	Store(ctx context.Context, token, profileID string) error

	// GetProfileID resolves a token to a profile ID or returns
	// shared.ErrTokenNotFound.
	GetProfileID(ctx context.Context, token string) (string, error)

	// Delete revokes a token.
	Delete(ctx context.Context, token string) error
}
