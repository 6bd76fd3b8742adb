package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const profileColumns = `id, username, email, first_name, last_name, password_hash,
	birth_date, can_teach, tokens, headline, biography, created_at, updated_at`

// ProfileRepository implements profile.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// Create creates a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		p.ID,
		p.Username,
		p.Email,
		p.FirstName,
		p.LastName,
		p.PasswordHash,
		p.BirthDate,
		p.CanTeach,
		p.Tokens,
		p.Headline,
		p.Biography,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if constraint := UniqueViolationConstraint(err); constraint != "" {
			if strings.Contains(constraint, "email") {
				return shared.ErrEmailTaken
			}
			return shared.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID returns a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanProfile(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// GetByIDForUpdate returns a profile by ID, locking the row until the
// surrounding transaction ends.
func (r *ProfileRepository) GetByIDForUpdate(ctx context.Context, id string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 FOR UPDATE`
	return r.scanProfile(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// GetByUsername returns a profile by username.
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	return r.scanProfile(r.conn.querier(ctx).QueryRow(ctx, query, username))
}

// GetByEmail returns a profile by email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanProfile(r.conn.querier(ctx).QueryRow(ctx, query, email))
}

// Update updates mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles SET
			first_name = $1,
			last_name = $2,
			birth_date = $3,
			can_teach = $4,
			tokens = $5,
			headline = $6,
			biography = $7,
			updated_at = $8
		WHERE id = $9
	`

	tag, err := r.conn.querier(ctx).Exec(ctx, query,
		p.FirstName,
		p.LastName,
		p.BirthDate,
		p.CanTeach,
		p.Tokens,
		p.Headline,
		p.Biography,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}
	return nil
}

// UsernameExists reports whether a username is taken.
func (r *ProfileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// scanProfile scans one profile row.
func (r *ProfileRepository) scanProfile(row pgx.Row) (*profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.PasswordHash,
		&p.BirthDate,
		&p.CanTeach,
		&p.Tokens,
		&p.Headline,
		&p.Biography,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return &p, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH TOKEN REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TokenRepository implements profile.TokenRepository for PostgreSQL.
type TokenRepository struct {
	conn *Connection
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(conn *Connection) *TokenRepository {
	return &TokenRepository{conn: conn}
}

// Store associates a token with a profile.
func (r *TokenRepository) Store(ctx context.Context, token, profileID string) error {
	_, err := r.conn.querier(ctx).Exec(ctx,
		`INSERT INTO auth_tokens (token, profile_id) VALUES ($1, $2)`, token, profileID)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// GetProfileID resolves a token to a profile ID.
func (r *TokenRepository) GetProfileID(ctx context.Context, token string) (string, error) {
	var profileID string
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT profile_id FROM auth_tokens WHERE token = $1`, token,
	).Scan(&profileID)
	if err != nil {
		if IsNoRows(err) {
			return "", shared.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}
	return profileID, nil
}

// Delete revokes a token.
func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.conn.querier(ctx).Exec(ctx,
		`DELETE FROM auth_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
