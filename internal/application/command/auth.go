// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER ACCOUNT COMMAND
// Creates a profile from an email and password. The username is derived from
// the email local part; a numeric suffix resolves collisions. Every fresh
// account starts as a student with an empty token balance.
// ══════════════════════════════════════════════════════════════════════════════

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// RegisterAccountCommand contains the data to create an account.
type RegisterAccountCommand struct {
	// Email is the login email, unique across accounts.
	Email string

	// Password is the plaintext password, hashed before storage.
	Password string

	// FirstName is optional.
	FirstName string

	// LastName is optional.
	LastName string
}

// Validate validates the command.
func (c RegisterAccountCommand) Validate() error {
	if !strings.Contains(c.Email, "@") || strings.HasPrefix(c.Email, "@") {
		return shared.WrapError("profile", "Register", shared.ErrInvalidFormat, "email is malformed", nil)
	}
	if len(c.Password) < MinPasswordLen {
		return shared.WrapError("profile", "Register", shared.ErrValidation,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLen), nil)
	}
	return nil
}

// RegisterAccountResult contains the result of a registration.
type RegisterAccountResult struct {
	// ProfileID is the ID of the created profile.
	ProfileID string

	// Username is the derived unique username.
	Username string

	// Token is the opaque API token issued for the new account.
	Token string
}

// RegisterAccountHandler handles the RegisterAccountCommand.
type RegisterAccountHandler struct {
	profiles profile.Repository
	tokens   profile.TokenRepository
	tx       shared.TxManager
}

// NewRegisterAccountHandler creates a new RegisterAccountHandler.
func NewRegisterAccountHandler(
	profiles profile.Repository,
	tokens profile.TokenRepository,
	tx shared.TxManager,
) *RegisterAccountHandler {
	return &RegisterAccountHandler{profiles: profiles, tokens: tokens, tx: tx}
}

// Handle executes the register account command.
func (h *RegisterAccountHandler) Handle(ctx context.Context, cmd RegisterAccountCommand) (*RegisterAccountResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	username, err := h.deriveUsername(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: derive username: %w", err)
	}

	now := time.Now().UTC()
	p, err := profile.NewProfile(uuid.NewString(), username, email, string(hash), now)
	if err != nil {
		return nil, err
	}
	p.FirstName = strings.TrimSpace(cmd.FirstName)
	p.LastName = strings.TrimSpace(cmd.LastName)

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.profiles.Create(ctx, p); err != nil {
			return err
		}
		return h.tokens.Store(ctx, token, p.ID)
	})
	if err != nil {
		return nil, err
	}

	return &RegisterAccountResult{ProfileID: p.ID, Username: p.Username, Token: token}, nil
}

// deriveUsername builds a unique username from the email local part,
// appending a counter until the name is free.
func (h *RegisterAccountHandler) deriveUsername(ctx context.Context, email string) (string, error) {
	base := sanitizeUsername(email[:strings.Index(email, "@")])
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := h.profiles.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

// sanitizeUsername keeps lowercase letters, digits, dots and hyphens.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".-")
}

// generateToken returns a 40-character opaque hex token.
func generateToken() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// LoginCommand authenticates an account and issues a fresh token.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult contains the issued token.
type LoginResult struct {
	ProfileID string
	Username  string
	Token     string
}

// LoginHandler handles the LoginCommand.
type LoginHandler struct {
	profiles profile.Repository
	tokens   profile.TokenRepository
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(profiles profile.Repository, tokens profile.TokenRepository) *LoginHandler {
	return &LoginHandler{profiles: profiles, tokens: tokens}
}

// Handle executes the login command. Unknown emails and wrong passwords
// produce the same error so the response does not leak which one it was.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))

	p, err := h.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}
	if err := h.tokens.Store(ctx, token, p.ID); err != nil {
		return nil, err
	}

	return &LoginResult{ProfileID: p.ID, Username: p.Username, Token: token}, nil
}
