package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

func TestNewProfile(t *testing.T) {
	now := time.Now().UTC()

	p, err := NewProfile("p1", "alice", "alice@example.com", "hash", now)
	assert.NoError(t, err)
	assert.False(t, p.CanTeach)
	assert.Equal(t, 0, p.Tokens)

	_, err = NewProfile("", "alice", "alice@example.com", "hash", now)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewProfile("p1", "", "alice@example.com", "hash", now)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = NewProfile("p1", "alice", "not-an-email", "hash", now)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)

	_, err = NewProfile("p1", "alice", "alice@example.com", "", now)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestDisplayName(t *testing.T) {
	p := &Profile{Username: "alice"}
	assert.Equal(t, "alice", p.DisplayName())

	p.FirstName = "Alice"
	assert.Equal(t, "Alice", p.DisplayName())

	p.LastName = "Kim"
	assert.Equal(t, "Alice Kim", p.DisplayName())
}

func TestGrantTeaching(t *testing.T) {
	now := time.Now().UTC()
	p := &Profile{Username: "alice", UpdatedAt: now}

	later := now.Add(time.Hour)
	p.GrantTeaching(later)
	assert.True(t, p.CanTeach)
	assert.Equal(t, later, p.UpdatedAt)

	// Idempotent: a second grant does not touch the timestamp.
	p.GrantTeaching(later.Add(time.Hour))
	assert.Equal(t, later, p.UpdatedAt)
}

func TestCreditDebit(t *testing.T) {
	now := time.Now().UTC()
	p := &Profile{Username: "alice"}

	assert.NoError(t, p.Credit(100, now))
	assert.Equal(t, 100, p.Tokens)

	assert.NoError(t, p.Debit(40, now))
	assert.Equal(t, 60, p.Tokens)

	err := p.Debit(61, now)
	assert.ErrorIs(t, err, shared.ErrInsufficientTokens)
	assert.Equal(t, 60, p.Tokens)

	assert.ErrorIs(t, p.Credit(0, now), shared.ErrValueOutOfRange)
	assert.ErrorIs(t, p.Credit(-5, now), shared.ErrValueOutOfRange)
	assert.ErrorIs(t, p.Debit(0, now), shared.ErrValueOutOfRange)
}
