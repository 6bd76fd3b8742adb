// Package room contains the conversation room: a short-lived channel a
// teacher opens towards one subscribed student.
package room

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// KeyLength is the length of a room key in characters.
const KeyLength = 32

// Room is a conversation channel between a lesson's teacher and one of its
// students. Open rooms are addressable by key; closing is terminal, a new
// conversation means a new room.
type Room struct {
	ID        string
	LessonID  string
	StudentID string

	// Key is the unguessable join credential, 32 lowercase hex characters.
	Key string

	IsOpen    bool
	CreatedAt time.Time
	CloseDate *time.Time
}

// NewRoom builds an open room with the given key.
func NewRoom(id, lessonID, studentID, key string, now time.Time) (*Room, error) {
	if id == "" || lessonID == "" || studentID == "" {
		return nil, shared.WrapError("room", "New", shared.ErrInvalidID, "id, lesson id and student id are required", nil)
	}
	if !ValidKey(key) {
		return nil, shared.WrapError("room", "New", shared.ErrInvalidFormat, "key must be 32 lowercase hex characters", nil)
	}
	return &Room{
		ID:        id,
		LessonID:  lessonID,
		StudentID: studentID,
		Key:       key,
		IsOpen:    true,
		CreatedAt: now,
	}, nil
}

// Close marks the room closed and stamps the close time. Idempotent.
func (r *Room) Close(now time.Time) {
	if !r.IsOpen {
		return
	}
	r.IsOpen = false
	r.CloseDate = &now
}

// GenerateKey returns a fresh random room key: 16 bytes of entropy encoded
// as 32 lowercase hex characters.
func GenerateKey() (string, error) {
	raw := make([]byte, KeyLength/2)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate room key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// ValidKey reports whether s has the shape of a room key.
func ValidKey(s string) bool {
	if len(s) != KeyLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
