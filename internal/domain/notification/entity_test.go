package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

func TestTypeIsValid(t *testing.T) {
	valid := []Type{
		TypeInvite, TypeSubscribe, TypeTeacherUnsubscribe, TypeStudentUnsubscribe,
		TypeComment, TypeNewBill, TypePaidBill, TypeDeleteBill,
	}
	for _, typ := range valid {
		assert.True(t, typ.IsValid(), "type %q", typ)
	}

	assert.False(t, Type("").IsValid())
	assert.False(t, Type("SPAM").IsValid())
}

func TestNewNotification(t *testing.T) {
	now := time.Now().UTC()

	n, err := New("n1", "user1", "New student", "Someone subscribed.", TypeSubscribe, "alice", now)
	assert.NoError(t, err)
	assert.False(t, n.IsRead)
	assert.Equal(t, "alice", n.Data)

	_, err = New("", "user1", "t", "x", TypeSubscribe, "", now)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = New("n1", "user1", "", "x", TypeSubscribe, "", now)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = New("n1", "user1", "t", "x", Type("SPAM"), "", now)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = New("n1", "user1", strings.Repeat("t", MaxTitleLen+1), "x", TypeSubscribe, "", now)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = New("n1", "user1", "t", "x", TypeInvite, strings.Repeat("d", MaxDataLen+1), now)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestMarkRead(t *testing.T) {
	now := time.Now().UTC()
	n, err := New("n1", "user1", "t", "x", TypeInvite, "", now)
	assert.NoError(t, err)

	n.MarkRead()
	assert.True(t, n.IsRead)
	n.MarkRead()
	assert.True(t, n.IsRead)
}
