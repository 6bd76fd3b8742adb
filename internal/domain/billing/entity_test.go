package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

func TestNewBill(t *testing.T) {
	now := time.Now().UTC()

	b, err := NewBill("b1", "student1", "lesson1", 50, now)
	assert.NoError(t, err)
	assert.False(t, b.IsPaid)
	assert.Nil(t, b.PaidAt)

	_, err = NewBill("", "student1", "lesson1", 50, now)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewBill("b1", "student1", "lesson1", 0, now)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = NewBill("b1", "student1", "lesson1", -10, now)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestMarkPaid(t *testing.T) {
	now := time.Now().UTC()
	b, err := NewBill("b1", "student1", "lesson1", 50, now)
	assert.NoError(t, err)

	paidAt := now.Add(time.Hour)
	assert.NoError(t, b.MarkPaid(paidAt))
	assert.True(t, b.IsPaid)
	assert.Equal(t, paidAt, *b.PaidAt)

	assert.ErrorIs(t, b.MarkPaid(paidAt), shared.ErrBillAlreadyPaid)
}

func TestNewAccountOperation(t *testing.T) {
	now := time.Now().UTC()

	op, err := NewAccountOperation("op1", "user1", OperationBuy, 100, now)
	assert.NoError(t, err)
	assert.Equal(t, OperationBuy, op.Type)

	_, err = NewAccountOperation("op1", "user1", OperationType("LEND"), 100, now)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewAccountOperation("op1", "user1", OperationSell, 0, now)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}
