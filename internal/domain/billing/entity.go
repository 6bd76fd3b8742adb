// Package billing contains the token ledger: bills issued by teachers and
// buy/sell operations on token balances.
package billing

import (
	"time"

	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// Bill is a payment request from a lesson's teacher to one of its students.
// Paying a bill moves tokens from the student to the teacher.
type Bill struct {
	ID       string
	UserID   string // the student the bill is addressed to
	LessonID string
	Amount   int
	IsPaid   bool

	CreatedAt time.Time
	PaidAt    *time.Time
}

// NewBill validates and builds an unpaid bill.
func NewBill(id, userID, lessonID string, amount int, now time.Time) (*Bill, error) {
	if id == "" || userID == "" || lessonID == "" {
		return nil, shared.WrapError("billing", "NewBill", shared.ErrInvalidID, "id, user id and lesson id are required", nil)
	}
	if amount <= 0 {
		return nil, shared.WrapError("billing", "NewBill", shared.ErrValueOutOfRange, "amount must be positive", nil)
	}
	return &Bill{
		ID:        id,
		UserID:    userID,
		LessonID:  lessonID,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

// MarkPaid stamps the bill as paid. Fails when already paid.
func (b *Bill) MarkPaid(now time.Time) error {
	if b.IsPaid {
		return shared.ErrBillAlreadyPaid
	}
	b.IsPaid = true
	b.PaidAt = &now
	return nil
}

// OperationType classifies a token account operation.
type OperationType string

const (
	OperationBuy  OperationType = "BUY"
	OperationSell OperationType = "SELL"
)

// IsValid reports whether the type is a known operation type.
func (t OperationType) IsValid() bool {
	return t == OperationBuy || t == OperationSell
}

// AccountOperation is one entry of the token ledger: a purchase or a sale
// of tokens by a profile.
type AccountOperation struct {
	ID        string
	UserID    string
	Type      OperationType
	Amount    int
	CreatedAt time.Time
}

// NewAccountOperation validates and builds a ledger entry.
func NewAccountOperation(id, userID string, typ OperationType, amount int, now time.Time) (*AccountOperation, error) {
	if id == "" || userID == "" {
		return nil, shared.WrapError("billing", "NewOperation", shared.ErrInvalidID, "id and user id are required", nil)
	}
	if !typ.IsValid() {
		return nil, shared.WrapError("billing", "NewOperation", shared.ErrInvalidInput, "unknown operation type", nil)
	}
	if amount <= 0 {
		return nil, shared.WrapError("billing", "NewOperation", shared.ErrValueOutOfRange, "amount must be positive", nil)
	}
	return &AccountOperation{
		ID:        id,
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}
