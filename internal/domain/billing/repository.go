package billing

import "context"

// Repository persists bills and account operations.
type Repository interface {
	// CreateBill stores a new bill.
	CreateBill(ctx context.Context, b *Bill) error

	// GetBill returns a bill or shared.ErrBillNotFound.
	GetBill(ctx context.Context, id string) (*Bill, error)

	// GetBillForUpdate returns a bill with its row locked for the duration
	// of the surrounding transaction, so a concurrent pay of the same bill
	// waits and then observes the paid state.
	GetBillForUpdate(ctx context.Context, id string) (*Bill, error)

	// UpdateBill saves the paid state of a bill.
	UpdateBill(ctx context.Context, b *Bill) error

	// DeleteBill removes a bill. Returns shared.ErrBillNotFound when it
	// does not exist.
	DeleteBill(ctx context.Context, id string) error

	// ListBillsByUser returns the bills addressed to a student, newest first.
	ListBillsByUser(ctx context.Context, userID string) ([]*Bill, error)

	// CreateOperation appends a token ledger entry.
	CreateOperation(ctx context.Context, op *AccountOperation) error

	// ListOperationsByUser returns a profile's ledger entries, newest first.
	ListOperationsByUser(ctx context.Context, userID string) ([]*AccountOperation, error)
}
