package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BILLING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BillingRepository implements billing.Repository for PostgreSQL.
type BillingRepository struct {
	conn *Connection
}

// NewBillingRepository creates a new BillingRepository.
func NewBillingRepository(conn *Connection) *BillingRepository {
	return &BillingRepository{conn: conn}
}

// CreateBill creates a bill.
func (r *BillingRepository) CreateBill(ctx context.Context, b *billing.Bill) error {
	query := `
		INSERT INTO bills (id, user_id, lesson_id, amount, is_paid, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		b.ID, b.UserID, b.LessonID, b.Amount, b.IsPaid, b.CreatedAt, b.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetBill returns a bill by ID.
func (r *BillingRepository) GetBill(ctx context.Context, id string) (*billing.Bill, error) {
	query := `
		SELECT id, user_id, lesson_id, amount, is_paid, created_at, paid_at
		FROM bills WHERE id = $1
	`
	return r.scanBill(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// GetBillForUpdate returns a bill by ID, locking the row until the
// surrounding transaction ends.
func (r *BillingRepository) GetBillForUpdate(ctx context.Context, id string) (*billing.Bill, error) {
	query := `
		SELECT id, user_id, lesson_id, amount, is_paid, created_at, paid_at
		FROM bills WHERE id = $1 FOR UPDATE
	`
	return r.scanBill(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// UpdateBill saves the paid state of a bill.
func (r *BillingRepository) UpdateBill(ctx context.Context, b *billing.Bill) error {
	tag, err := r.conn.querier(ctx).Exec(ctx,
		`UPDATE bills SET is_paid = $1, paid_at = $2 WHERE id = $3`,
		b.IsPaid, b.PaidAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrBillNotFound
	}
	return nil
}

// DeleteBill removes a bill.
func (r *BillingRepository) DeleteBill(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrBillNotFound
	}
	return nil
}

// ListBillsByUser returns the bills addressed to a student, newest first.
func (r *BillingRepository) ListBillsByUser(ctx context.Context, userID string) ([]*billing.Bill, error) {
	query := `
		SELECT id, user_id, lesson_id, amount, is_paid, created_at, paid_at
		FROM bills WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var out []*billing.Bill
	for rows.Next() {
		b, err := r.scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateOperation appends a token ledger entry.
func (r *BillingRepository) CreateOperation(ctx context.Context, op *billing.AccountOperation) error {
	query := `
		INSERT INTO account_operations (id, user_id, type, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		op.ID, op.UserID, string(op.Type), op.Amount, op.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account operation: %w", err)
	}
	return nil
}

// ListOperationsByUser returns a profile's ledger entries, newest first.
func (r *BillingRepository) ListOperationsByUser(ctx context.Context, userID string) ([]*billing.AccountOperation, error) {
	query := `
		SELECT id, user_id, type, amount, created_at
		FROM account_operations WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account operations: %w", err)
	}
	defer rows.Close()

	var out []*billing.AccountOperation
	for rows.Next() {
		var op billing.AccountOperation
		var typ string
		if err := rows.Scan(&op.ID, &op.UserID, &typ, &op.Amount, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account operation: %w", err)
		}
		op.Type = billing.OperationType(typ)
		out = append(out, &op)
	}
	return out, rows.Err()
}

// scanBill scans one bill row.
func (r *BillingRepository) scanBill(row pgx.Row) (*billing.Bill, error) {
	var b billing.Bill
	err := row.Scan(&b.ID, &b.UserID, &b.LessonID, &b.Amount, &b.IsPaid, &b.CreatedAt, &b.PaidAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrBillNotFound
		}
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}
	return &b, nil
}
