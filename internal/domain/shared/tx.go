package shared

import "context"

// TxManager runs a function inside a single storage transaction.
//
// Implementations carry the transaction in the context so that repository
// calls made inside fn join it. A command uses this to make its mutation
// and the notifications it emits atomic: either all rows land or none do.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTxManager executes fn directly without a transaction. Useful in tests
// with in-memory repositories.
type NopTxManager struct{}

// WithinTx implements TxManager.
func (NopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
