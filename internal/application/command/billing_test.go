package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// rivalTx stands in for a competing request whose transaction commits just
// before ours begins: the hook mutates the store, then the body runs and
// must observe that state through its locked reads.
type rivalTx struct {
	before func()
}

func (m rivalTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	if m.before != nil {
		m.before()
	}
	return fn(ctx)
}

func TestIssueBill(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewIssueBillHandler(w.lessons, w.memberships, w.bills, w.profiles, w.emitter, w.tx)

	b, err := h.Handle(ctx, IssueBillCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
		Amount:          40,
	})
	require.NoError(t, err)
	assert.Equal(t, w.student.ID, b.UserID)
	assert.Equal(t, 40, b.Amount)
	assert.False(t, b.IsPaid)

	require.Len(t, w.emitter.events, 1)
	ev := w.emitter.events[0]
	assert.Equal(t, shared.EventBillCreated, ev.Kind)
	assert.Equal(t, "40", ev.Data)
}

func TestIssueBillNotOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	h := NewIssueBillHandler(w.lessons, w.memberships, w.bills, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, IssueBillCommand{
		ActorID:         w.student.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
		Amount:          40,
	})
	assert.ErrorIs(t, err, shared.ErrNotLessonOwner)
}

func TestIssueBillNotSubscribed(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewIssueBillHandler(w.lessons, w.memberships, w.bills, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, IssueBillCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
		Amount:          40,
	})
	assert.ErrorIs(t, err, shared.ErrMembershipNotFound)
}

// issueBill seeds a 40 token bill for the world's student.
func issueBill(t *testing.T, w *world) *billing.Bill {
	t.Helper()
	h := NewIssueBillHandler(w.lessons, w.memberships, w.bills, w.profiles, w.emitter, w.tx)
	b, err := h.Handle(context.Background(), IssueBillCommand{
		ActorID:         w.teacher.ID,
		LessonSlug:      "algebra",
		StudentUsername: w.student.Username,
		Amount:          40,
	})
	require.NoError(t, err)
	return b
}

func TestPayBill(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)

	w.student.Tokens = 100
	require.NoError(t, w.profiles.Update(ctx, w.student))

	b := issueBill(t, w)
	h := NewPayBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)

	paid, err := h.Handle(ctx, PayBillCommand{ActorID: w.student.ID, BillID: b.ID})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)

	// Tokens moved from the student to the teacher.
	student, err := w.profiles.GetByID(ctx, w.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, student.Tokens)

	teacher, err := w.profiles.GetByID(ctx, w.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, teacher.Tokens)

	assert.Equal(t, []shared.EventKind{shared.EventBillCreated, shared.EventBillPaid}, w.emitter.kinds())
}

func TestPayBillInsufficientTokens(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)

	w.student.Tokens = 10
	require.NoError(t, w.profiles.Update(ctx, w.student))

	b := issueBill(t, w)
	h := NewPayBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, PayBillCommand{ActorID: w.student.ID, BillID: b.ID})
	assert.ErrorIs(t, err, shared.ErrInsufficientTokens)

	// Nothing moved and the bill is still payable.
	student, err := w.profiles.GetByID(ctx, w.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, student.Tokens)

	stored, err := w.bills.GetBill(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
}

func TestPayBillWrongPayer(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	b := issueBill(t, w)
	h := NewPayBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, PayBillCommand{ActorID: w.teacher.ID, BillID: b.ID})
	assert.ErrorIs(t, err, shared.ErrNotBillPayer)
}

func TestPayBillTwice(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)

	w.student.Tokens = 100
	require.NoError(t, w.profiles.Update(ctx, w.student))

	b := issueBill(t, w)
	h := NewPayBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)

	_, err := h.Handle(ctx, PayBillCommand{ActorID: w.student.ID, BillID: b.ID})
	require.NoError(t, err)

	_, err = h.Handle(ctx, PayBillCommand{ActorID: w.student.ID, BillID: b.ID})
	assert.ErrorIs(t, err, shared.ErrBillAlreadyPaid)
}

func TestPayBillRivalPaidFirst(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)

	w.student.Tokens = 100
	require.NoError(t, w.profiles.Update(ctx, w.student))

	b := issueBill(t, w)

	// The rival pay lands between our pre-checks and our transaction.
	rival := rivalTx{before: func() {
		stored, err := w.bills.GetBill(ctx, b.ID)
		require.NoError(t, err)
		require.NoError(t, stored.MarkPaid(time.Now().UTC()))
		require.NoError(t, w.bills.UpdateBill(ctx, stored))
	}}
	h := NewPayBillHandler(w.bills, w.lessons, w.profiles, w.emitter, rival)

	_, err := h.Handle(ctx, PayBillCommand{ActorID: w.student.ID, BillID: b.ID})
	assert.ErrorIs(t, err, shared.ErrBillAlreadyPaid)

	// The student was not debited a second time.
	student, err := w.profiles.GetByID(ctx, w.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, student.Tokens)

	assert.Equal(t, []shared.EventKind{shared.EventBillCreated}, w.emitter.kinds())
}

func TestTradeTokensRivalSoldFirst(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	w.student.Tokens = 30
	require.NoError(t, w.profiles.Update(ctx, w.student))

	// The rival sell drains the balance before our transaction reads it.
	rival := rivalTx{before: func() {
		stored, err := w.profiles.GetByID(ctx, w.student.ID)
		require.NoError(t, err)
		require.NoError(t, stored.Debit(30, time.Now().UTC()))
		require.NoError(t, w.profiles.Update(ctx, stored))
	}}
	h := NewTradeTokensHandler(w.bills, w.profiles, rival)

	_, err := h.Handle(ctx, TradeTokensCommand{ActorID: w.student.ID, Type: billing.OperationSell, Amount: 30})
	assert.ErrorIs(t, err, shared.ErrInsufficientTokens)

	// No ledger entry and no stale balance written back.
	ops, err := w.bills.ListOperationsByUser(ctx, w.student.ID)
	require.NoError(t, err)
	assert.Empty(t, ops)

	student, err := w.profiles.GetByID(ctx, w.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, student.Tokens)
}

func TestDeleteBill(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	b := issueBill(t, w)
	h := NewDeleteBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)

	err := h.Handle(ctx, DeleteBillCommand{ActorID: w.teacher.ID, BillID: b.ID})
	require.NoError(t, err)

	_, err = w.bills.GetBill(ctx, b.ID)
	assert.ErrorIs(t, err, shared.ErrBillNotFound)

	assert.Equal(t, []shared.EventKind{shared.EventBillCreated, shared.EventBillDeleted}, w.emitter.kinds())
}

func TestDeleteBillPaid(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)

	w.student.Tokens = 100
	require.NoError(t, w.profiles.Update(ctx, w.student))

	b := issueBill(t, w)
	pay := NewPayBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)
	_, err := pay.Handle(ctx, PayBillCommand{ActorID: w.student.ID, BillID: b.ID})
	require.NoError(t, err)

	h := NewDeleteBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)
	err = h.Handle(ctx, DeleteBillCommand{ActorID: w.teacher.ID, BillID: b.ID})
	assert.ErrorIs(t, err, shared.ErrBillAlreadyPaid)
}

func TestDeleteBillNotIssuer(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.subscribe(t)
	b := issueBill(t, w)
	h := NewDeleteBillHandler(w.bills, w.lessons, w.profiles, w.emitter, w.tx)

	err := h.Handle(ctx, DeleteBillCommand{ActorID: w.student.ID, BillID: b.ID})
	assert.ErrorIs(t, err, shared.ErrNotBillIssuer)
}

func TestTradeTokens(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewTradeTokensHandler(w.bills, w.profiles, w.tx)

	res, err := h.Handle(ctx, TradeTokensCommand{ActorID: w.student.ID, Type: billing.OperationBuy, Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Balance)

	res, err = h.Handle(ctx, TradeTokensCommand{ActorID: w.student.ID, Type: billing.OperationSell, Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Balance)

	// Each trade left a ledger entry.
	ops, err := w.bills.ListOperationsByUser(ctx, w.student.ID)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, billing.OperationBuy, ops[0].Type)
	assert.Equal(t, billing.OperationSell, ops[1].Type)
}

func TestTradeTokensSellBeyondBalance(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewTradeTokensHandler(w.bills, w.profiles, w.tx)

	_, err := h.Handle(ctx, TradeTokensCommand{ActorID: w.student.ID, Type: billing.OperationSell, Amount: 1})
	assert.ErrorIs(t, err, shared.ErrInsufficientTokens)

	// The failed trade left no ledger entry.
	ops, err := w.bills.ListOperationsByUser(ctx, w.student.ID)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestTradeTokensUnknownType(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	h := NewTradeTokensHandler(w.bills, w.profiles, w.tx)

	_, err := h.Handle(ctx, TradeTokensCommand{ActorID: w.student.ID, Type: billing.OperationType("LEND"), Amount: 5})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
