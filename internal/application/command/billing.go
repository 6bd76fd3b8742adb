package command

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/koreline/koreline-hub/internal/domain/billing"
	"github.com/koreline/koreline-hub/internal/domain/lesson"
	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ISSUE BILL COMMAND
// A teacher bills one of their lesson's students. The student is notified
// in the same transaction.
// ══════════════════════════════════════════════════════════════════════════════

// IssueBillCommand creates a bill for a subscribed student.
type IssueBillCommand struct {
	// ActorID must own the lesson.
	ActorID string

	LessonSlug      string
	StudentUsername string
	Amount          int
}

// IssueBillHandler handles the IssueBillCommand.
type IssueBillHandler struct {
	lessons     lesson.Repository
	memberships lesson.MembershipRepository
	bills       billing.Repository
	profiles    profile.Repository
	emitter     shared.EventEmitter
	tx          shared.TxManager
}

// NewIssueBillHandler creates a new IssueBillHandler.
func NewIssueBillHandler(
	lessons lesson.Repository,
	memberships lesson.MembershipRepository,
	bills billing.Repository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *IssueBillHandler {
	return &IssueBillHandler{
		lessons:     lessons,
		memberships: memberships,
		bills:       bills,
		profiles:    profiles,
		emitter:     emitter,
		tx:          tx,
	}
}

// Handle executes the issue bill command.
func (h *IssueBillHandler) Handle(ctx context.Context, cmd IssueBillCommand) (*billing.Bill, error) {
	l, err := h.lessons.GetBySlug(ctx, cmd.LessonSlug)
	if err != nil {
		return nil, err
	}
	if l.TeacherID != cmd.ActorID {
		return nil, shared.ErrNotLessonOwner
	}

	student, err := h.profiles.GetByUsername(ctx, cmd.StudentUsername)
	if err != nil {
		return nil, err
	}
	teacher, err := h.profiles.GetByID(ctx, l.TeacherID)
	if err != nil {
		return nil, err
	}

	subscribed, err := h.memberships.Exists(ctx, l.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if !subscribed {
		return nil, shared.ErrMembershipNotFound
	}

	now := time.Now().UTC()
	b, err := billing.NewBill(uuid.NewString(), student.ID, l.ID, cmd.Amount, now)
	if err != nil {
		return nil, err
	}

	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.bills.CreateBill(ctx, b); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:        shared.EventBillCreated,
			Teacher:     teacher.Party(),
			Student:     student.Party(),
			LessonTitle: l.Title,
			Data:        strconv.Itoa(b.Amount),
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PAY BILL COMMAND
// The billed student pays: tokens move from the student to the teacher and
// the bill is stamped paid, all in one transaction. The teacher is notified.
// ══════════════════════════════════════════════════════════════════════════════

// PayBillCommand pays a bill addressed to the actor.
type PayBillCommand struct {
	// ActorID must be the billed student.
	ActorID string

	BillID string
}

// PayBillHandler handles the PayBillCommand.
type PayBillHandler struct {
	bills    billing.Repository
	lessons  lesson.Repository
	profiles profile.Repository
	emitter  shared.EventEmitter
	tx       shared.TxManager
}

// NewPayBillHandler creates a new PayBillHandler.
func NewPayBillHandler(
	bills billing.Repository,
	lessons lesson.Repository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *PayBillHandler {
	return &PayBillHandler{bills: bills, lessons: lessons, profiles: profiles, emitter: emitter, tx: tx}
}

// Handle executes the pay bill command. The bill and both balances are
// read under row locks inside the transaction, so two concurrent pays of
// the same bill serialize and the loser sees the paid state.
func (h *PayBillHandler) Handle(ctx context.Context, cmd PayBillCommand) (*billing.Bill, error) {
	b, err := h.bills.GetBill(ctx, cmd.BillID)
	if err != nil {
		return nil, err
	}
	if b.UserID != cmd.ActorID {
		return nil, shared.ErrNotBillPayer
	}

	l, err := h.lessons.GetByID(ctx, b.LessonID)
	if err != nil {
		return nil, err
	}

	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err = h.bills.GetBillForUpdate(ctx, cmd.BillID)
		if err != nil {
			return err
		}

		// Profiles are locked in ID order so opposing pays between the
		// same two parties cannot deadlock.
		lockOrder := [2]string{b.UserID, l.TeacherID}
		if lockOrder[1] < lockOrder[0] {
			lockOrder[0], lockOrder[1] = lockOrder[1], lockOrder[0]
		}
		var student, teacher *profile.Profile
		for _, id := range lockOrder {
			p, err := h.profiles.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if id == b.UserID {
				student = p
			} else {
				teacher = p
			}
		}

		now := time.Now().UTC()
		if err := b.MarkPaid(now); err != nil {
			return err
		}
		if err := student.Debit(b.Amount, now); err != nil {
			return err
		}
		if err := teacher.Credit(b.Amount, now); err != nil {
			return err
		}

		if err := h.profiles.Update(ctx, student); err != nil {
			return err
		}
		if err := h.profiles.Update(ctx, teacher); err != nil {
			return err
		}
		if err := h.bills.UpdateBill(ctx, b); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:        shared.EventBillPaid,
			Teacher:     teacher.Party(),
			Student:     student.Party(),
			LessonTitle: l.Title,
			Data:        strconv.Itoa(b.Amount),
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE BILL COMMAND
// The issuing teacher withdraws an unpaid bill. The student is notified.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteBillCommand withdraws an unpaid bill.
type DeleteBillCommand struct {
	// ActorID must own the billed lesson.
	ActorID string

	BillID string
}

// DeleteBillHandler handles the DeleteBillCommand.
type DeleteBillHandler struct {
	bills    billing.Repository
	lessons  lesson.Repository
	profiles profile.Repository
	emitter  shared.EventEmitter
	tx       shared.TxManager
}

// NewDeleteBillHandler creates a new DeleteBillHandler.
func NewDeleteBillHandler(
	bills billing.Repository,
	lessons lesson.Repository,
	profiles profile.Repository,
	emitter shared.EventEmitter,
	tx shared.TxManager,
) *DeleteBillHandler {
	return &DeleteBillHandler{bills: bills, lessons: lessons, profiles: profiles, emitter: emitter, tx: tx}
}

// Handle executes the delete bill command.
func (h *DeleteBillHandler) Handle(ctx context.Context, cmd DeleteBillCommand) error {
	b, err := h.bills.GetBill(ctx, cmd.BillID)
	if err != nil {
		return err
	}
	if b.IsPaid {
		return shared.ErrBillAlreadyPaid
	}

	l, err := h.lessons.GetByID(ctx, b.LessonID)
	if err != nil {
		return err
	}
	if l.TeacherID != cmd.ActorID {
		return shared.ErrNotBillIssuer
	}

	student, err := h.profiles.GetByID(ctx, b.UserID)
	if err != nil {
		return err
	}
	teacher, err := h.profiles.GetByID(ctx, l.TeacherID)
	if err != nil {
		return err
	}

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.bills.DeleteBill(ctx, b.ID); err != nil {
			return err
		}
		return h.emitter.Emit(ctx, shared.Event{
			Kind:        shared.EventBillDeleted,
			Teacher:     teacher.Party(),
			Student:     student.Party(),
			LessonTitle: l.Title,
			OccurredAt:  time.Now().UTC(),
		})
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TRADE TOKENS COMMAND
// Buys or sells platform tokens. Every trade appends a ledger entry;
// selling below the balance is rejected.
// ══════════════════════════════════════════════════════════════════════════════

// TradeTokensCommand mutates the actor's token balance.
type TradeTokensCommand struct {
	ActorID string
	Type    billing.OperationType
	Amount  int
}

// TradeTokensResult contains the new balance.
type TradeTokensResult struct {
	Balance int
}

// TradeTokensHandler handles the TradeTokensCommand.
type TradeTokensHandler struct {
	bills    billing.Repository
	profiles profile.Repository
	tx       shared.TxManager
}

// NewTradeTokensHandler creates a new TradeTokensHandler.
func NewTradeTokensHandler(bills billing.Repository, profiles profile.Repository, tx shared.TxManager) *TradeTokensHandler {
	return &TradeTokensHandler{bills: bills, profiles: profiles, tx: tx}
}

// Handle executes the trade tokens command. The balance is read under a
// row lock inside the transaction, so concurrent trades serialize and a
// sell can never overdraw against a stale read.
func (h *TradeTokensHandler) Handle(ctx context.Context, cmd TradeTokensCommand) (*TradeTokensResult, error) {
	now := time.Now().UTC()
	op, err := billing.NewAccountOperation(uuid.NewString(), cmd.ActorID, cmd.Type, cmd.Amount, now)
	if err != nil {
		return nil, err
	}

	var balance int
	err = h.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := h.profiles.GetByIDForUpdate(ctx, cmd.ActorID)
		if err != nil {
			return err
		}

		switch cmd.Type {
		case billing.OperationBuy:
			err = p.Credit(cmd.Amount, now)
		case billing.OperationSell:
			err = p.Debit(cmd.Amount, now)
		}
		if err != nil {
			return err
		}

		if err := h.profiles.Update(ctx, p); err != nil {
			return err
		}
		if err := h.bills.CreateOperation(ctx, op); err != nil {
			return err
		}
		balance = p.Tokens
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TradeTokensResult{Balance: balance}, nil
}
