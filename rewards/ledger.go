/*
ledger.go - Append-only point transaction log

PURPOSE:
  The ledger is the immutable record of every point balance change:
  quiz accruals, visit bonuses, redemptions, manual adjustments. The
  balance is the fold of a visitor's transactions - there is no
  mutable balance the engine writes to directly.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. EVER.
  2. IDEMPOTENT: Same idempotency key = same transaction (no duplicates)
  3. NON-NEGATIVE: No transaction may drive a balance below zero

IDEMPOTENCY KEYS:
  Quiz accrual uses the quiz result ID as the key, so a result is
  awarded at most once, ever; retrying a submission is a no-op.
  Visit bonuses use "visit-bonus:<visitor>:<threshold>", so each
  visit-count threshold is granted at most once, ever. Redemptions
  use a fresh UUID per confirmed user action - redemption is
  deliberately NOT idempotent.

SEE ALSO:
  - store/sqlite: TransactionStore implementation
  - accrual.go: produces the deltas this ledger applies
*/
package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRANSACTION - Atomic change to a point balance
// =============================================================================

type TransactionType string

const (
	TxEarnQuiz  TransactionType = "earn_quiz"  // Quiz-completion accrual
	TxEarnVisit TransactionType = "earn_visit" // Visit-count threshold bonus
	TxRedeem    TransactionType = "redeem"     // Points spent on a reward
	TxAdjust    TransactionType = "adjust"     // Manual admin correction
)

// Transaction is one immutable ledger entry. Delta is negative for
// redemptions, positive otherwise.
type Transaction struct {
	ID             TransactionID
	VisitorID      VisitorID
	Delta          Points
	Type           TransactionType
	ReferenceID    string // quiz result, booking or redemption ID
	Reason         string
	IdempotencyKey string
	CreatedAt      time.Time
}

// =============================================================================
// TRANSACTION STORE - Persistence interface (append-only)
// =============================================================================

// TransactionStore persists ledger transactions.
// IMPORTANT: append-only. No Update, No Delete. Ever. Corrections are
// made via adjustment transactions.
type TransactionStore interface {
	// AppendTransaction persists a transaction and updates the
	// visitor's denormalized balance in the same database transaction.
	// Fails with ErrDuplicateIdempotencyKey when the key exists and
	// with ErrInsufficientPoints when the delta would drive the
	// balance negative.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// Transactions returns a visitor's transactions, chronologically.
	Transactions(ctx context.Context, visitorID VisitorID) ([]Transaction, error)

	// Balance returns the visitor's current point balance.
	Balance(ctx context.Context, visitorID VisitorID) (Points, error)
}

// =============================================================================
// POINT LEDGER
// =============================================================================

// PointLedger applies engine output to a visitor's balance through a
// TransactionStore.
type PointLedger struct {
	Store TransactionStore
}

func NewPointLedger(store TransactionStore) *PointLedger {
	return &PointLedger{Store: store}
}

// Earn appends a positive accrual transaction. A zero delta is dropped
// without touching the store so sub-threshold quiz results leave no
// ledger noise.
func (l *PointLedger) Earn(ctx context.Context, visitorID VisitorID, delta Points, txType TransactionType, referenceID, reason, idempotencyKey string) error {
	if delta < 0 {
		return &InvalidInputError{Field: "delta", Message: "earn delta must be non-negative"}
	}
	if delta == 0 {
		return nil
	}
	return l.Store.AppendTransaction(ctx, Transaction{
		ID:             TransactionID(uuid.NewString()),
		VisitorID:      visitorID,
		Delta:          delta,
		Type:           txType,
		ReferenceID:    referenceID,
		Reason:         reason,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now().UTC(),
	})
}

// Spend appends a negative redemption transaction. The store enforces
// the non-negative balance invariant atomically.
func (l *PointLedger) Spend(ctx context.Context, visitorID VisitorID, cost Points, referenceID, reason string) error {
	if cost < 0 {
		return &InvalidInputError{Field: "cost", Message: "must be non-negative"}
	}
	return l.Store.AppendTransaction(ctx, Transaction{
		ID:             TransactionID(uuid.NewString()),
		VisitorID:      visitorID,
		Delta:          -cost,
		Type:           TxRedeem,
		ReferenceID:    referenceID,
		Reason:         reason,
		IdempotencyKey: uuid.NewString(), // redemption is not idempotent
		CreatedAt:      time.Now().UTC(),
	})
}

// Adjust appends a manual correction transaction. Delta may have
// either sign; the store still rejects a correction that would drive
// the balance negative.
func (l *PointLedger) Adjust(ctx context.Context, visitorID VisitorID, delta Points, reason string) error {
	return l.Store.AppendTransaction(ctx, Transaction{
		ID:             TransactionID(uuid.NewString()),
		VisitorID:      visitorID,
		Delta:          delta,
		Type:           TxAdjust,
		Reason:         reason,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
	})
}

// Transactions returns the visitor's ledger entries, chronologically.
func (l *PointLedger) Transactions(ctx context.Context, visitorID VisitorID) ([]Transaction, error) {
	return l.Store.Transactions(ctx, visitorID)
}

// Balance returns the visitor's current balance.
func (l *PointLedger) Balance(ctx context.Context, visitorID VisitorID) (Points, error) {
	return l.Store.Balance(ctx, visitorID)
}

// VisitBonusKey builds the idempotency key that makes a visit-count
// threshold bonus a once-ever grant.
func VisitBonusKey(visitorID VisitorID, threshold int) string {
	return fmt.Sprintf("visit-bonus:%s:%d", visitorID, threshold)
}
