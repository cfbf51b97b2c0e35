package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
	"github.com/RajaShylesh112/musemap-sub000/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveVisitor(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	require.NoError(t, store.SaveVisitor(context.Background(), sqlite.Visitor{ID: id, Name: "Test Visitor"}))
}

func earnTx(visitorID string, delta rewards.Points, key string) rewards.Transaction {
	return rewards.Transaction{
		ID:             rewards.TransactionID("tx-" + key),
		VisitorID:      rewards.VisitorID(visitorID),
		Delta:          delta,
		Type:           rewards.TxEarnQuiz,
		ReferenceID:    key,
		Reason:         "Quiz completed",
		IdempotencyKey: key,
		CreatedAt:      time.Now().UTC(),
	}
}

// =============================================================================
// QUIZ ACCRUAL: LEDGER + BADGE ATOMICITY
// =============================================================================

func TestAppendQuizAccrual_WritesLedgerAndBadge(t *testing.T) {
	// GIVEN: A gold-level quiz accrual
	// WHEN: Applying it
	// THEN: Ledger entry, balance and badge all land together

	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")

	badge := &rewards.Badge{
		ID:           "badge-1",
		VisitorID:    "visitor-1",
		QuizResultID: "qr-1",
		MuseumID:     "museum-1",
		Level:        rewards.BadgeGold,
		AwardedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.AppendQuizAccrual(ctx, earnTx("visitor-1", 100, "qr-1"), badge))

	balance, err := store.Balance(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(100), balance)

	badges, err := store.ListBadges(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, rewards.BadgeGold, badges[0].Level)
	assert.Equal(t, rewards.QuizResultID("qr-1"), badges[0].QuizResultID)
}

func TestAppendQuizAccrual_DuplicateRollsBackEverything(t *testing.T) {
	// GIVEN: An accrual already applied for qr-1
	// WHEN: Re-applying it with a new badge row
	// THEN: Duplicate is rejected and neither balance nor badges move

	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")

	badge := &rewards.Badge{
		ID: "badge-1", VisitorID: "visitor-1", QuizResultID: "qr-1",
		MuseumID: "museum-1", Level: rewards.BadgeGold, AwardedAt: time.Now().UTC(),
	}
	require.NoError(t, store.AppendQuizAccrual(ctx, earnTx("visitor-1", 100, "qr-1"), badge))

	retryBadge := &rewards.Badge{
		ID: "badge-2", VisitorID: "visitor-1", QuizResultID: "qr-1",
		MuseumID: "museum-1", Level: rewards.BadgeGold, AwardedAt: time.Now().UTC(),
	}
	err := store.AppendQuizAccrual(ctx, earnTx("visitor-1", 100, "qr-1"), retryBadge)
	assert.ErrorIs(t, err, rewards.ErrDuplicateIdempotencyKey)

	balance, err := store.Balance(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(100), balance)

	badges, err := store.ListBadges(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

// =============================================================================
// BOOKINGS AND VISIT GRANTS
// =============================================================================

func TestBookingStatusTransitions(t *testing.T) {
	// GIVEN: A pending booking
	// WHEN: Confirming it, then trying to cancel the confirmed booking
	// THEN: pending->confirmed is legal; confirmed->cancelled is not

	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")

	booking := rewards.Booking{
		ID: "booking-1", VisitorID: "visitor-1", MuseumID: "museum-1",
		VisitDate: time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC),
		Status:    rewards.BookingPending,
	}
	require.NoError(t, store.SaveBooking(ctx, booking))

	require.NoError(t, store.UpdateBookingStatus(ctx, "booking-1", rewards.BookingConfirmed))

	err := store.UpdateBookingStatus(ctx, "booking-1", rewards.BookingCancelled)
	assert.ErrorIs(t, err, rewards.ErrInvalidStatusTransition)

	err = store.UpdateBookingStatus(ctx, "missing", rewards.BookingConfirmed)
	assert.ErrorIs(t, err, rewards.ErrBookingNotFound)
}

func TestCountConfirmedVisits_IgnoresPendingAndCancelled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")

	day := time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)
	for _, b := range []struct {
		id     string
		status rewards.BookingStatus
	}{
		{"b-1", rewards.BookingConfirmed},
		{"b-2", rewards.BookingConfirmed},
		{"b-3", rewards.BookingPending},
		{"b-4", rewards.BookingCancelled},
	} {
		require.NoError(t, store.SaveBooking(ctx, rewards.Booking{
			ID: b.id, VisitorID: "visitor-1", MuseumID: "museum-1",
			VisitDate: day, Status: b.status,
		}))
	}

	n, err := store.CountConfirmedVisits(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppendVisitGrant_OnceEverPerThreshold(t *testing.T) {
	// GIVEN: The 5-visit bonus granted
	// WHEN: Granting the same threshold again
	// THEN: Rejected atomically; the grant list shows one entry

	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")

	ltx := rewards.Transaction{
		ID: "tx-v5", VisitorID: "visitor-1", Delta: 50,
		Type: rewards.TxEarnVisit, ReferenceID: "booking-5",
		Reason:         "Visit milestone reached",
		IdempotencyKey: rewards.VisitBonusKey("visitor-1", 5),
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, store.AppendVisitGrant(ctx, ltx, 5))

	retry := ltx
	retry.ID = "tx-v5-retry"
	err := store.AppendVisitGrant(ctx, retry, 5)
	assert.ErrorIs(t, err, rewards.ErrDuplicateIdempotencyKey)

	granted, err := store.GrantedVisitThresholds(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, granted)

	balance, err := store.Balance(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(50), balance)
}

// =============================================================================
// REDEMPTION: ATOMIC CHECK-AND-DEDUCT
// =============================================================================

func TestRedeemReward_DeductsAndRecords(t *testing.T) {
	// GIVEN: A balance of 300 and a 50-point reward
	// WHEN: Redeeming
	// THEN: Balance 250, redemption recorded, ledger entry negative

	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")
	require.NoError(t, store.AppendTransaction(ctx, earnTx("visitor-1", 300, "qr-1")))

	reward := rewards.Reward{ID: "cafe-voucher", Name: "Museum Cafe Voucher", PointCost: 50}
	require.NoError(t, store.SaveReward(ctx, reward))

	redemption, newBalance, err := store.RedeemReward(ctx, "visitor-1", reward)
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(250), newBalance)
	assert.Equal(t, "cafe-voucher", redemption.RewardID)

	redemptions, err := store.ListRedemptions(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, redemptions, 1)
	assert.Equal(t, rewards.Points(50), redemptions[0].Points)

	txs, err := store.Transactions(ctx, "visitor-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	var redeemTx *rewards.Transaction
	for i := range txs {
		if txs[i].Type == rewards.TxRedeem {
			redeemTx = &txs[i]
		}
	}
	require.NotNil(t, redeemTx)
	assert.Equal(t, rewards.Points(-50), redeemTx.Delta)
	assert.Equal(t, redemption.ID, redeemTx.ReferenceID)
}

func TestRedeemReward_InsufficientLeavesNoTrace(t *testing.T) {
	// GIVEN: A balance of 240 and a 250-point reward
	// WHEN: Redeeming
	// THEN: Shortage error; balance, ledger and redemptions untouched

	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")
	require.NoError(t, store.AppendTransaction(ctx, earnTx("visitor-1", 240, "qr-1")))

	reward := rewards.Reward{ID: "guided-tour", Name: "Private Guided Tour", PointCost: 250}
	require.NoError(t, store.SaveReward(ctx, reward))

	_, _, err := store.RedeemReward(ctx, "visitor-1", reward)
	assert.ErrorIs(t, err, rewards.ErrInsufficientPoints)

	var shortage *rewards.InsufficientPointsError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, rewards.Points(240), shortage.Available)
	assert.Equal(t, rewards.Points(250), shortage.Requested)
	assert.Equal(t, rewards.Points(10), shortage.Shortfall)

	balance, err := store.Balance(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(240), balance)

	redemptions, err := store.ListRedemptions(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Empty(t, redemptions)
}

func TestRedeemReward_RepeatDeductsAgain(t *testing.T) {
	// Redemption is not idempotent: two confirmed redemptions of the
	// same reward deduct twice.
	store := newTestStore(t)
	ctx := context.Background()
	saveVisitor(t, store, "visitor-1")
	require.NoError(t, store.AppendTransaction(ctx, earnTx("visitor-1", 200, "qr-1")))

	reward := rewards.Reward{ID: "cafe-voucher", Name: "Museum Cafe Voucher", PointCost: 50}
	require.NoError(t, store.SaveReward(ctx, reward))

	_, first, err := store.RedeemReward(ctx, "visitor-1", reward)
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(150), first)

	_, second, err := store.RedeemReward(ctx, "visitor-1", reward)
	require.NoError(t, err)
	assert.Equal(t, rewards.Points(100), second)
}

// =============================================================================
// CATALOG
// =============================================================================

func TestCatalog_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveReward(ctx, rewards.Reward{ID: "a", Name: "A", PointCost: 150}))
	require.NoError(t, store.SaveReward(ctx, rewards.Reward{ID: "b", Name: "B", PointCost: 50}))

	// Upsert updates in place.
	require.NoError(t, store.SaveReward(ctx, rewards.Reward{ID: "a", Name: "A+", PointCost: 175}))

	catalog, err := store.ListRewards(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "b", catalog[0].ID) // ordered by cost
	assert.Equal(t, "A+", catalog[1].Name)
	assert.Equal(t, rewards.Points(175), catalog[1].PointCost)
}
