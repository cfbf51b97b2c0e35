/*
Package rewards implements the MuseMap rewards accrual engine.

PURPOSE:
  Pure computation core for the museum rewards program. Visitors earn
  points by completing museum quizzes and by confirming visits; points
  place them in a standing tier (None/Bronze/Silver/Gold) and can be
  redeemed against a reward catalog. This package computes point awards,
  badge unlocks, tier standing, progress and redemption outcomes - it
  never persists anything itself.

KEY CONCEPTS IN THIS FILE (types.go):
  - Points: integer point quantity (balances, awards, costs)
  - Score: decimal quiz percentage in [0, 100]
  - Tier: derived standing from cumulative points
  - BadgeLevel: per-quiz achievement level (distinct scale from Tier)
  - QuizResult / Booking: the raw facts accrual is computed from

TWO THRESHOLD SCALES:
  Tier thresholds (250/500/1000 points) rank a visitor's cumulative
  standing. Badge thresholds (60/80/90 percent) rank a single quiz
  score. They are unrelated scales and must never be conflated; each
  lives in its own named table in rules.go.

DESIGN PRINCIPLES:
  1. Purity: every function is deterministic over its inputs
  2. Precision: quiz scores and progress ratios use decimal.Decimal
  3. Explicit state: balances are threaded through calls, never ambient
  4. Auditability: every balance change goes through a ledger transaction

SEE ALSO:
  - rules.go: threshold tables and lookups
  - accrual.go: quiz and visit accrual calculators
  - ledger.go: append-only point transaction log
*/
package rewards

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POINTS AND SCORES
// =============================================================================

// Points is an integer point quantity. Balances, awards and reward
// costs are whole points; negative values only appear as ledger deltas.
type Points int64

// Score is a quiz score as a percentage. Fractional values are legal
// (7 of 9 questions is 77.78), so scores use decimal rather than float.
type Score = decimal.Decimal

func NewScore(value float64) Score {
	return decimal.NewFromFloat(value)
}

func NewScoreFromInt(value int) Score {
	return decimal.NewFromInt(int64(value))
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type VisitorID string
type MuseumID string
type QuizResultID string
type TransactionID string

// =============================================================================
// TIER - cumulative standing
// =============================================================================

// Tier is a visitor's standing derived from their cumulative point
// balance. Tiers are computed, never stored.
type Tier string

const (
	TierNone   Tier = "none"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// =============================================================================
// BADGE LEVEL - per-quiz achievement
// =============================================================================

// BadgeLevel grades a single quiz result's score. BadgeNone means the
// score did not reach the lowest badge threshold.
type BadgeLevel string

const (
	BadgeNone   BadgeLevel = ""
	BadgeBronze BadgeLevel = "bronze"
	BadgeSilver BadgeLevel = "silver"
	BadgeGold   BadgeLevel = "gold"
)

// Badge is an earned achievement record tied to one quiz result.
// Badges are created once and never mutated.
type Badge struct {
	ID           string
	VisitorID    VisitorID
	QuizResultID QuizResultID
	MuseumID     MuseumID
	Level        BadgeLevel
	AwardedAt    time.Time
}

// =============================================================================
// RAW FACTS - inputs to accrual
// =============================================================================

// QuizResult is one completed quiz attempt. Immutable once created.
type QuizResult struct {
	ID        QuizResultID
	VisitorID VisitorID
	MuseumID  MuseumID
	Score     Score
	TakenAt   time.Time
}

// BookingStatus tracks a visit booking through its lifecycle. Only
// confirmed bookings count toward visit accrual.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is one museum visit booking.
type Booking struct {
	ID        string
	VisitorID VisitorID
	MuseumID  MuseumID
	VisitDate time.Time
	Status    BookingStatus
	CreatedAt time.Time
}

// =============================================================================
// REWARD CATALOG
// =============================================================================

// Reward is a catalog entry that points can be redeemed against.
// Static configuration, not visitor-owned.
type Reward struct {
	ID          string
	Name        string
	Description string
	PointCost   Points
}

// Redemption records one spend of points against a catalog reward.
type Redemption struct {
	ID        string
	VisitorID VisitorID
	RewardID  string
	Points    Points
	CreatedAt time.Time
}

// =============================================================================
// ACCRUAL OUTPUT
// =============================================================================

// AccrualResult is the output of one quiz accrual computation: the
// points to add to the visitor's balance and the badge level unlocked
// by the result (BadgeNone when no threshold was met). Persisting the
// balance change and the badge record is the caller's responsibility.
type AccrualResult struct {
	PointsToAdd  Points
	BadgeToAward BadgeLevel
}

// VisitAccrualResult is the output of visit accrual: the flat bonus for
// the highest visit-count threshold reached, and the threshold that
// produced it so the caller can record the grant as used. Threshold is
// zero when no threshold was reached.
type VisitAccrualResult struct {
	PointsToAdd Points
	Threshold   int
}
