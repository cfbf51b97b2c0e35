/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the engine's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - rewards/progress.go: Progress shape these DTOs serialize
*/
package api

// =============================================================================
// VISITORS
// =============================================================================

// VisitorDTO represents a visitor in API responses.
type VisitorDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateVisitorRequest is the request to register a visitor.
type CreateVisitorRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// =============================================================================
// QUIZ COMPLETION
// =============================================================================

// SubmitQuizResultRequest reports one completed quiz attempt.
type SubmitQuizResultRequest struct {
	ID       string  `json:"id"`
	MuseumID string  `json:"museum_id"`
	Score    float64 `json:"score"`
}

// QuizAccrualResponse is the outcome of a quiz-completion accrual.
type QuizAccrualResponse struct {
	QuizResultID  string `json:"quiz_result_id"`
	PointsAwarded int64  `json:"points_awarded"`
	Badge         string `json:"badge,omitempty"`
	NewBalance    int64  `json:"new_balance"`
	Tier          string `json:"tier"`
}

// =============================================================================
// BOOKINGS
// =============================================================================

// CreateBookingRequest books a museum visit.
type CreateBookingRequest struct {
	ID        string `json:"id"`
	VisitorID string `json:"visitor_id"`
	MuseumID  string `json:"museum_id"`
	VisitDate string `json:"visit_date"` // YYYY-MM-DD
}

// BookingDTO represents a booking in API responses.
type BookingDTO struct {
	ID        string `json:"id"`
	VisitorID string `json:"visitor_id"`
	MuseumID  string `json:"museum_id"`
	VisitDate string `json:"visit_date"`
	Status    string `json:"status"`
}

// ConfirmBookingResponse is the outcome of a booking confirmation,
// including any visit-count bonus it unlocked.
type ConfirmBookingResponse struct {
	Booking         BookingDTO `json:"booking"`
	ConfirmedVisits int        `json:"confirmed_visits"`
	PointsAwarded   int64      `json:"points_awarded"`
	NewBalance      int64      `json:"new_balance"`
}

// =============================================================================
// BALANCE AND PROGRESS
// =============================================================================

// BalanceDTO is the dashboard view of a visitor's standing.
type BalanceDTO struct {
	VisitorID         string `json:"visitor_id"`
	Balance           int64  `json:"balance"`
	Tier              string `json:"tier"`
	PercentToNextTier string `json:"percent_to_next_tier"`
	PointsToNextTier  *int64 `json:"points_to_next_tier,omitempty"`
}

// TransactionDTO is one ledger entry in API responses.
type TransactionDTO struct {
	ID          string `json:"id"`
	Delta       int64  `json:"delta"`
	Type        string `json:"type"`
	ReferenceID string `json:"reference_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// BadgeDTO is one earned badge in API responses.
type BadgeDTO struct {
	ID           string `json:"id"`
	QuizResultID string `json:"quiz_result_id"`
	MuseumID     string `json:"museum_id"`
	Level        string `json:"level"`
	AwardedAt    string `json:"awarded_at"`
}

// =============================================================================
// REWARDS AND REDEMPTIONS
// =============================================================================

// RewardDTO is one catalog entry.
type RewardDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PointCost   int64  `json:"point_cost"`
}

// RedeemRequest spends points on a catalog reward.
type RedeemRequest struct {
	RewardID string `json:"reward_id"`
}

// RedemptionDTO is the outcome of a redemption.
type RedemptionDTO struct {
	ID         string `json:"id"`
	RewardID   string `json:"reward_id"`
	Points     int64  `json:"points"`
	NewBalance int64  `json:"new_balance"`
	CreatedAt  string `json:"created_at"`
}

// RedemptionRecordDTO is one historical redemption.
type RedemptionRecordDTO struct {
	ID        string `json:"id"`
	RewardID  string `json:"reward_id"`
	Points    int64  `json:"points"`
	CreatedAt string `json:"created_at"`
}

// =============================================================================
// PROGRAM CRITERIA
// =============================================================================

// ProgramDTO describes how points are earned and what the tiers are,
// for the reward-criteria view.
type ProgramDTO struct {
	Name            string              `json:"name"`
	ScoreAwards     []ScoreAwardDTO     `json:"score_awards"`
	VisitAwards     []VisitAwardDTO     `json:"visit_awards"`
	BadgeThresholds []BadgeThresholdDTO `json:"badge_thresholds"`
	Tiers           []TierDTO           `json:"tiers"`
}

type ScoreAwardDTO struct {
	MinScore string `json:"min_score"`
	Points   int64  `json:"points"`
}

type VisitAwardDTO struct {
	MinVisits int   `json:"min_visits"`
	Points    int64 `json:"points"`
}

type BadgeThresholdDTO struct {
	MinScore string `json:"min_score"`
	Level    string `json:"level"`
}

type TierDTO struct {
	Tier      string `json:"tier"`
	MinPoints int64  `json:"min_points"`
}

// =============================================================================
// ADMIN
// =============================================================================

// AdjustmentRequest is a manual balance correction.
type AdjustmentRequest struct {
	VisitorID string `json:"visitor_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
