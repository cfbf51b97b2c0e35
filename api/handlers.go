/*
handlers.go - HTTP API handlers for the rewards service

PURPOSE:
  Exposes the rewards engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine
  and store.

ENDPOINTS:
  Visitors:
    GET    /api/visitors                    List visitors
    POST   /api/visitors                    Register visitor
    GET    /api/visitors/{id}               Visitor details
    GET    /api/visitors/{id}/balance       Balance, tier, progress
    GET    /api/visitors/{id}/transactions  Point ledger history
    GET    /api/visitors/{id}/badges        Earned badges
    GET    /api/visitors/{id}/redemptions   Redemption history
    POST   /api/visitors/{id}/quiz-results  Quiz-completion accrual
    POST   /api/visitors/{id}/redemptions   Spend points on a reward

  Bookings:
    POST   /api/bookings                    Book a visit
    GET    /api/bookings/{id}               Booking details
    POST   /api/bookings/{id}/confirm       Confirm + visit accrual
    POST   /api/bookings/{id}/cancel        Cancel

  Catalog:
    GET    /api/rewards                     Reward catalog

  Admin:
    POST   /api/admin/adjustments           Manual balance correction
    POST   /api/admin/reset                 Wipe database (dev only)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call engine + store
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Conflict (duplicate accrual, illegal status transition)
  - 422: Insufficient points
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RajaShylesh112/musemap-sub000/factory"
	"github.com/RajaShylesh112/musemap-sub000/rewards"
	"github.com/RajaShylesh112/musemap-sub000/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Rules  rewards.Rules
	Ledger *rewards.PointLedger

	programName string
	catalog     []rewards.Reward
}

// NewHandler creates a new handler with the given store and program.
func NewHandler(store *sqlite.Store, program *factory.Program) *Handler {
	return &Handler{
		Store:       store,
		Rules:       program.Rules,
		Ledger:      rewards.NewPointLedger(store),
		programName: program.Name,
		catalog:     program.Catalog,
	}
}

// SeedCatalog writes the program's reward catalog into the store.
// Called once at startup; existing entries are updated in place.
func (h *Handler) SeedCatalog(ctx context.Context) error {
	for _, reward := range h.catalog {
		if err := h.Store.SaveReward(ctx, reward); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// VISITOR HANDLERS
// =============================================================================

// ListVisitors returns all registered visitors.
func (h *Handler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.Store.ListVisitors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list visitors", err)
		return
	}

	dtos := make([]VisitorDTO, len(visitors))
	for i, v := range visitors {
		dtos[i] = VisitorDTO{
			ID:        v.ID,
			Name:      v.Name,
			Email:     v.Email,
			CreatedAt: v.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateVisitor registers a visitor.
func (h *Handler) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	var req CreateVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	v := sqlite.Visitor{ID: req.ID, Name: req.Name, Email: req.Email}
	if err := h.Store.SaveVisitor(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create visitor", err)
		return
	}

	writeJSON(w, http.StatusCreated, VisitorDTO{ID: v.ID, Name: v.Name, Email: v.Email})
}

// GetVisitor returns a single visitor.
func (h *Handler) GetVisitor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := h.Store.GetVisitor(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get visitor", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Visitor not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, VisitorDTO{
		ID:        v.ID,
		Name:      v.Name,
		Email:     v.Email,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	})
}

// =============================================================================
// QUIZ COMPLETION
// =============================================================================

// SubmitQuizResult records a completed quiz and applies its accrual:
// the point award and, when a badge threshold was met, the badge.
// The quiz result ID is the ledger idempotency key, so re-submitting
// the same result conflicts instead of double-awarding.
func (h *Handler) SubmitQuizResult(w http.ResponseWriter, r *http.Request) {
	visitorID := chi.URLParam(r, "id")

	var req SubmitQuizResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	v, err := h.Store.GetVisitor(r.Context(), visitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get visitor", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Visitor not found", nil)
		return
	}

	result := rewards.QuizResult{
		ID:        rewards.QuizResultID(req.ID),
		VisitorID: rewards.VisitorID(visitorID),
		MuseumID:  rewards.MuseumID(req.MuseumID),
		Score:     rewards.NewScore(req.Score),
		TakenAt:   time.Now().UTC(),
	}

	acc, err := h.Rules.AccrueQuiz(result)
	if err != nil {
		writeEngineError(w, "Failed to accrue quiz result", err)
		return
	}

	if err := h.Store.SaveQuizResult(r.Context(), result); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save quiz result", err)
		return
	}

	if acc.PointsToAdd > 0 || acc.BadgeToAward != rewards.BadgeNone {
		ltx := rewards.Transaction{
			ID:             rewards.TransactionID(uuid.NewString()),
			VisitorID:      result.VisitorID,
			Delta:          acc.PointsToAdd,
			Type:           rewards.TxEarnQuiz,
			ReferenceID:    string(result.ID),
			Reason:         "Quiz completed",
			IdempotencyKey: string(result.ID),
			CreatedAt:      result.TakenAt,
		}

		var badge *rewards.Badge
		if acc.BadgeToAward != rewards.BadgeNone {
			badge = &rewards.Badge{
				ID:           uuid.NewString(),
				VisitorID:    result.VisitorID,
				QuizResultID: result.ID,
				MuseumID:     result.MuseumID,
				Level:        acc.BadgeToAward,
				AwardedAt:    result.TakenAt,
			}
		}

		if err := h.Store.AppendQuizAccrual(r.Context(), ltx, badge); err != nil {
			if errors.Is(err, rewards.ErrDuplicateIdempotencyKey) {
				writeError(w, http.StatusConflict, "Quiz result already awarded", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to apply accrual", err)
			return
		}
	}

	h.writeQuizAccrualResponse(w, r, result, acc)
}

func (h *Handler) writeQuizAccrualResponse(w http.ResponseWriter, r *http.Request, result rewards.QuizResult, acc rewards.AccrualResult) {
	balance, err := h.Ledger.Balance(r.Context(), result.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}
	tier, err := h.Rules.TierOf(balance)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to classify tier", err)
		return
	}

	writeJSON(w, http.StatusOK, QuizAccrualResponse{
		QuizResultID:  string(result.ID),
		PointsAwarded: int64(acc.PointsToAdd),
		Badge:         string(acc.BadgeToAward),
		NewBalance:    int64(balance),
		Tier:          string(tier),
	})
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// CreateBooking books a museum visit in pending state.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	visitDate, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid visit_date format (use YYYY-MM-DD)", err)
		return
	}

	v, err := h.Store.GetVisitor(r.Context(), req.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get visitor", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Visitor not found", nil)
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	booking := rewards.Booking{
		ID:        req.ID,
		VisitorID: rewards.VisitorID(req.VisitorID),
		MuseumID:  rewards.MuseumID(req.MuseumID),
		VisitDate: visitDate,
		Status:    rewards.BookingPending,
	}
	if err := h.Store.SaveBooking(r.Context(), booking); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save booking", err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingDTO(booking))
}

// GetBooking returns a single booking.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := h.Store.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get booking", err)
		return
	}
	if booking == nil {
		writeError(w, http.StatusNotFound, "Booking not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, bookingDTO(*booking))
}

// ConfirmBooking transitions a booking to confirmed and applies visit
// accrual: the confirmed-visit count is recomputed and the single
// highest newly-reached threshold grants its flat bonus, once ever.
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := h.Store.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get booking", err)
		return
	}
	if booking == nil {
		writeError(w, http.StatusNotFound, "Booking not found", nil)
		return
	}

	if err := h.Store.UpdateBookingStatus(r.Context(), id, rewards.BookingConfirmed); err != nil {
		writeEngineError(w, "Failed to confirm booking", err)
		return
	}
	booking.Status = rewards.BookingConfirmed

	confirmed, err := h.Store.CountConfirmedVisits(r.Context(), booking.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count visits", err)
		return
	}
	granted, err := h.Store.GrantedVisitThresholds(r.Context(), booking.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load visit grants", err)
		return
	}

	acc, err := h.Rules.AccrueVisits(confirmed, granted)
	if err != nil {
		writeEngineError(w, "Failed to accrue visits", err)
		return
	}

	awarded := rewards.Points(0)
	if acc.PointsToAdd > 0 {
		ltx := rewards.Transaction{
			ID:             rewards.TransactionID(uuid.NewString()),
			VisitorID:      booking.VisitorID,
			Delta:          acc.PointsToAdd,
			Type:           rewards.TxEarnVisit,
			ReferenceID:    booking.ID,
			Reason:         "Visit milestone reached",
			IdempotencyKey: rewards.VisitBonusKey(booking.VisitorID, acc.Threshold),
			CreatedAt:      time.Now().UTC(),
		}
		err := h.Store.AppendVisitGrant(r.Context(), ltx, acc.Threshold)
		switch {
		case errors.Is(err, rewards.ErrDuplicateIdempotencyKey):
			// Lost a race with a concurrent confirmation; the bonus
			// already landed, so this confirmation awards nothing.
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Failed to apply visit bonus", err)
			return
		default:
			awarded = acc.PointsToAdd
		}
	}

	balance, err := h.Ledger.Balance(r.Context(), booking.VisitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmBookingResponse{
		Booking:         bookingDTO(*booking),
		ConfirmedVisits: confirmed,
		PointsAwarded:   int64(awarded),
		NewBalance:      int64(balance),
	})
}

// CancelBooking transitions a booking to cancelled. Cancelled visits
// never count toward accrual; already-granted bonuses are kept.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.UpdateBookingStatus(r.Context(), id, rewards.BookingCancelled); err != nil {
		writeEngineError(w, "Failed to cancel booking", err)
		return
	}

	booking, err := h.Store.GetBooking(r.Context(), id)
	if err != nil || booking == nil {
		writeError(w, http.StatusInternalServerError, "Failed to get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, bookingDTO(*booking))
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// GetBalance returns the visitor's balance, tier and progress report.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	visitorID := rewards.VisitorID(chi.URLParam(r, "id"))

	balance, err := h.Ledger.Balance(r.Context(), visitorID)
	if err != nil {
		writeEngineError(w, "Failed to read balance", err)
		return
	}

	progress, err := h.Rules.ProgressReport(balance)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute progress", err)
		return
	}

	dto := BalanceDTO{
		VisitorID:         string(visitorID),
		Balance:           int64(balance),
		Tier:              string(progress.Tier),
		PercentToNextTier: progress.PercentToNextTier.StringFixed(2),
	}
	if progress.PointsToNextTier != nil {
		remaining := int64(*progress.PointsToNextTier)
		dto.PointsToNextTier = &remaining
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetTransactions returns the visitor's point ledger history.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	visitorID := rewards.VisitorID(chi.URLParam(r, "id"))

	txs, err := h.Ledger.Transactions(r.Context(), visitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = TransactionDTO{
			ID:          string(tx.ID),
			Delta:       int64(tx.Delta),
			Type:        string(tx.Type),
			ReferenceID: tx.ReferenceID,
			Reason:      tx.Reason,
			CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBadges returns the visitor's earned badges.
func (h *Handler) GetBadges(w http.ResponseWriter, r *http.Request) {
	visitorID := rewards.VisitorID(chi.URLParam(r, "id"))

	badges, err := h.Store.ListBadges(r.Context(), visitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list badges", err)
		return
	}

	dtos := make([]BadgeDTO, len(badges))
	for i, b := range badges {
		dtos[i] = BadgeDTO{
			ID:           b.ID,
			QuizResultID: string(b.QuizResultID),
			MuseumID:     string(b.MuseumID),
			Level:        string(b.Level),
			AwardedAt:    b.AwardedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProgram returns the program's earning criteria for the
// reward-criteria view: how points are earned and what the tiers are.
func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	dto := ProgramDTO{Name: h.programName}
	for _, row := range h.Rules.ScoreAwards {
		dto.ScoreAwards = append(dto.ScoreAwards, ScoreAwardDTO{
			MinScore: row.MinScore.String(),
			Points:   int64(row.Points),
		})
	}
	for _, row := range h.Rules.VisitAwards {
		dto.VisitAwards = append(dto.VisitAwards, VisitAwardDTO{
			MinVisits: row.MinVisits,
			Points:    int64(row.Points),
		})
	}
	for _, row := range h.Rules.BadgeThresholds {
		dto.BadgeThresholds = append(dto.BadgeThresholds, BadgeThresholdDTO{
			MinScore: row.MinScore.String(),
			Level:    string(row.Level),
		})
	}
	for _, row := range h.Rules.TierThresholds {
		dto.Tiers = append(dto.Tiers, TierDTO{
			Tier:      string(row.Tier),
			MinPoints: int64(row.MinPoints),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CATALOG AND REDEMPTION HANDLERS
// =============================================================================

// ListRewards returns the reward catalog.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Store.ListRewards(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rewards", err)
		return
	}

	dtos := make([]RewardDTO, len(catalog))
	for i, reward := range catalog {
		dtos[i] = RewardDTO{
			ID:          reward.ID,
			Name:        reward.Name,
			Description: reward.Description,
			PointCost:   int64(reward.PointCost),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RedeemReward spends points on a catalog reward. Check-and-deduct is
// atomic in the store; a shortage returns 422 with the shortfall and
// leaves the balance untouched.
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	visitorID := rewards.VisitorID(chi.URLParam(r, "id"))

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reward, err := h.Store.GetReward(r.Context(), req.RewardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reward", err)
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "Reward not found", nil)
		return
	}

	redemption, newBalance, err := h.Store.RedeemReward(r.Context(), visitorID, *reward)
	if err != nil {
		writeEngineError(w, "Failed to redeem reward", err)
		return
	}

	writeJSON(w, http.StatusOK, RedemptionDTO{
		ID:         redemption.ID,
		RewardID:   redemption.RewardID,
		Points:     int64(redemption.Points),
		NewBalance: int64(newBalance),
		CreatedAt:  redemption.CreatedAt.Format(time.RFC3339),
	})
}

// ListRedemptions returns the visitor's redemption history.
func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	visitorID := rewards.VisitorID(chi.URLParam(r, "id"))

	redemptions, err := h.Store.ListRedemptions(r.Context(), visitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list redemptions", err)
		return
	}

	dtos := make([]RedemptionRecordDTO, len(redemptions))
	for i, red := range redemptions {
		dtos[i] = RedemptionRecordDTO{
			ID:        red.ID,
			RewardID:  red.RewardID,
			Points:    int64(red.Points),
			CreatedAt: red.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateAdjustment applies a manual balance correction through the
// ledger. The store still refuses corrections that would drive the
// balance negative.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required", nil)
		return
	}

	visitorID := rewards.VisitorID(req.VisitorID)
	if err := h.Ledger.Adjust(r.Context(), visitorID, rewards.Points(req.Delta), req.Reason); err != nil {
		writeEngineError(w, "Failed to apply adjustment", err)
		return
	}

	balance, err := h.Ledger.Balance(r.Context(), visitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"visitor_id":  req.VisitorID,
		"new_balance": int64(balance),
	})
}

// ResetDatabase wipes all data and reseeds the catalog. Dev only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.SeedCatalog(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reseed catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func bookingDTO(b rewards.Booking) BookingDTO {
	return BookingDTO{
		ID:        b.ID,
		VisitorID: string(b.VisitorID),
		MuseumID:  string(b.MuseumID),
		VisitDate: b.VisitDate.Format("2006-01-02"),
		Status:    string(b.Status),
	}
}

// writeEngineError maps engine/store errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, rewards.ErrInsufficientPoints):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, rewards.ErrDuplicateIdempotencyKey),
		errors.Is(err, rewards.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, message, err)
	case rewards.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case rewards.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
