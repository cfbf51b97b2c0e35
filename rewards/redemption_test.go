package rewards_test

import (
	"errors"
	"testing"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
)

// =============================================================================
// REDEMPTION VALIDATION
// =============================================================================

func TestRedeem_InsufficientBalance(t *testing.T) {
	// GIVEN: Balance 240, reward cost 250
	// WHEN: Redeeming
	// THEN: InsufficientPoints with shortfall 10, balance untouched

	_, err := rewards.Redeem(240, 250)
	if !errors.Is(err, rewards.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	var detail *rewards.InsufficientPointsError
	if !errors.As(err, &detail) {
		t.Fatal("expected structured InsufficientPointsError")
	}
	if detail.Available != 240 || detail.Requested != 250 || detail.Shortfall != 10 {
		t.Errorf("detail = %+v, want available 240, requested 250, shortfall 10", detail)
	}
}

func TestRedeem_SucceedsAndTierHolds(t *testing.T) {
	// GIVEN: Balance 300 (Bronze), cost 50
	// WHEN: Redeeming
	// THEN: New balance 250, still exactly Bronze (250 >= 250)

	newBalance, err := rewards.Redeem(300, 50)
	if err != nil {
		t.Fatalf("Redeem(300, 50) failed: %v", err)
	}
	if newBalance != 250 {
		t.Errorf("new balance = %d, want 250", newBalance)
	}

	r := rewards.DefaultRules()
	tier, err := r.TierOf(newBalance)
	if err != nil {
		t.Fatalf("TierOf(%d) failed: %v", newBalance, err)
	}
	if tier != rewards.TierBronze {
		t.Errorf("TierOf(250) = %q, want bronze", tier)
	}
}

func TestRedeem_ExactBalance(t *testing.T) {
	// Boundary: cost == balance drains it to exactly zero.
	newBalance, err := rewards.Redeem(120, 120)
	if err != nil {
		t.Fatalf("Redeem(120, 120) failed: %v", err)
	}
	if newBalance != 0 {
		t.Errorf("new balance = %d, want 0", newBalance)
	}
}

func TestRedeem_FailsIffCostExceedsBalance(t *testing.T) {
	// Property: Redeem(b, c) fails with InsufficientPoints iff c > b;
	// otherwise the result is b-c and never negative.
	for b := rewards.Points(0); b <= 30; b++ {
		for c := rewards.Points(0); c <= 30; c++ {
			got, err := rewards.Redeem(b, c)
			if c > b {
				if !errors.Is(err, rewards.ErrInsufficientPoints) {
					t.Fatalf("Redeem(%d, %d): expected ErrInsufficientPoints, got %v", b, c, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("Redeem(%d, %d) failed: %v", b, c, err)
			}
			if got != b-c || got < 0 {
				t.Fatalf("Redeem(%d, %d) = %d, want %d", b, c, got, b-c)
			}
		}
	}
}

func TestRedeem_NegativeInputs(t *testing.T) {
	if _, err := rewards.Redeem(-1, 10); !errors.Is(err, rewards.ErrInvalidInput) {
		t.Errorf("negative balance: expected ErrInvalidInput, got %v", err)
	}
	if _, err := rewards.Redeem(10, -1); !errors.Is(err, rewards.ErrInvalidInput) {
		t.Errorf("negative cost: expected ErrInvalidInput, got %v", err)
	}
}
