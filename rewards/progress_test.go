package rewards_test

import (
	"errors"
	"testing"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PROGRESS REPORTING
// =============================================================================

func TestProgressReport_MidBronze(t *testing.T) {
	// GIVEN: 300 points (Bronze)
	// WHEN: Building the progress report
	// THEN: Percent is scaled against Gold (300/1000 = 30%), and
	//       200 points remain to Silver

	r := rewards.DefaultRules()

	p, err := r.ProgressReport(300)
	if err != nil {
		t.Fatalf("ProgressReport(300) failed: %v", err)
	}
	if p.Tier != rewards.TierBronze {
		t.Errorf("tier = %q, want bronze", p.Tier)
	}
	if !p.PercentToNextTier.Equal(decimal.NewFromInt(30)) {
		t.Errorf("percent = %v, want 30", p.PercentToNextTier)
	}
	if p.PointsToNextTier == nil || *p.PointsToNextTier != 200 {
		t.Errorf("points to next = %v, want 200", p.PointsToNextTier)
	}
}

func TestProgressReport_AtGold(t *testing.T) {
	// GIVEN: Exactly 1000 points
	// WHEN: Building the progress report
	// THEN: Gold, 100%, no next tier

	r := rewards.DefaultRules()

	p, err := r.ProgressReport(1000)
	if err != nil {
		t.Fatalf("ProgressReport(1000) failed: %v", err)
	}
	if p.Tier != rewards.TierGold {
		t.Errorf("tier = %q, want gold", p.Tier)
	}
	if !p.PercentToNextTier.Equal(decimal.NewFromInt(100)) {
		t.Errorf("percent = %v, want 100", p.PercentToNextTier)
	}
	if p.PointsToNextTier != nil {
		t.Errorf("points to next = %v, want nil", *p.PointsToNextTier)
	}
}

func TestProgressReport_BeyondGoldCapsAt100(t *testing.T) {
	r := rewards.DefaultRules()

	p, err := r.ProgressReport(2500)
	if err != nil {
		t.Fatalf("ProgressReport(2500) failed: %v", err)
	}
	if !p.PercentToNextTier.Equal(decimal.NewFromInt(100)) {
		t.Errorf("percent = %v, want capped at 100", p.PercentToNextTier)
	}
}

func TestProgressReport_Zero(t *testing.T) {
	r := rewards.DefaultRules()

	p, err := r.ProgressReport(0)
	if err != nil {
		t.Fatalf("ProgressReport(0) failed: %v", err)
	}
	if p.Tier != rewards.TierNone {
		t.Errorf("tier = %q, want none", p.Tier)
	}
	if !p.PercentToNextTier.IsZero() {
		t.Errorf("percent = %v, want 0", p.PercentToNextTier)
	}
	if p.PointsToNextTier == nil || *p.PointsToNextTier != 250 {
		t.Errorf("points to next = %v, want 250", p.PointsToNextTier)
	}
}

func TestProgressReport_FractionalPercent(t *testing.T) {
	// 190 points is 19% of the way to Gold, exactly.
	r := rewards.DefaultRules()

	p, err := r.ProgressReport(190)
	if err != nil {
		t.Fatalf("ProgressReport(190) failed: %v", err)
	}
	if !p.PercentToNextTier.Equal(decimal.NewFromInt(19)) {
		t.Errorf("percent = %v, want 19", p.PercentToNextTier)
	}
}

func TestProgressReport_NegativeInput(t *testing.T) {
	r := rewards.DefaultRules()
	if _, err := r.ProgressReport(-10); !errors.Is(err, rewards.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
