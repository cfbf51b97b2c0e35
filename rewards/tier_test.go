package rewards_test

import (
	"errors"
	"testing"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
)

// =============================================================================
// TIER CLASSIFICATION
// =============================================================================

func TestTierOf_Boundaries(t *testing.T) {
	// GIVEN: Tier thresholds None=0 < Bronze=250 < Silver=500 < Gold=1000
	// WHEN: Classifying balances around each threshold
	// THEN: First threshold met or exceeded wins (descending scan)

	r := rewards.DefaultRules()

	cases := []struct {
		points rewards.Points
		want   rewards.Tier
	}{
		{0, rewards.TierNone},
		{190, rewards.TierNone},
		{249, rewards.TierNone},
		{250, rewards.TierBronze},
		{499, rewards.TierBronze},
		{500, rewards.TierSilver},
		{999, rewards.TierSilver},
		{1000, rewards.TierGold},
		{5000, rewards.TierGold},
	}
	for _, tc := range cases {
		got, err := r.TierOf(tc.points)
		if err != nil {
			t.Fatalf("TierOf(%d) failed: %v", tc.points, err)
		}
		if got != tc.want {
			t.Errorf("TierOf(%d) = %q, want %q", tc.points, got, tc.want)
		}
	}
}

func TestTierOf_Monotonic(t *testing.T) {
	// GIVEN: Every balance from 0 to 1200
	// WHEN: Classifying in increasing order
	// THEN: Tier never goes down

	r := rewards.DefaultRules()
	rank := map[rewards.Tier]int{
		rewards.TierNone:   0,
		rewards.TierBronze: 1,
		rewards.TierSilver: 2,
		rewards.TierGold:   3,
	}

	prev := 0
	for p := rewards.Points(0); p <= 1200; p++ {
		tier, err := r.TierOf(p)
		if err != nil {
			t.Fatalf("TierOf(%d) failed: %v", p, err)
		}
		if rank[tier] < prev {
			t.Fatalf("tier went down at %d points: %q", p, tier)
		}
		prev = rank[tier]
	}
}

func TestTierOf_NegativeInput(t *testing.T) {
	r := rewards.DefaultRules()
	if _, err := r.TierOf(-1); !errors.Is(err, rewards.ErrInvalidInput) {
		t.Errorf("TierOf(-1): expected ErrInvalidInput, got %v", err)
	}
}

func TestStanding_NextThreshold(t *testing.T) {
	// GIVEN: A Bronze balance of 300
	// WHEN: Computing standing
	// THEN: Next tier is Silver at 500

	r := rewards.DefaultRules()

	standing, err := r.Standing(300)
	if err != nil {
		t.Fatalf("Standing(300) failed: %v", err)
	}
	if standing.Tier != rewards.TierBronze {
		t.Errorf("Standing(300).Tier = %q, want bronze", standing.Tier)
	}
	if standing.NextTier != rewards.TierSilver {
		t.Errorf("Standing(300).NextTier = %q, want silver", standing.NextTier)
	}
	if standing.NextThreshold == nil || *standing.NextThreshold != 500 {
		t.Errorf("Standing(300).NextThreshold = %v, want 500", standing.NextThreshold)
	}
}

func TestStanding_GoldHasNoNext(t *testing.T) {
	r := rewards.DefaultRules()

	standing, err := r.Standing(1000)
	if err != nil {
		t.Fatalf("Standing(1000) failed: %v", err)
	}
	if standing.Tier != rewards.TierGold {
		t.Errorf("Standing(1000).Tier = %q, want gold", standing.Tier)
	}
	if standing.NextThreshold != nil {
		t.Errorf("Standing(1000).NextThreshold = %v, want nil", *standing.NextThreshold)
	}
}
