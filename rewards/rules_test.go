package rewards_test

import (
	"errors"
	"testing"

	"github.com/RajaShylesh112/musemap-sub000/rewards"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func score(n float64) rewards.Score {
	return rewards.NewScore(n)
}

func quizPoints(t *testing.T, r rewards.Rules, s float64) rewards.Points {
	t.Helper()
	pts, err := r.QuizPoints(score(s))
	if err != nil {
		t.Fatalf("QuizPoints(%v) failed: %v", s, err)
	}
	return pts
}

func visitPoints(t *testing.T, r rewards.Rules, visits int) rewards.Points {
	t.Helper()
	pts, _, err := r.VisitPoints(visits)
	if err != nil {
		t.Fatalf("VisitPoints(%d) failed: %v", visits, err)
	}
	return pts
}

// =============================================================================
// QUIZ SCORE TABLE
// =============================================================================

func TestQuizPoints_Boundaries(t *testing.T) {
	// GIVEN: The default score table {90:100, 80:60, 60:30}
	// WHEN: Looking up scores on either side of each threshold
	// THEN: The single highest qualifying row wins; no partial credit

	r := rewards.DefaultRules()

	cases := []struct {
		score float64
		want  rewards.Points
	}{
		{0, 0},
		{59, 0},
		{59.99, 0},
		{60, 30},
		{79, 30},
		{80, 60},
		{89, 60},
		{89.5, 60},
		{90, 100},
		{95, 100},
		{100, 100},
	}
	for _, tc := range cases {
		if got := quizPoints(t, r, tc.score); got != tc.want {
			t.Errorf("QuizPoints(%v) = %d, want %d", tc.score, got, tc.want)
		}
	}
}

func TestQuizPoints_MonotonicAndClosed(t *testing.T) {
	// GIVEN: All integer scores in [0, 100]
	// WHEN: Looking up each award
	// THEN: Awards are drawn from {0, 30, 60, 100} and never decrease

	r := rewards.DefaultRules()
	allowed := map[rewards.Points]bool{0: true, 30: true, 60: true, 100: true}

	prev := rewards.Points(0)
	for s := 0; s <= 100; s++ {
		got := quizPoints(t, r, float64(s))
		if !allowed[got] {
			t.Fatalf("QuizPoints(%d) = %d, outside {0, 30, 60, 100}", s, got)
		}
		if got < prev {
			t.Fatalf("QuizPoints not monotonic at %d: %d < %d", s, got, prev)
		}
		prev = got
	}
}

func TestQuizPoints_OutOfRangeScore(t *testing.T) {
	// GIVEN: Scores outside [0, 100]
	// WHEN: Looking up an award
	// THEN: ErrInvalidInput, no partial result

	r := rewards.DefaultRules()

	for _, s := range []float64{-1, -0.01, 100.01, 150} {
		if _, err := r.QuizPoints(score(s)); !errors.Is(err, rewards.ErrInvalidInput) {
			t.Errorf("QuizPoints(%v): expected ErrInvalidInput, got %v", s, err)
		}
	}
}

func TestQuizPoints_Deterministic(t *testing.T) {
	// Pure function property: same input, same output.
	r := rewards.DefaultRules()
	if quizPoints(t, r, 85) != quizPoints(t, r, 85) {
		t.Error("QuizPoints(85) is not deterministic")
	}
}

// =============================================================================
// VISIT COUNT TABLE
// =============================================================================

func TestVisitPoints_Boundaries(t *testing.T) {
	// GIVEN: The default visit table {20:200, 10:100, 5:50}
	// WHEN: Looking up counts around each threshold
	// THEN: Single highest qualifying row, never a sum of rows

	r := rewards.DefaultRules()

	cases := []struct {
		visits int
		want   rewards.Points
	}{
		{0, 0},
		{4, 0},
		{5, 50},
		{9, 50},
		{10, 100},
		{12, 100},
		{19, 100},
		{20, 200},
		{100, 200},
	}
	for _, tc := range cases {
		if got := visitPoints(t, r, tc.visits); got != tc.want {
			t.Errorf("VisitPoints(%d) = %d, want %d", tc.visits, got, tc.want)
		}
	}
}

func TestVisitPoints_MonotonicAndClosed(t *testing.T) {
	r := rewards.DefaultRules()
	allowed := map[rewards.Points]bool{0: true, 50: true, 100: true, 200: true}

	prev := rewards.Points(0)
	for v := 0; v <= 50; v++ {
		got := visitPoints(t, r, v)
		if !allowed[got] {
			t.Fatalf("VisitPoints(%d) = %d, outside {0, 50, 100, 200}", v, got)
		}
		if got < prev {
			t.Fatalf("VisitPoints not monotonic at %d: %d < %d", v, got, prev)
		}
		prev = got
	}
}

func TestVisitPoints_ReportsThreshold(t *testing.T) {
	// GIVEN: 12 confirmed visits
	// WHEN: Looking up the bonus
	// THEN: 100 points unlocked by the 10-visit threshold

	r := rewards.DefaultRules()
	pts, threshold, err := r.VisitPoints(12)
	if err != nil {
		t.Fatalf("VisitPoints(12) failed: %v", err)
	}
	if pts != 100 || threshold != 10 {
		t.Errorf("VisitPoints(12) = (%d, %d), want (100, 10)", pts, threshold)
	}
}

func TestVisitPoints_NegativeCount(t *testing.T) {
	r := rewards.DefaultRules()
	if _, _, err := r.VisitPoints(-1); !errors.Is(err, rewards.ErrInvalidInput) {
		t.Errorf("VisitPoints(-1): expected ErrInvalidInput, got %v", err)
	}
}

// =============================================================================
// BADGE THRESHOLDS
// =============================================================================

func TestBadgeFor_Levels(t *testing.T) {
	// GIVEN: Badge thresholds 90/80/60 (a per-quiz scale, not the tier scale)
	// WHEN: Grading scores
	// THEN: Only the single highest qualifying level is returned

	r := rewards.DefaultRules()

	cases := []struct {
		score float64
		want  rewards.BadgeLevel
	}{
		{0, rewards.BadgeNone},
		{59.9, rewards.BadgeNone},
		{60, rewards.BadgeBronze},
		{79, rewards.BadgeBronze},
		{80, rewards.BadgeSilver},
		{89, rewards.BadgeSilver},
		{90, rewards.BadgeGold},
		{100, rewards.BadgeGold},
	}
	for _, tc := range cases {
		got, err := r.BadgeFor(score(tc.score))
		if err != nil {
			t.Fatalf("BadgeFor(%v) failed: %v", tc.score, err)
		}
		if got != tc.want {
			t.Errorf("BadgeFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
