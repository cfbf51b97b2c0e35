/*
rules.go - Threshold tables for the rewards program

PURPOSE:
  Holds the three rule tables the engine computes against:
  - quiz score -> point award (per quiz result)
  - confirmed visit count -> flat point bonus (per threshold, once ever)
  - quiz score -> badge level (per quiz result)
  plus the tier thresholds used by the classifier.

LOOKUP CONTRACT:
  Every lookup returns the single highest qualifying row. Rows are
  never summed for the same metric: a score of 95 earns the 90-row
  award of 100 points, not 100+60+30.

TWO SCALES, AGAIN:
  BadgeThresholds grade one quiz score (percent). TierThresholds grade
  the cumulative balance (points). Keep them apart.

CONFIGURABILITY:
  Rules is a value so the factory can build alternative programs from
  JSON. DefaultRules() is the production MuseMap program.

SEE ALSO:
  - accrual.go: consumes these tables
  - tier.go: consumes TierThresholds
  - factory/rules.go: JSON -> Rules conversion
*/
package rewards

// =============================================================================
// RULE ROWS
// =============================================================================

// ScoreAward maps a minimum quiz score to a point award.
type ScoreAward struct {
	MinScore Score
	Points   Points
}

// VisitAward maps a minimum confirmed-visit count to a flat point bonus.
type VisitAward struct {
	MinVisits int
	Points    Points
}

// BadgeThreshold maps a minimum quiz score to a badge level.
type BadgeThreshold struct {
	MinScore Score
	Level    BadgeLevel
}

// TierThreshold maps a minimum cumulative point total to a tier.
type TierThreshold struct {
	MinPoints Points
	Tier      Tier
}

// =============================================================================
// RULES
// =============================================================================

// Rules is one complete rewards program configuration. All tables are
// ordered descending by threshold; lookups scan top-down and return
// the first qualifying row.
type Rules struct {
	ScoreAwards     []ScoreAward
	VisitAwards     []VisitAward
	BadgeThresholds []BadgeThreshold
	TierThresholds  []TierThreshold
}

// DefaultRules returns the production MuseMap program.
func DefaultRules() Rules {
	return Rules{
		ScoreAwards: []ScoreAward{
			{MinScore: NewScoreFromInt(90), Points: 100},
			{MinScore: NewScoreFromInt(80), Points: 60},
			{MinScore: NewScoreFromInt(60), Points: 30},
		},
		VisitAwards: []VisitAward{
			{MinVisits: 20, Points: 200},
			{MinVisits: 10, Points: 100},
			{MinVisits: 5, Points: 50},
		},
		BadgeThresholds: []BadgeThreshold{
			{MinScore: NewScoreFromInt(90), Level: BadgeGold},
			{MinScore: NewScoreFromInt(80), Level: BadgeSilver},
			{MinScore: NewScoreFromInt(60), Level: BadgeBronze},
		},
		TierThresholds: []TierThreshold{
			{MinPoints: 1000, Tier: TierGold},
			{MinPoints: 500, Tier: TierSilver},
			{MinPoints: 250, Tier: TierBronze},
			{MinPoints: 0, Tier: TierNone},
		},
	}
}

// =============================================================================
// LOOKUPS - highest qualifying threshold wins
// =============================================================================

// QuizPoints returns the point award for one quiz score, or 0 when the
// score is below the lowest award threshold.
func (r Rules) QuizPoints(score Score) (Points, error) {
	if err := validateScore(score); err != nil {
		return 0, err
	}
	for _, row := range r.ScoreAwards {
		if score.GreaterThanOrEqual(row.MinScore) {
			return row.Points, nil
		}
	}
	return 0, nil
}

// VisitPoints returns the flat bonus for a confirmed-visit count and
// the threshold that produced it. The bonus is NOT additive across
// calls: it is unlocked once when the count reaches the threshold, and
// the caller must not grant the same threshold twice.
func (r Rules) VisitPoints(confirmedVisits int) (Points, int, error) {
	if confirmedVisits < 0 {
		return 0, 0, &InvalidInputError{Field: "visits", Message: "must be non-negative"}
	}
	for _, row := range r.VisitAwards {
		if confirmedVisits >= row.MinVisits {
			return row.Points, row.MinVisits, nil
		}
	}
	return 0, 0, nil
}

// BadgeFor returns the badge level for one quiz score, or BadgeNone
// when the score is below the lowest badge threshold. Only the single
// highest qualifying level is ever awarded per result.
func (r Rules) BadgeFor(score Score) (BadgeLevel, error) {
	if err := validateScore(score); err != nil {
		return BadgeNone, err
	}
	for _, row := range r.BadgeThresholds {
		if score.GreaterThanOrEqual(row.MinScore) {
			return row.Level, nil
		}
	}
	return BadgeNone, nil
}

// GoldThreshold returns the highest tier threshold, used to scale
// progress bars.
func (r Rules) GoldThreshold() Points {
	if len(r.TierThresholds) == 0 {
		return 0
	}
	return r.TierThresholds[0].MinPoints
}

func validateScore(score Score) error {
	if score.IsNegative() || score.GreaterThan(NewScoreFromInt(100)) {
		return &InvalidInputError{Field: "score", Message: "must be within [0, 100]"}
	}
	return nil
}
