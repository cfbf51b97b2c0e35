/*
tier.go - Tier classification from cumulative points

PURPOSE:
  Maps a cumulative point balance to a standing tier by scanning the
  tier thresholds in descending order and returning the first one the
  balance meets or exceeds. Total over all non-negative balances;
  rejects negative input.

SEE ALSO:
  - rules.go: TierThresholds table
  - progress.go: progress-bar view built on top of this
*/
package rewards

// TierStanding is the classifier's output: the tier the balance sits
// in, plus the next threshold to reach. NextThreshold is nil at the
// top tier.
type TierStanding struct {
	Tier          Tier
	NextTier      Tier
	NextThreshold *Points
}

// TierOf classifies a point balance into a tier.
func (r Rules) TierOf(points Points) (Tier, error) {
	standing, err := r.Standing(points)
	if err != nil {
		return TierNone, err
	}
	return standing.Tier, nil
}

// Standing classifies a point balance and reports the next threshold.
func (r Rules) Standing(points Points) (TierStanding, error) {
	if points < 0 {
		return TierStanding{}, &InvalidInputError{Field: "points", Message: "must be non-negative"}
	}

	// Descending scan: first row the balance meets wins.
	for i, row := range r.TierThresholds {
		if points >= row.MinPoints {
			standing := TierStanding{Tier: row.Tier}
			if i > 0 {
				next := r.TierThresholds[i-1]
				threshold := next.MinPoints
				standing.NextTier = next.Tier
				standing.NextThreshold = &threshold
			}
			return standing, nil
		}
	}

	// Unreachable with a well-formed table (lowest threshold is 0),
	// but a factory-built table could omit the zero row.
	return TierStanding{Tier: TierNone}, nil
}
