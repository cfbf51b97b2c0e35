/*
progress.go - Progress report for the dashboard

PURPOSE:
  Produces the visitor's standing for progress-bar display: current
  tier, percent of the way to the top, and points left to the next
  tier. The percent is always scaled against the Gold threshold (the
  program maximum), regardless of which tier the visitor sits in, so
  the bar never resets between tiers.

SEE ALSO:
  - tier.go: tier classification
  - api/dto.go: JSON shape served to the dashboard
*/
package rewards

import "github.com/shopspring/decimal"

// Progress is the dashboard view of a visitor's standing.
// PointsToNextTier is nil at Gold.
type Progress struct {
	Tier              Tier
	PercentToNextTier decimal.Decimal
	PointsToNextTier  *Points
}

// ProgressReport computes the progress view for a point balance.
func (r Rules) ProgressReport(points Points) (Progress, error) {
	standing, err := r.Standing(points)
	if err != nil {
		return Progress{}, err
	}

	gold := r.GoldThreshold()
	percent := decimal.NewFromInt(100)
	if gold > 0 {
		percent = decimal.NewFromInt(int64(points)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(gold)))
		if percent.GreaterThan(decimal.NewFromInt(100)) {
			percent = decimal.NewFromInt(100)
		}
	}

	progress := Progress{Tier: standing.Tier, PercentToNextTier: percent}
	if standing.NextThreshold != nil {
		remaining := *standing.NextThreshold - points
		if remaining < 0 {
			remaining = 0
		}
		progress.PointsToNextTier = &remaining
	}
	return progress, nil
}
