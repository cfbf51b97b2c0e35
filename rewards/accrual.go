/*
accrual.go - Quiz and visit accrual calculators

PURPOSE:
  Turns raw facts (a quiz score, a confirmed-visit count) into the
  values the caller should persist: points to add and, for quizzes,
  the badge level unlocked. Two independent paths:

  Quiz accrual (additive):
    Each new quiz result earns its score-table award exactly once.
    The engine itself is stateless; at-most-once is enforced by the
    ledger's idempotency key, which the caller sets to the result ID.

  Visit accrual (flat, once per threshold):
    The confirmed-visit count is recomputed and looked up against the
    visit table. The bonus is a one-time unlock for crossing a
    threshold, not an increment; the caller passes the thresholds
    already granted and gets zero back for any of those.

SIDE EFFECTS:
  None. Persisting balances, badges and threshold grants belongs to
  the store; this file only computes the values to persist.

SEE ALSO:
  - rules.go: the threshold tables
  - ledger.go: idempotent application of the computed deltas
*/
package rewards

// AccrueQuiz computes the accrual for one quiz result: the point award
// for its score and the badge level it unlocks. Fails with
// ErrInvalidInput when the score is outside [0, 100].
func (r Rules) AccrueQuiz(result QuizResult) (AccrualResult, error) {
	pts, err := r.QuizPoints(result.Score)
	if err != nil {
		return AccrualResult{}, err
	}
	badge, err := r.BadgeFor(result.Score)
	if err != nil {
		return AccrualResult{}, err
	}
	return AccrualResult{PointsToAdd: pts, BadgeToAward: badge}, nil
}

// AccrueQuizBatch computes the summed point award and per-result
// badges for a set of unprocessed quiz results. Any invalid score
// aborts the whole batch with no partial result.
func (r Rules) AccrueQuizBatch(results []QuizResult) (Points, []BadgeLevel, error) {
	total := Points(0)
	badges := make([]BadgeLevel, 0, len(results))
	for _, res := range results {
		acc, err := r.AccrueQuiz(res)
		if err != nil {
			return 0, nil, err
		}
		total += acc.PointsToAdd
		badges = append(badges, acc.BadgeToAward)
	}
	return total, badges, nil
}

// AccrueVisits computes the visit bonus for the current confirmed-visit
// count. granted lists thresholds already granted to this visitor; a
// threshold in that set yields a zero result so the bonus is granted
// at most once, ever.
func (r Rules) AccrueVisits(confirmedVisits int, granted []int) (VisitAccrualResult, error) {
	pts, threshold, err := r.VisitPoints(confirmedVisits)
	if err != nil {
		return VisitAccrualResult{}, err
	}
	if threshold == 0 {
		return VisitAccrualResult{}, nil
	}
	for _, g := range granted {
		if g == threshold {
			return VisitAccrualResult{}, nil
		}
	}
	return VisitAccrualResult{PointsToAdd: pts, Threshold: threshold}, nil
}
