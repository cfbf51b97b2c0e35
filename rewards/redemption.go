/*
redemption.go - Redemption validation

PURPOSE:
  Gates spending of the point balance. Pure check-and-subtract: the
  caller supplies the current balance and the reward's cost, and gets
  the resulting balance or a structured shortage error.

NOT IDEMPOTENT:
  Redeeming twice with the same inputs legitimately deducts twice.
  Deduplication is the caller's job (a single confirmed user action);
  this function provides none.

SEE ALSO:
  - errors.go: InsufficientPointsError
  - store/sqlite: applies the deduction atomically
*/
package rewards

// Redeem validates a redemption against the current balance and
// returns the new balance. Fails with ErrInsufficientPoints when cost
// exceeds balance, leaving the balance untouched; the returned balance
// is always non-negative on success.
func Redeem(balance, cost Points) (Points, error) {
	if balance < 0 {
		return 0, &InvalidInputError{Field: "balance", Message: "must be non-negative"}
	}
	if cost < 0 {
		return 0, &InvalidInputError{Field: "cost", Message: "must be non-negative"}
	}
	if cost > balance {
		return 0, &InsufficientPointsError{
			Available: balance,
			Requested: cost,
			Shortfall: cost - balance,
		}
	}
	return balance - cost, nil
}
