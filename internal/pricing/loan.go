package pricing

import (
	"fmt"
	"math"
)

// MonthlyPayment amortizes principal over termMonths at the given APR (in percent).
// A zero APR returns the exact quotient; otherwise the payment is rounded to cents.
func MonthlyPayment(principal, apr float64, termMonths int) (float64, error) {
	if termMonths <= 0 {
		return 0, fmt.Errorf("loan term of %d months: %w", termMonths, ErrInvalidTerm)
	}
	if principal < 0 || apr < 0 {
		return 0, fmt.Errorf("loan principal %v at apr %v: %w", principal, apr, ErrInvalidConfiguration)
	}
	if apr == 0 {
		return principal / float64(termMonths), nil
	}

	rate := apr / 100 / 12
	growth := math.Pow(1+rate, float64(termMonths))
	payment := principal * rate * growth / (growth - 1)
	return Round(payment, MoneyPrecision), nil
}
