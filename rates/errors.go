package rates

import "errors"

var (
	// ErrInvalidRate indicates a non-positive exchange rate.
	ErrInvalidRate = errors.New("rates: exchange rate must be positive")

	// ErrInvalidMultiplier indicates a zero cap multiplier.
	ErrInvalidMultiplier = errors.New("rates: cap multiplier must be positive")

	// ErrCapOverflow indicates the repayment cap overflows uint64.
	ErrCapOverflow = errors.New("rates: repayment cap overflows")
)
