package allocation

import "errors"

var (
	// ErrNoContributions indicates an empty contribution list.
	ErrNoContributions = errors.New("allocation: no contributions")

	// ErrNonPositiveAmount indicates a contribution amount of zero.
	ErrNonPositiveAmount = errors.New("allocation: contribution amount must be positive")

	// ErrDuplicateClaimant indicates the same claimant appears twice
	// (the caller must aggregate per-claimant amounts before allocating).
	ErrDuplicateClaimant = errors.New("allocation: duplicate claimant")

	// ErrDegenerateAllocation indicates the distribution is too skewed for
	// every claimant to hold at least one basis point.
	ErrDegenerateAllocation = errors.New("allocation: degenerate distribution")

	// ErrShareSumMismatch indicates a share table whose shares do not sum to 10000.
	ErrShareSumMismatch = errors.New("allocation: shares do not sum to 10000")

	// ErrAmountOverflow indicates the contribution total overflows uint64.
	ErrAmountOverflow = errors.New("allocation: contribution total overflows")
)
