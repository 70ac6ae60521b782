// Package allocation converts weighted funding contributions into
// basis-point share tables that sum to exactly 10,000.
package allocation

import (
	"fmt"
	"math/bits"
)

// Allocate computes a ShareTable from the given contributions.
//
// Each share is round(amount / total * 10000) with half-up rounding. The
// rounding drift (10000 minus the sum of rounded shares) is added to the
// claimant with the largest amount, first occurrence winning ties, so the
// table always sums to exactly 10000. If the correction would leave any
// claimant with a non-positive share the distribution is rejected as
// degenerate rather than silently reallocated.
func Allocate(contributions []Contribution) (ShareTable, error) {
	if len(contributions) == 0 {
		return nil, ErrNoContributions
	}

	var total uint64
	seen := make(map[string]struct{}, len(contributions))
	for _, c := range contributions {
		if c.Amount == 0 {
			return nil, fmt.Errorf("%w: claimant %s", ErrNonPositiveAmount, c.ClaimantID)
		}
		if _, dup := seen[c.ClaimantID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateClaimant, c.ClaimantID)
		}
		seen[c.ClaimantID] = struct{}{}

		sum, carry := bits.Add64(total, c.Amount, 0)
		if carry != 0 {
			return nil, ErrAmountOverflow
		}
		total = sum
	}

	table := make(ShareTable, len(contributions))
	largest := 0 // index of the drift-correction target
	var sumShares uint64
	for i, c := range contributions {
		table[i] = ShareEntry{
			ClaimantID: c.ClaimantID,
			Shares:     roundShare(c.Amount, total),
		}
		sumShares += table[i].Shares
		if c.Amount > contributions[largest].Amount {
			largest = i
		}
	}

	drift := int64(TotalShares) - int64(sumShares)
	if drift != 0 {
		corrected := int64(table[largest].Shares) + drift
		if corrected <= 0 {
			return nil, fmt.Errorf("%w: drift %d would zero out claimant %s",
				ErrDegenerateAllocation, drift, table[largest].ClaimantID)
		}
		table[largest].Shares = uint64(corrected)
	}

	// Extreme skew can round a tiny contribution to zero basis points.
	for _, e := range table {
		if e.Shares == 0 {
			return nil, fmt.Errorf("%w: claimant %s rounds to zero shares",
				ErrDegenerateAllocation, e.ClaimantID)
		}
	}

	return table, nil
}

// roundShare computes round(amount * 10000 / total) with half-up rounding,
// using a 128-bit intermediate so large totals cannot overflow.
// total >= amount > 0 is guaranteed by the caller, so the quotient fits.
func roundShare(amount, total uint64) uint64 {
	hi, lo := bits.Mul64(amount, TotalShares)
	lo, carry := bits.Add64(lo, total/2, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, total)
	return q
}
