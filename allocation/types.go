package allocation

// TotalShares is the fixed share denominator: 10,000 basis points = 100%.
const TotalShares uint64 = 10000

// Contribution is a single claimant's weighted funding input.
// Amounts for the same claimant must be aggregated before allocation;
// Allocate treats every entry as a distinct claimant.
type Contribution struct {
	ClaimantID string // payout address of the contributor
	Amount     uint64 // contribution in smallest fiat units
}

// ShareEntry records one claimant's slice of the distribution.
type ShareEntry struct {
	ClaimantID string
	Shares     uint64 // basis points, 1..10000
}

// ShareTable is the ordered allocation produced for one funding round.
// Order follows the input contribution order and is preserved through
// deployment (payees and shares are passed as parallel lists).
type ShareTable []ShareEntry

// Sum returns the total of all share values.
func (t ShareTable) Sum() uint64 {
	var sum uint64
	for _, e := range t {
		sum += e.Shares
	}
	return sum
}

// SharesOf returns the share for the given claimant, or false if absent.
func (t ShareTable) SharesOf(claimantID string) (uint64, bool) {
	for _, e := range t {
		if e.ClaimantID == claimantID {
			return e.Shares, true
		}
	}
	return 0, false
}

// ClaimantIDs returns the claimant ids in table order.
func (t ShareTable) ClaimantIDs() []string {
	ids := make([]string, len(t))
	for i, e := range t {
		ids[i] = e.ClaimantID
	}
	return ids
}

// Validate checks the table invariants: nonempty, no duplicate claimants,
// no zero shares, and shares summing to exactly TotalShares.
func (t ShareTable) Validate() error {
	if len(t) == 0 {
		return ErrNoContributions
	}
	seen := make(map[string]struct{}, len(t))
	for _, e := range t {
		if _, dup := seen[e.ClaimantID]; dup {
			return ErrDuplicateClaimant
		}
		seen[e.ClaimantID] = struct{}{}
		if e.Shares == 0 {
			return ErrDegenerateAllocation
		}
	}
	if t.Sum() != TotalShares {
		return ErrShareSumMismatch
	}
	return nil
}
