// Package funding tracks contribution rounds and drives the Funding -> Live
// transition: when a round's target is reached its aggregated contributions
// are allocated into shares and a ledger is deployed, exactly once.
package funding

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/google/uuid"

	"github.com/fundsplit/libfundsplit-go/allocation"
	"github.com/fundsplit/libfundsplit-go/identity"
)

// State is a round's lifecycle state.
type State uint8

const (
	// StateFunding accepts contributions.
	StateFunding State = iota
	// StateLive is terminal: the round's ledger is deployed.
	StateLive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFunding:
		return "funding"
	case StateLive:
		return "live"
	default:
		return "unknown"
	}
}

// Round accumulates weighted contributions toward a fiat funding target.
// Contributions from the same identity are aggregated: an identity is never
// counted as two claimants.
type Round struct {
	id     string
	target uint64

	mu      sync.Mutex
	order   []string // first-seen contribution order
	amounts map[string]uint64
	total   uint64
	state   State
	ledger  string // ledger address once live
}

// NewRound creates a round with the given fiat funding target (in smallest
// fiat units).
func NewRound(targetFiat uint64) (*Round, error) {
	if targetFiat == 0 {
		return nil, ErrZeroTarget
	}
	return &Round{
		id:      uuid.NewString(),
		target:  targetFiat,
		amounts: make(map[string]uint64),
	}, nil
}

// ID returns the round identifier.
func (r *Round) ID() string { return r.id }

// Target returns the fiat funding target.
func (r *Round) Target() uint64 { return r.target }

// Contribute records a contribution from the claimant. Repeat contributions
// from the same identity are merged into one claimant entry.
func (r *Round) Contribute(claimantID string, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: claimant %s", ErrNonPositiveContribution, claimantID)
	}
	if err := identity.ValidateAddress(claimantID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateFunding {
		return fmt.Errorf("%w: round %s", ErrRoundClosed, r.id)
	}

	total, carry := bits.Add64(r.total, amount, 0)
	if carry != 0 {
		return ErrContributionOverflow
	}
	// Per-claimant sums cannot overflow if the grand total does not.
	if _, seen := r.amounts[claimantID]; !seen {
		r.order = append(r.order, claimantID)
	}
	r.amounts[claimantID] += amount
	r.total = total
	return nil
}

// CurrentFunding returns the total contributed so far.
func (r *Round) CurrentFunding() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// GoalReached reports whether contributions have met the target.
func (r *Round) GoalReached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total >= r.target
}

// State returns the round's lifecycle state.
func (r *Round) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LedgerAddress returns the deployed ledger's address, or "" while funding.
func (r *Round) LedgerAddress() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger
}

// Contributions returns the aggregated contribution list in first-seen order,
// ready for allocation.
func (r *Round) Contributions() []allocation.Contribution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contributionsLocked()
}

// contributionsLocked builds the contribution list. Caller holds r.mu.
func (r *Round) contributionsLocked() []allocation.Contribution {
	out := make([]allocation.Contribution, len(r.order))
	for i, id := range r.order {
		out[i] = allocation.Contribution{ClaimantID: id, Amount: r.amounts[id]}
	}
	return out
}
