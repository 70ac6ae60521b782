// Package ledger implements the revenue-splitting accounting engine: one
// ledger per funded round, holding an immutable share table and repayment
// cap, accepting revenue deposits, and paying claimants their proportional
// cap-bounded entitlement through pull-based releases.
package ledger

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/fundsplit/libfundsplit-go/allocation"
)

// Transferrer delivers value to a claimant address. The transfer must be
// all-or-nothing: a nil return means the full amount was delivered, an error
// means none of it was.
type Transferrer interface {
	Transfer(ctx context.Context, toAddress string, amount uint64) error
}

// Ledger is the accounting state for one funded round.
//
// The share table, repayment cap, and administrator identity are written once
// at creation. totalReceived, released, and totalReleased are the only
// mutable state; a single mutex guards them and spans the entire
// bookkeeping-plus-transfer sequence in Release, so two concurrent releases
// can never both observe the same pending amount.
type Ledger struct {
	table       allocation.ShareTable
	cap         uint64
	adminID     string
	adminCred   *AdminCredential
	transferrer Transferrer

	mu            sync.Mutex
	totalReceived uint64
	released      map[string]uint64
	totalReleased uint64
	paused        bool
}

// Snapshot is a point-in-time copy of the mutable ledger state.
type Snapshot struct {
	TotalReceived uint64
	TotalReleased uint64
	Released      map[string]uint64
	Paused        bool
}

// New creates a ledger for the given share table and repayment cap.
// The table must already satisfy its invariants (shares summing to 10000).
func New(table allocation.ShareTable, repaymentCap uint64, adminID string, cred *AdminCredential, transferrer Transferrer) (*Ledger, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if repaymentCap == 0 {
		return nil, ErrZeroCap
	}
	if transferrer == nil {
		return nil, ErrNilTransferrer
	}

	return &Ledger{
		table:       table,
		cap:         repaymentCap,
		adminID:     adminID,
		adminCred:   cred,
		transferrer: transferrer,
		released:    make(map[string]uint64, len(table)),
	}, nil
}

// RepaymentCap returns the immutable repayment cap.
func (l *Ledger) RepaymentCap() uint64 { return l.cap }

// ShareTable returns the immutable share table.
func (l *Ledger) ShareTable() allocation.ShareTable { return l.table }

// Deposit records incoming revenue. No per-claimant bookkeeping happens here;
// entitlements are computed lazily at release time from totalReceived.
func (l *Ledger) Deposit(amount uint64) error {
	if amount == 0 {
		return ErrNonPositiveDeposit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return ErrLedgerPaused
	}
	sum, carry := bits.Add64(l.totalReceived, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: deposit %d onto %d", ErrAmountOverflow, amount, l.totalReceived)
	}
	l.totalReceived = sum
	return nil
}

// PendingPayment returns the amount the claimant could withdraw right now:
// their share of total receipts, clipped to their share of the repayment cap,
// minus what they have already been paid.
func (l *Ledger) PendingPayment(claimantID string) (uint64, error) {
	shares, ok := l.table.SharesOf(claimantID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownClaimant, claimantID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingLocked(claimantID, shares), nil
}

// pendingLocked computes the claimant's pending payment. Caller holds l.mu.
func (l *Ledger) pendingLocked(claimantID string, shares uint64) uint64 {
	entitlement := proportion(l.totalReceived, shares)
	ceiling := proportion(l.cap, shares)
	if ceiling < entitlement {
		entitlement = ceiling
	}
	released := l.released[claimantID]
	if released >= entitlement {
		return 0
	}
	return entitlement - released
}

// Release pays the claimant their full pending amount through the transfer
// collaborator and records it. Bookkeeping and transfer form one atomic unit:
// the ledger mutex is held across both, and state is only updated after the
// transfer has succeeded, so a failed transfer leaves no partial credit and a
// successful one cannot be paid twice.
func (l *Ledger) Release(ctx context.Context, claimantID string) (uint64, error) {
	shares, ok := l.table.SharesOf(claimantID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownClaimant, claimantID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return 0, ErrLedgerPaused
	}

	amount := l.pendingLocked(claimantID, shares)
	if amount == 0 {
		return 0, fmt.Errorf("%w: claimant %s", ErrNothingToRelease, claimantID)
	}

	// Unreachable if pendingLocked is correct; abort rather than clamp.
	newTotal, carry := bits.Add64(l.totalReleased, amount, 0)
	if carry != 0 || newTotal > l.cap {
		return 0, fmt.Errorf("%w: claimant %s, amount %d, total released %d, cap %d",
			ErrCapExceeded, claimantID, amount, l.totalReleased, l.cap)
	}

	if err := l.transferrer.Transfer(ctx, claimantID, amount); err != nil {
		return 0, fmt.Errorf("%w: claimant %s, amount %d: %w", ErrTransferFailed, claimantID, amount, err)
	}

	l.released[claimantID] += amount
	l.totalReleased = newTotal
	return amount, nil
}

// Pause stops deposits and releases. Administrator only.
func (l *Ledger) Pause(callerID, secret string) error {
	if err := l.authorize(callerID, secret); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = true
	return nil
}

// Unpause resumes deposits and releases. Administrator only.
func (l *Ledger) Unpause(callerID, secret string) error {
	if err := l.authorize(callerID, secret); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = false
	return nil
}

// authorize checks the caller identity and secret against the administrator
// credential.
func (l *Ledger) authorize(callerID, secret string) error {
	if callerID != l.adminID || !l.adminCred.Verify(secret) {
		return fmt.Errorf("%w: caller %s", ErrUnauthorized, callerID)
	}
	return nil
}

// Snapshot returns a copy of the mutable ledger state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	released := make(map[string]uint64, len(l.released))
	for id, amt := range l.released {
		released[id] = amt
	}
	return Snapshot{
		TotalReceived: l.totalReceived,
		TotalReleased: l.totalReleased,
		Released:      released,
		Paused:        l.paused,
	}
}

// proportion computes floor(amount * shares / 10000) with a 128-bit
// intermediate. shares <= 10000 is guaranteed by the share table invariant,
// so the quotient always fits in uint64.
func proportion(amount, shares uint64) uint64 {
	hi, lo := bits.Mul64(amount, shares)
	q, _ := bits.Div64(hi, lo, allocation.TotalShares)
	return q
}
