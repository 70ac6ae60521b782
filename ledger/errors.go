package ledger

import "errors"

var (
	// ErrNilTransferrer indicates the ledger was created without a transfer collaborator.
	ErrNilTransferrer = errors.New("ledger: nil transferrer")

	// ErrZeroCap indicates a repayment cap of zero.
	ErrZeroCap = errors.New("ledger: repayment cap must be positive")

	// ErrLedgerPaused indicates the operation was rejected because the ledger is paused.
	ErrLedgerPaused = errors.New("ledger: paused")

	// ErrNonPositiveDeposit indicates a deposit of zero.
	ErrNonPositiveDeposit = errors.New("ledger: deposit must be positive")

	// ErrAmountOverflow indicates total receipts would overflow uint64.
	ErrAmountOverflow = errors.New("ledger: amount overflows")

	// ErrUnknownClaimant indicates the claimant is not in the share table.
	ErrUnknownClaimant = errors.New("ledger: unknown claimant")

	// ErrNothingToRelease indicates the claimant has no pending payment.
	ErrNothingToRelease = errors.New("ledger: nothing to release")

	// ErrCapExceeded indicates a release would push total released past the
	// repayment cap. Pending amounts are clipped to the cap, so this is
	// unreachable unless the bookkeeping itself is defective.
	ErrCapExceeded = errors.New("ledger: release would exceed repayment cap")

	// ErrUnauthorized indicates the caller is not the ledger administrator.
	ErrUnauthorized = errors.New("ledger: unauthorized")

	// ErrTransferFailed indicates the external value transfer did not complete;
	// the release bookkeeping was rolled back.
	ErrTransferFailed = errors.New("ledger: transfer failed")

	// ErrEmptySecret indicates an empty administrator secret.
	ErrEmptySecret = errors.New("ledger: administrator secret must not be empty")
)
