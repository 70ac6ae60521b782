package deploy

import "errors"

var (
	// ErrRecordNotFound indicates no deployment record exists for the round.
	ErrRecordNotFound = errors.New("deploy: record not found")

	// ErrNilRecord indicates a nil deployment record was passed to the store.
	ErrNilRecord = errors.New("deploy: nil record")

	// ErrAlreadyDeployed indicates the round already has a deployed ledger.
	ErrAlreadyDeployed = errors.New("deploy: round already deployed")

	// ErrDeployInFlight indicates another deployment attempt for the round is
	// already in progress.
	ErrDeployInFlight = errors.New("deploy: deployment in flight")

	// ErrProvisionFailed indicates the provisioning process failed cleanly
	// (nonzero exit). The round's record moves to Failed and may be retried.
	ErrProvisionFailed = errors.New("deploy: provisioning failed")

	// ErrAmbiguousDeployment indicates the provisioning process may have
	// succeeded but its result could not be observed (timeout, or clean exit
	// with unusable output). Never retried automatically: a duplicate ledger
	// could result. Requires manual reconciliation.
	ErrAmbiguousDeployment = errors.New("deploy: ambiguous deployment outcome")

	// ErrMalformedOutput indicates the provisioning process violated the
	// single-line stdout contract.
	ErrMalformedOutput = errors.New("deploy: malformed provisioner output")

	// ErrNotRetryable indicates Retry was called on a round whose record is
	// not in the Failed state.
	ErrNotRetryable = errors.New("deploy: record not retryable")

	// ErrNotAmbiguous indicates Reconcile was called on a round whose record
	// is not in the Ambiguous state.
	ErrNotAmbiguous = errors.New("deploy: record not ambiguous")

	// ErrNoCommand indicates the provisioner was configured without a command.
	ErrNoCommand = errors.New("deploy: no provisioning command configured")
)
