package funding

import "errors"

var (
	// ErrZeroTarget indicates a funding target of zero.
	ErrZeroTarget = errors.New("funding: target must be positive")

	// ErrNonPositiveContribution indicates a contribution of zero.
	ErrNonPositiveContribution = errors.New("funding: contribution must be positive")

	// ErrRoundClosed indicates the round is already live and no longer
	// accepts contributions.
	ErrRoundClosed = errors.New("funding: round closed")

	// ErrGoalNotReached indicates the round has not reached its funding target.
	ErrGoalNotReached = errors.New("funding: goal not reached")

	// ErrContributionOverflow indicates total contributions would overflow uint64.
	ErrContributionOverflow = errors.New("funding: contribution total overflows")

	// ErrNilDeployer indicates the state machine was built without a deployer.
	ErrNilDeployer = errors.New("funding: nil deployer")
)
