package funding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fundsplit/libfundsplit-go/allocation"
	"github.com/fundsplit/libfundsplit-go/rates"
)

// Deployer provisions a ledger for a funded round and returns its address.
// Implemented by deploy.Orchestrator.
type Deployer interface {
	Deploy(ctx context.Context, roundID, owner string, table allocation.ShareTable, repaymentCap uint64, capDecimal string) (string, error)
}

// Result reports a deployment outcome back to the owning project.
type Result struct {
	LedgerAddress string
	Err           error
}

// ResultSink receives deployment results so the external project store can
// persist the round's status and ledger address.
type ResultSink interface {
	RecordDeploymentResult(roundID string, result Result)
}

// StateMachine wires rounds to the deployment orchestrator. The Funding ->
// Live transition happens exactly once per round; a failed deployment leaves
// the round in Funding, contributions intact, for manual retry.
type StateMachine struct {
	deployer Deployer
	sink     ResultSink
	log      zerolog.Logger
}

// NewStateMachine creates the integration over a deployer. sink may be nil.
func NewStateMachine(deployer Deployer, sink ResultSink, log zerolog.Logger) (*StateMachine, error) {
	if deployer == nil {
		return nil, ErrNilDeployer
	}
	return &StateMachine{deployer: deployer, sink: sink, log: log}, nil
}

// OnGoalReached closes a funded round: allocates shares from its aggregated
// contributions, converts the fiat target into a repayment cap at the given
// rate, and deploys the ledger. On success the round transitions to Live and
// the ledger address is returned; on failure the round stays in Funding.
func (m *StateMachine) OnGoalReached(ctx context.Context, round *Round, owner string, multiplierBps uint64, rate rates.Rate) (string, error) {
	round.mu.Lock()
	defer round.mu.Unlock()

	if round.state != StateFunding {
		return "", fmt.Errorf("%w: round %s", ErrRoundClosed, round.id)
	}
	if round.total < round.target {
		return "", fmt.Errorf("%w: round %s at %d of %d", ErrGoalNotReached, round.id, round.total, round.target)
	}

	table, err := allocation.Allocate(round.contributionsLocked())
	if err != nil {
		return "", err
	}

	repaymentCap, err := rates.ComputeCap(round.target, multiplierBps, rate)
	if err != nil {
		return "", err
	}
	capDecimal := rates.FormatAmount(repaymentCap, rate.SettlementDecimals)

	m.log.Info().
		Str("round", round.id).
		Int("claimants", len(table)).
		Uint64("cap", repaymentCap).
		Msg("funding goal reached, deploying ledger")

	address, err := m.deployer.Deploy(ctx, round.id, owner, table, repaymentCap, capDecimal)
	if err != nil {
		// Contributions stay recorded and the round stays in Funding.
		m.notify(round.id, Result{Err: err})
		return "", err
	}

	round.state = StateLive
	round.ledger = address
	m.notify(round.id, Result{LedgerAddress: address})

	m.log.Info().Str("round", round.id).Str("address", address).Msg("round live")
	return address, nil
}

// notify forwards a result to the sink, if any.
func (m *StateMachine) notify(roundID string, result Result) {
	if m.sink != nil {
		m.sink.RecordDeploymentResult(roundID, result)
	}
}
