// Package deploy provisions one revenue-splitting ledger per funded round,
// exactly once. It persists intent before invoking the external provisioning
// process and its outcome after, distinguishing clean retryable failures from
// ambiguous ones that require manual reconciliation.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fundsplit/libfundsplit-go/allocation"
	"github.com/fundsplit/libfundsplit-go/identity"
)

// DefaultProvisionTimeout bounds the external provisioning process.
const DefaultProvisionTimeout = 60 * time.Second

// Orchestrator drives ledger deployments. At most one attempt per round is
// in flight at a time; a round that is already Deployed rejects further
// attempts, and an Ambiguous round is frozen until reconciled.
type Orchestrator struct {
	store       RecordStore
	provisioner Provisioner
	timeout     time.Duration
	log         zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewOrchestrator creates an orchestrator over the given record store and
// provisioner. A non-positive timeout falls back to DefaultProvisionTimeout.
func NewOrchestrator(store RecordStore, provisioner Provisioner, timeout time.Duration, log zerolog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultProvisionTimeout
	}
	return &Orchestrator{
		store:       store,
		provisioner: provisioner,
		timeout:     timeout,
		log:         log,
		inflight:    make(map[string]struct{}),
	}
}

// Deploy provisions a ledger for the round and returns its address.
//
// Preconditions: no Deployed record exists for the round (ErrAlreadyDeployed
// otherwise, with no side effects), no attempt is in flight
// (ErrDeployInFlight), and the round is neither Ambiguous nor Pending. A
// durable Pending record means an earlier attempt was cut short before its
// outcome was recorded, so re-running the provisioner could create a second
// ledger; such rounds are frozen until reconciled. Only a Failed record is
// re-attempted with the new parameters.
func (o *Orchestrator) Deploy(ctx context.Context, roundID, owner string, table allocation.ShareTable, repaymentCap uint64, capDecimal string) (string, error) {
	if err := o.acquire(roundID); err != nil {
		return "", err
	}
	defer o.release(roundID)

	existing, err := o.store.Get(roundID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return "", err
	}
	record := &DeploymentRecord{
		RoundID:      roundID,
		Owner:        owner,
		ShareTable:   table,
		RepaymentCap: repaymentCap,
		CapDecimal:   capDecimal,
		CreatedAt:    time.Now().UTC(),
	}
	if existing != nil {
		switch existing.Status {
		case StatusDeployed:
			return "", fmt.Errorf("%w: round %s at %s", ErrAlreadyDeployed, roundID, existing.LedgerAddress)
		case StatusAmbiguous:
			return "", fmt.Errorf("%w: round %s requires reconciliation", ErrAmbiguousDeployment, roundID)
		case StatusPending:
			return "", fmt.Errorf("%w: round %s has an unresolved attempt, requires reconciliation", ErrAmbiguousDeployment, roundID)
		}
		record.CreatedAt = existing.CreatedAt
	}

	return o.attempt(ctx, record)
}

// Retry re-runs a failed deployment with exactly the parameters persisted in
// its record. Only Failed records are retryable; in particular an Ambiguous
// or Pending record is never retried, since the earlier attempt may already
// have provisioned a ledger.
func (o *Orchestrator) Retry(ctx context.Context, roundID string) (string, error) {
	if err := o.acquire(roundID); err != nil {
		return "", err
	}
	defer o.release(roundID)

	record, err := o.store.Get(roundID)
	if err != nil {
		return "", err
	}
	if record.Status != StatusFailed {
		return "", fmt.Errorf("%w: round %s is %s", ErrNotRetryable, roundID, record.Status)
	}
	return o.attempt(ctx, record)
}

// Reconcile resolves an Ambiguous record with an operator-observed address.
// It also resolves a Pending record orphaned by a crash or a store failure,
// which is the same situation with the classification lost.
func (o *Orchestrator) Reconcile(roundID, address string) error {
	if err := o.acquire(roundID); err != nil {
		return err
	}
	defer o.release(roundID)

	record, err := o.store.Get(roundID)
	if err != nil {
		return err
	}
	if record.Status != StatusAmbiguous && record.Status != StatusPending {
		return fmt.Errorf("%w: round %s is %s", ErrNotAmbiguous, roundID, record.Status)
	}
	if err := identity.ValidateAddress(address); err != nil {
		return err
	}

	record.Status = StatusDeployed
	record.LedgerAddress = address
	record.Error = ""
	record.UpdatedAt = time.Now().UTC()
	if err := o.store.Put(record); err != nil {
		return err
	}

	o.log.Info().Str("round", roundID).Str("address", address).Msg("deployment reconciled")
	return nil
}

// Record returns the deployment record for a round.
func (o *Orchestrator) Record(roundID string) (*DeploymentRecord, error) {
	return o.store.Get(roundID)
}

// attempt validates the record's parameters, persists intent, runs the
// provisioner under the configured timeout, and persists the outcome. Caller
// holds the round's in-flight slot.
func (o *Orchestrator) attempt(ctx context.Context, record *DeploymentRecord) (string, error) {
	if err := identity.ValidateAddress(record.Owner); err != nil {
		return "", err
	}
	payees := record.ShareTable.ClaimantIDs()
	if err := identity.ValidateAddresses(payees); err != nil {
		return "", err
	}
	if err := record.ShareTable.Validate(); err != nil {
		return "", err
	}

	// Persist intent before any side effect.
	record.Status = StatusPending
	record.Error = ""
	record.UpdatedAt = time.Now().UTC()
	if err := o.store.Put(record); err != nil {
		return "", err
	}

	shares := make([]uint64, len(record.ShareTable))
	for i, e := range record.ShareTable {
		shares[i] = e.Shares
	}

	o.log.Info().
		Str("round", record.RoundID).
		Int("payees", len(payees)).
		Str("cap", record.CapDecimal).
		Msg("provisioning ledger")

	provCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	address, provErr := o.provisioner.Provision(provCtx, Params{
		Owner:  record.Owner,
		Payees: payees,
		Shares: shares,
		Cap:    record.CapDecimal,
	})
	if provErr == nil {
		// The parsed address must itself be well-formed. A clean exit with
		// a bad address means a ledger probably exists somewhere.
		if err := identity.ValidateAddress(address); err != nil {
			provErr = fmt.Errorf("%w: %w", ErrAmbiguousDeployment, err)
		}
	}

	if provErr != nil {
		if errors.Is(provErr, ErrAmbiguousDeployment) {
			record.Status = StatusAmbiguous
		} else {
			record.Status = StatusFailed
		}
		record.Error = provErr.Error()
		record.UpdatedAt = time.Now().UTC()
		if err := o.store.Put(record); err != nil {
			return "", fmt.Errorf("deploy: persist %s outcome: %w (original: %v)", record.Status, err, provErr)
		}
		o.log.Error().Err(provErr).Str("round", record.RoundID).Str("status", record.Status.String()).Msg("provisioning did not complete")
		return "", provErr
	}

	record.Status = StatusDeployed
	record.LedgerAddress = address
	record.UpdatedAt = time.Now().UTC()
	if err := o.store.Put(record); err != nil {
		// The ledger exists but the record does not say so; surface as
		// ambiguous rather than pretending the deployment failed. Try to
		// persist the ambiguity; if the store is still down the record stays
		// Pending, which blocks further attempts all the same.
		record.Status = StatusAmbiguous
		record.LedgerAddress = ""
		record.Error = fmt.Sprintf("ledger at %s but outcome not persisted: %v", address, err)
		_ = o.store.Put(record)
		return "", fmt.Errorf("%w: ledger at %s but record not persisted: %w", ErrAmbiguousDeployment, address, err)
	}

	o.log.Info().Str("round", record.RoundID).Str("address", address).Msg("ledger deployed")
	return address, nil
}

// acquire reserves the round's in-flight slot.
func (o *Orchestrator) acquire(roundID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[roundID]; busy {
		return fmt.Errorf("%w: round %s", ErrDeployInFlight, roundID)
	}
	o.inflight[roundID] = struct{}{}
	return nil
}

// release frees the round's in-flight slot.
func (o *Orchestrator) release(roundID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, roundID)
}
