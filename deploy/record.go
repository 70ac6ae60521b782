package deploy

import (
	"time"

	"github.com/fundsplit/libfundsplit-go/allocation"
)

// Status is the lifecycle state of a deployment record.
type Status uint8

const (
	// StatusPending marks a persisted intent: provisioning is underway. A
	// durable Pending record whose attempt is no longer in flight lost its
	// outcome and must be reconciled like an Ambiguous one.
	StatusPending Status = iota
	// StatusDeployed marks a successfully provisioned ledger with a known address.
	StatusDeployed
	// StatusFailed marks a clean failure; the round may be retried.
	StatusFailed
	// StatusAmbiguous marks an attempt whose outcome could not be observed;
	// only manual reconciliation may resolve it.
	StatusAmbiguous
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDeployed:
		return "deployed"
	case StatusFailed:
		return "failed"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// DeploymentRecord is the durable state of one round's ledger deployment.
// It is created when the funding goal is crossed and mutated only by the
// orchestrator.
type DeploymentRecord struct {
	RoundID       string
	Owner         string
	ShareTable    allocation.ShareTable
	RepaymentCap  uint64
	CapDecimal    string // cap rendered in whole settlement units, as handed to the provisioner
	Status        Status
	LedgerAddress string // set only when Status is StatusDeployed
	Error         string // diagnostic for Failed/Ambiguous records
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecordStore persists deployment records keyed by round id.
type RecordStore interface {
	// Get returns the record for the round, or ErrRecordNotFound.
	Get(roundID string) (*DeploymentRecord, error)

	// Put inserts or replaces the record for its round.
	Put(record *DeploymentRecord) error

	// List returns all records.
	List() ([]*DeploymentRecord, error)
}
