// Package simulator exercises a deployed ledger by injecting revenue
// deposits and pulling releases for every claimant, the way real collectors
// and claimants would over a round's lifetime.
package simulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fundsplit/libfundsplit-go/ledger"
)

// Report summarizes one simulation run.
type Report struct {
	Deposits      int
	Deposited     uint64
	Released      map[string]uint64
	TotalReleased uint64
	CapReached    bool
}

// Simulator drives deposit/release cycles against a ledger.
type Simulator struct {
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// New creates a simulator over the given ledger.
func New(l *ledger.Ledger, log zerolog.Logger) *Simulator {
	return &Simulator{ledger: l, log: log}
}

// Run injects each deposit in order and, after each one, releases every
// claimant's pending payment. Deposits that arrive after the repayment cap is
// exhausted are still recorded (totalReceived keeps growing) but release
// nothing. The run stops early only on an unexpected error.
func (s *Simulator) Run(ctx context.Context, deposits []uint64) (*Report, error) {
	report := &Report{Released: make(map[string]uint64)}
	claimants := s.ledger.ShareTable().ClaimantIDs()

	for i, amount := range deposits {
		if err := s.ledger.Deposit(amount); err != nil {
			return report, fmt.Errorf("simulator: deposit %d: %w", i, err)
		}
		report.Deposits++
		report.Deposited += amount

		for _, claimant := range claimants {
			released, err := s.ledger.Release(ctx, claimant)
			if err != nil {
				if errors.Is(err, ledger.ErrNothingToRelease) {
					continue
				}
				return report, fmt.Errorf("simulator: release %s: %w", claimant, err)
			}
			report.Released[claimant] += released
			report.TotalReleased += released

			s.log.Debug().
				Str("claimant", claimant).
				Uint64("amount", released).
				Msg("released")
		}
	}

	report.CapReached = report.TotalReleased == s.ledger.RepaymentCap()

	s.log.Info().
		Int("deposits", report.Deposits).
		Uint64("deposited", report.Deposited).
		Uint64("released", report.TotalReleased).
		Bool("cap_reached", report.CapReached).
		Msg("simulation complete")
	return report, nil
}
