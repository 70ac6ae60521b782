package simulator

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsplit/libfundsplit-go/allocation"
	"github.com/fundsplit/libfundsplit-go/ledger"
)

// sinkTransferrer accepts every transfer and tallies it.
type sinkTransferrer struct {
	mu   sync.Mutex
	sent map[string]uint64
}

func (s *sinkTransferrer) Transfer(_ context.Context, toAddress string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[string]uint64)
	}
	s.sent[toAddress] += amount
	return nil
}

func newTestLedger(t *testing.T, cap uint64) (*ledger.Ledger, *sinkTransferrer) {
	t.Helper()
	cred, err := ledger.NewAdminCredential("simulator-admin-secret")
	require.NoError(t, err)
	tr := &sinkTransferrer{}
	l, err := ledger.New(allocation.ShareTable{
		{ClaimantID: "a", Shares: 6000},
		{ClaimantID: "b", Shares: 4000},
	}, cap, "admin", cred, tr)
	require.NoError(t, err)
	return l, tr
}

func TestRun_DistributesProportionally(t *testing.T) {
	l, tr := newTestLedger(t, 10_000_000)
	s := New(l, zerolog.Nop())

	report, err := s.Run(context.Background(), []uint64{1_000_000, 500_000})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Deposits)
	assert.Equal(t, uint64(1_500_000), report.Deposited)
	assert.Equal(t, uint64(900_000), report.Released["a"])
	assert.Equal(t, uint64(600_000), report.Released["b"])
	assert.Equal(t, uint64(1_500_000), report.TotalReleased)
	assert.False(t, report.CapReached)

	// The transfer collaborator saw exactly the reported amounts.
	assert.Equal(t, report.Released["a"], tr.sent["a"])
	assert.Equal(t, report.Released["b"], tr.sent["b"])
}

func TestRun_StopsReleasingAtCap(t *testing.T) {
	l, _ := newTestLedger(t, 1_000_000)
	s := New(l, zerolog.Nop())

	// 3,000,000 deposited against a 1,000,000 cap.
	report, err := s.Run(context.Background(), []uint64{1_000_000, 1_000_000, 1_000_000})
	require.NoError(t, err)

	assert.Equal(t, uint64(3_000_000), report.Deposited)
	assert.Equal(t, uint64(1_000_000), report.TotalReleased)
	assert.True(t, report.CapReached)
	assert.Equal(t, uint64(600_000), report.Released["a"])
	assert.Equal(t, uint64(400_000), report.Released["b"])

	snap := l.Snapshot()
	assert.Equal(t, uint64(3_000_000), snap.TotalReceived)
	assert.Equal(t, uint64(1_000_000), snap.TotalReleased)
}

func TestRun_RejectsZeroDeposit(t *testing.T) {
	l, _ := newTestLedger(t, 1_000_000)
	s := New(l, zerolog.Nop())

	_, err := s.Run(context.Background(), []uint64{100, 0})
	assert.ErrorIs(t, err, ledger.ErrNonPositiveDeposit)
}

func TestRun_EmptySchedule(t *testing.T) {
	l, _ := newTestLedger(t, 1_000_000)
	s := New(l, zerolog.Nop())

	report, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Deposits)
	assert.Zero(t, report.TotalReleased)
}
