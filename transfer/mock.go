package transfer

import "context"

// MockTransferrer is a test double for ledger.Transferrer.
// TransferFn must be set before Transfer is called.
type MockTransferrer struct {
	TransferFn func(ctx context.Context, toAddress string, amount uint64) error
}

func (m *MockTransferrer) Transfer(ctx context.Context, toAddress string, amount uint64) error {
	return m.TransferFn(ctx, toAddress, amount)
}
