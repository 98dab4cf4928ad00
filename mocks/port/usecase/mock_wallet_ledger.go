package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	port "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// MockWalletLedger is a testify mock for usecase.WalletLedger
type MockWalletLedger struct {
	mock.Mock
}

// NewMockWalletLedger creates a MockWalletLedger that asserts its expectations on cleanup
func NewMockWalletLedger(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWalletLedger {
	m := &MockWalletLedger{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockWalletLedger) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletLedger) Recharge(ctx context.Context, entry port.LedgerEntry) (*port.LedgerResult, error) {
	return m.result(m.Called(ctx, entry))
}

func (m *MockWalletLedger) Deduct(ctx context.Context, entry port.LedgerEntry) (*port.LedgerResult, error) {
	return m.result(m.Called(ctx, entry))
}

func (m *MockWalletLedger) Credit(ctx context.Context, entry port.LedgerEntry) (*port.LedgerResult, error) {
	return m.result(m.Called(ctx, entry))
}

func (m *MockWalletLedger) Transfer(ctx context.Context, req port.TransferRequest) (*port.TransferResult, error) {
	args := m.Called(ctx, req)
	var res *port.TransferResult
	if v := args.Get(0); v != nil {
		res = v.(*port.TransferResult)
	}
	return res, args.Error(1)
}

func (m *MockWalletLedger) result(args mock.Arguments) (*port.LedgerResult, error) {
	var res *port.LedgerResult
	if v := args.Get(0); v != nil {
		res = v.(*port.LedgerResult)
	}
	return res, args.Error(1)
}
