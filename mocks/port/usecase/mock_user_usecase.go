package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	port "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// MockUserUseCase is a testify mock for usecase.UserUseCase
type MockUserUseCase struct {
	mock.Mock
}

// NewMockUserUseCase creates a MockUserUseCase that asserts its expectations on cleanup
func NewMockUserUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserUseCase {
	m := &MockUserUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserUseCase) Login(ctx context.Context, nickname, password string) (*port.LoginResult, error) {
	args := m.Called(ctx, nickname, password)
	var res *port.LoginResult
	if v := args.Get(0); v != nil {
		res = v.(*port.LoginResult)
	}
	return res, args.Error(1)
}

func (m *MockUserUseCase) GetWallet(ctx context.Context, userID uint64) (*port.Wallet, error) {
	args := m.Called(ctx, userID)
	var res *port.Wallet
	if v := args.Get(0); v != nil {
		res = v.(*port.Wallet)
	}
	return res, args.Error(1)
}

func (m *MockUserUseCase) Recharge(ctx context.Context, userID uint64, amountInCents int64) (*port.LedgerResult, error) {
	args := m.Called(ctx, userID, amountInCents)
	var res *port.LedgerResult
	if v := args.Get(0); v != nil {
		res = v.(*port.LedgerResult)
	}
	return res, args.Error(1)
}

func (m *MockUserUseCase) ListTransactions(ctx context.Context, userID uint64) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID)
	var res []*entity.Transaction
	if v := args.Get(0); v != nil {
		res = v.([]*entity.Transaction)
	}
	return res, args.Error(1)
}
