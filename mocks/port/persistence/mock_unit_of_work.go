package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	port "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
)

// MockUnitOfWork is a testify mock for persistence.UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

// NewMockUnitOfWork creates a MockUnitOfWork that asserts its expectations on cleanup
func NewMockUnitOfWork(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	var txCtx context.Context
	if v := args.Get(0); v != nil {
		txCtx = v.(context.Context)
	}
	return txCtx, args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) InTransaction(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockUnitOfWork) GetUserRepository(ctx context.Context) port.UserRepository {
	args := m.Called(ctx)
	return args.Get(0).(port.UserRepository)
}

func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) port.TransactionRepository {
	args := m.Called(ctx)
	return args.Get(0).(port.TransactionRepository)
}

func (m *MockUnitOfWork) GetEnvelopeRepository(ctx context.Context) port.EnvelopeRepository {
	args := m.Called(ctx)
	return args.Get(0).(port.EnvelopeRepository)
}

func (m *MockUnitOfWork) GetClaimRepository(ctx context.Context) port.ClaimRepository {
	args := m.Called(ctx)
	return args.Get(0).(port.ClaimRepository)
}
