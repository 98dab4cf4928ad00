package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// MockUserRepository is a testify mock for persistence.UserRepository
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository that asserts its expectations on cleanup
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	args := m.Called(ctx, id)
	var user *entity.User
	if v := args.Get(0); v != nil {
		user = v.(*entity.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*entity.User, error) {
	args := m.Called(ctx, ids)
	var users map[uint64]*entity.User
	if v := args.Get(0); v != nil {
		users = v.(map[uint64]*entity.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) GetByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	args := m.Called(ctx, nickname)
	var user *entity.User
	if v := args.Get(0); v != nil {
		user = v.(*entity.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ApplyBalanceChange(ctx context.Context, userID uint64, delta int64) (*entity.User, error) {
	args := m.Called(ctx, userID, delta)
	var user *entity.User
	if v := args.Get(0); v != nil {
		user = v.(*entity.User)
	}
	return user, args.Error(1)
}
