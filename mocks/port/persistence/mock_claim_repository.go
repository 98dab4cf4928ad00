package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// MockClaimRepository is a testify mock for persistence.ClaimRepository
type MockClaimRepository struct {
	mock.Mock
}

// NewMockClaimRepository creates a MockClaimRepository that asserts its expectations on cleanup
func NewMockClaimRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClaimRepository {
	m := &MockClaimRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) Exists(ctx context.Context, envelopeID, claimerID uint64) (bool, error) {
	args := m.Called(ctx, envelopeID, claimerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClaimRepository) ListByEnvelope(ctx context.Context, envelopeID uint64) ([]*entity.Claim, error) {
	args := m.Called(ctx, envelopeID)
	var claims []*entity.Claim
	if v := args.Get(0); v != nil {
		claims = v.([]*entity.Claim)
	}
	return claims, args.Error(1)
}

func (m *MockClaimRepository) ListByEnvelopes(ctx context.Context, envelopeIDs []uint64) (map[uint64][]*entity.Claim, error) {
	args := m.Called(ctx, envelopeIDs)
	var claims map[uint64][]*entity.Claim
	if v := args.Get(0); v != nil {
		claims = v.(map[uint64][]*entity.Claim)
	}
	return claims, args.Error(1)
}

func (m *MockClaimRepository) SumByEnvelope(ctx context.Context, envelopeID uint64) (int64, error) {
	args := m.Called(ctx, envelopeID)
	return args.Get(0).(int64), args.Error(1)
}
