package persistence

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// MockEnvelopeRepository is a testify mock for persistence.EnvelopeRepository
type MockEnvelopeRepository struct {
	mock.Mock
}

// NewMockEnvelopeRepository creates a MockEnvelopeRepository that asserts its expectations on cleanup
func NewMockEnvelopeRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEnvelopeRepository {
	m := &MockEnvelopeRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEnvelopeRepository) Create(ctx context.Context, envelope *entity.Envelope) error {
	args := m.Called(ctx, envelope)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) GetByID(ctx context.Context, id uint64) (*entity.Envelope, error) {
	args := m.Called(ctx, id)
	var env *entity.Envelope
	if v := args.Get(0); v != nil {
		env = v.(*entity.Envelope)
	}
	return env, args.Error(1)
}

func (m *MockEnvelopeRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Envelope, error) {
	args := m.Called(ctx, id)
	var env *entity.Envelope
	if v := args.Get(0); v != nil {
		env = v.(*entity.Envelope)
	}
	return env, args.Error(1)
}

func (m *MockEnvelopeRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Envelope, error) {
	args := m.Called(ctx, limit)
	var envs []*entity.Envelope
	if v := args.Get(0); v != nil {
		envs = v.([]*entity.Envelope)
	}
	return envs, args.Error(1)
}

func (m *MockEnvelopeRepository) ListExpirable(ctx context.Context, now time.Time, afterID uint64, limit int) ([]uint64, error) {
	args := m.Called(ctx, now, afterID, limit)
	var ids []uint64
	if v := args.Get(0); v != nil {
		ids = v.([]uint64)
	}
	return ids, args.Error(1)
}

func (m *MockEnvelopeRepository) RecordClaim(ctx context.Context, id uint64, expectedClaimed int, status entity.EnvelopeStatus) error {
	args := m.Called(ctx, id, expectedClaimed, status)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) MarkExpired(ctx context.Context, id uint64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}
