package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	port "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// MockEnvelopeUseCase is a testify mock for usecase.EnvelopeUseCase
type MockEnvelopeUseCase struct {
	mock.Mock
}

// NewMockEnvelopeUseCase creates a MockEnvelopeUseCase that asserts its expectations on cleanup
func NewMockEnvelopeUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEnvelopeUseCase {
	m := &MockEnvelopeUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEnvelopeUseCase) Create(ctx context.Context, req port.CreateEnvelopeRequest) (*port.CreatedEnvelope, error) {
	args := m.Called(ctx, req)
	var res *port.CreatedEnvelope
	if v := args.Get(0); v != nil {
		res = v.(*port.CreatedEnvelope)
	}
	return res, args.Error(1)
}

func (m *MockEnvelopeUseCase) Get(ctx context.Context, envelopeID uint64) (*port.EnvelopeView, error) {
	args := m.Called(ctx, envelopeID)
	var res *port.EnvelopeView
	if v := args.Get(0); v != nil {
		res = v.(*port.EnvelopeView)
	}
	return res, args.Error(1)
}

func (m *MockEnvelopeUseCase) Claim(ctx context.Context, req port.ClaimRequest) (*port.ClaimResult, error) {
	args := m.Called(ctx, req)
	var res *port.ClaimResult
	if v := args.Get(0); v != nil {
		res = v.(*port.ClaimResult)
	}
	return res, args.Error(1)
}

func (m *MockEnvelopeUseCase) List(ctx context.Context) ([]*entity.Envelope, error) {
	args := m.Called(ctx)
	var res []*entity.Envelope
	if v := args.Get(0); v != nil {
		res = v.([]*entity.Envelope)
	}
	return res, args.Error(1)
}

func (m *MockEnvelopeUseCase) Expire(ctx context.Context, envelopeID uint64) (*port.ExpireResult, error) {
	args := m.Called(ctx, envelopeID)
	var res *port.ExpireResult
	if v := args.Get(0); v != nil {
		res = v.(*port.ExpireResult)
	}
	return res, args.Error(1)
}

func (m *MockEnvelopeUseCase) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
