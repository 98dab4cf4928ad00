// Package envelope implements the envelope game: funding, claiming and expiry.
package envelope

import (
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/allocator"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/excerpt"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// Defaults for Config
const (
	DefaultListLimit      = 20
	DefaultSweepBatchSize = 100
)

// Config tunes the envelope use case
type Config struct {
	Lifetime       time.Duration // time until an unclaimed envelope is refunded
	ListLimit      int           // envelopes returned by List
	PasswordLength int           // characters drawn from the excerpt
	SweepBatchSize int           // expirable envelopes fetched per sweep round
}

func (c Config) withDefaults() Config {
	if c.Lifetime <= 0 {
		c.Lifetime = entity.EnvelopeLifetime
	}
	if c.ListLimit <= 0 {
		c.ListLimit = DefaultListLimit
	}
	if c.PasswordLength <= 0 {
		c.PasswordLength = excerpt.DefaultPasswordLength
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = DefaultSweepBatchSize
	}
	return c
}

// Dependencies groups the collaborators of the envelope use case
type Dependencies struct {
	UnitOfWork   persistence.UnitOfWork
	Ledger       usecase.WalletLedger
	Excerpts     excerpt.Provider
	Extractor    *excerpt.Extractor
	Codec        *cipher.Codec
	Allocator    *allocator.Allocator
	Serializer   *Serializer
	Retrier      persistence.Retrier // optional
	TimeProvider coreport.TimeProvider
	Logger       coreport.Logger
}

// EnvelopeUseCase implements usecase.EnvelopeUseCase
type EnvelopeUseCase struct {
	uow          persistence.UnitOfWork
	ledger       usecase.WalletLedger
	excerpts     excerpt.Provider
	extractor    *excerpt.Extractor
	codec        *cipher.Codec
	allocator    *allocator.Allocator
	serializer   *Serializer
	retrier      persistence.Retrier
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.EnvelopeUseCase = (*EnvelopeUseCase)(nil)

// NewEnvelopeUseCase creates a new envelope use case instance
func NewEnvelopeUseCase(deps Dependencies, config Config) *EnvelopeUseCase {
	retrier := deps.Retrier
	if retrier == nil {
		retrier = persistence.NoRetry{}
	}
	serializer := deps.Serializer
	if serializer == nil {
		serializer = NewSerializer(DefaultStripes, deps.Logger)
	}
	alloc := deps.Allocator
	if alloc == nil {
		alloc = allocator.New(nil)
	}

	return &EnvelopeUseCase{
		uow:          deps.UnitOfWork,
		ledger:       deps.Ledger,
		excerpts:     deps.Excerpts,
		extractor:    deps.Extractor,
		codec:        deps.Codec,
		allocator:    alloc,
		serializer:   serializer,
		retrier:      retrier,
		config:       config.withDefaults(),
		timeProvider: deps.TimeProvider,
		logger:       deps.Logger,
	}
}

// Shutdown drains queued claims
func (uc *EnvelopeUseCase) Shutdown() {
	uc.serializer.Shutdown()
}
