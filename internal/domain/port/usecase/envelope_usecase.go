package usecase

import (
	"context"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// CreateEnvelopeRequest funds a new envelope
type CreateEnvelopeRequest struct {
	SenderID      uint64
	AmountInCents int64
	Count         int
	BookName      string // optional; a random book is used when empty
}

// EnvelopeView is an envelope with the playable form of its cipher
type EnvelopeView struct {
	Envelope *entity.Envelope
	Timeline cipher.Timeline
}

// CreatedEnvelope is returned to the sender only
type CreatedEnvelope struct {
	EnvelopeView
	Phonetic []string
	Balance  int64
}

// ClaimRequest is a password attempt on an envelope
type ClaimRequest struct {
	EnvelopeID uint64
	UserID     uint64
	Answer     string
}

// ClaimResult is a successful claim and the claimer's new balance
type ClaimResult struct {
	Claim    *entity.Claim
	Envelope *entity.Envelope
	Balance  int64
}

// ExpireResult describes what an expiry attempt did
type ExpireResult struct {
	Expired  bool  // true only for the call that performed the transition
	Refunded int64 // cents returned to the sender by this call
}

// EnvelopeUseCase defines the envelope game operations
type EnvelopeUseCase interface {
	// Create debits the sender, picks an excerpt and password, and stores the envelope
	Create(ctx context.Context, req CreateEnvelopeRequest) (*CreatedEnvelope, error)

	// Get returns an envelope with its claims, expiring it first when due
	Get(ctx context.Context, envelopeID uint64) (*EnvelopeView, error)

	// Claim checks a password attempt and pays out one share
	Claim(ctx context.Context, req ClaimRequest) (*ClaimResult, error)

	// List returns the newest envelopes with their claims
	List(ctx context.Context) ([]*entity.Envelope, error)

	// Expire moves an overdue envelope to expired and refunds what is left.
	// Repeated calls are harmless.
	Expire(ctx context.Context, envelopeID uint64) (*ExpireResult, error)

	// Sweep expires every overdue envelope and reports how many it expired
	Sweep(ctx context.Context) (int, error)
}
