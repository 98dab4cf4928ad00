package persistence

import (
	"context"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// ClaimRepository stores redeemed shares
type ClaimRepository interface {
	// Create records a claim and fills in its ID
	//
	// Possible errors:
	// - ErrAlreadyClaimed: If the user already holds a share of this envelope
	Create(ctx context.Context, claim *entity.Claim) error

	// Exists reports whether the user already claimed the envelope
	Exists(ctx context.Context, envelopeID, claimerID uint64) (bool, error)

	// ListByEnvelope returns claims newest first with claimer nicknames
	ListByEnvelope(ctx context.Context, envelopeID uint64) ([]*entity.Claim, error)

	// ListByEnvelopes batches ListByEnvelope for several envelopes
	ListByEnvelopes(ctx context.Context, envelopeIDs []uint64) (map[uint64][]*entity.Claim, error)

	// SumByEnvelope totals the amounts already paid out of an envelope
	SumByEnvelope(ctx context.Context, envelopeID uint64) (int64, error)
}
