package envelope

import (
	"context"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// Get returns an envelope with its claims, settling an overdue expiry first
func (uc *EnvelopeUseCase) Get(ctx context.Context, envelopeID uint64) (*usecase.EnvelopeView, error) {
	if envelopeID == 0 {
		return nil, errs.ErrInvalidEnvelopeID
	}

	if _, err := uc.Expire(ctx, envelopeID); err != nil {
		return nil, err
	}

	env, err := uc.uow.GetEnvelopeRepository(ctx).GetByID(ctx, envelopeID)
	if err != nil {
		return nil, err
	}

	claims, err := uc.uow.GetClaimRepository(ctx).ListByEnvelope(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	env.Claims = claims

	return &usecase.EnvelopeView{
		Envelope: env,
		Timeline: cipher.CipherToTimeline(env.Cipher),
	}, nil
}

// List returns the newest envelopes with their claims. Overdue envelopes on
// the page are expired on the way out.
func (uc *EnvelopeUseCase) List(ctx context.Context) ([]*entity.Envelope, error) {
	envelopes, err := uc.uow.GetEnvelopeRepository(ctx).ListRecent(ctx, uc.config.ListLimit)
	if err != nil {
		return nil, err
	}
	if len(envelopes) == 0 {
		return envelopes, nil
	}

	now := uc.timeProvider.Now()
	ids := make([]uint64, 0, len(envelopes))
	for _, env := range envelopes {
		ids = append(ids, env.ID)
		if !env.IsExpirable(now) {
			continue
		}
		if _, err := uc.Expire(ctx, env.ID); err != nil {
			uc.logger.Warn("Lazy expiry during listing failed", coreport.ErrorFields(err, map[string]any{
				"envelope_id": env.ID,
			}))
			continue
		}
		env.Status = entity.EnvelopeExpired
	}

	claims, err := uc.uow.GetClaimRepository(ctx).ListByEnvelopes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, env := range envelopes {
		env.Claims = claims[env.ID]
		if env.Claims == nil {
			env.Claims = []*entity.Claim{}
		}
	}
	return envelopes, nil
}
