package envelope

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// ClaimReference is the ledger reference of a claimer's payout
func ClaimReference(envelopeID, userID uint64) string {
	return fmt.Sprintf("claim:envelope:%d:user:%d", envelopeID, userID)
}

// Claim checks a password attempt and pays out one share. Attempts on the
// same envelope are serialized; a lost race is retried against fresh state.
func (uc *EnvelopeUseCase) Claim(ctx context.Context, req usecase.ClaimRequest) (*usecase.ClaimResult, error) {
	if req.EnvelopeID == 0 {
		return nil, errs.ErrInvalidEnvelopeID
	}
	if req.UserID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if strings.TrimSpace(req.Answer) == "" {
		return nil, errs.ErrMissingAnswer
	}

	var result *usecase.ClaimResult
	err := uc.serializer.Do(ctx, req.EnvelopeID, func(ctx context.Context) error {
		return uc.retrier.Do(ctx, func(ctx context.Context) error {
			r, err := uc.claimOnce(ctx, req)
			result = r
			return err
		})
	})

	if err != nil {
		if errors.Is(err, errs.ErrEnvelopeExpired) {
			// the rejected attempt is the first to notice; settle the refund now
			if _, expErr := uc.Expire(ctx, req.EnvelopeID); expErr != nil {
				uc.logger.Error("Expiry after rejected claim failed", coreport.ErrorFields(expErr, map[string]any{
					"envelope_id": req.EnvelopeID,
				}))
			}
		}

		fields := coreport.ErrorFields(err, map[string]any{
			"envelope_id": req.EnvelopeID,
			"user_id":     req.UserID,
		})
		if errs.IsClaimRejection(err) {
			uc.logger.Info("Claim rejected", fields)
		} else {
			uc.logger.Error("Claim failed", fields)
		}
		return nil, err
	}

	uc.logger.Info("Envelope share claimed", map[string]any{
		"envelope_id":   req.EnvelopeID,
		"user_id":       req.UserID,
		"amount":        entity.AmountInCentsToString(result.Claim.AmountInCents),
		"claimed_count": result.Envelope.ClaimedCount,
		"total_count":   result.Envelope.TotalCount,
		"status":        result.Envelope.Status,
	})
	return result, nil
}

func (uc *EnvelopeUseCase) claimOnce(ctx context.Context, req usecase.ClaimRequest) (*usecase.ClaimResult, error) {
	var result *usecase.ClaimResult

	err := persistence.WithinTransaction(ctx, uc.uow, func(ctx context.Context) error {
		envelopes := uc.uow.GetEnvelopeRepository(ctx)
		claims := uc.uow.GetClaimRepository(ctx)

		env, err := envelopes.GetForUpdate(ctx, req.EnvelopeID)
		if err != nil {
			return err
		}

		claimed, err := claims.Exists(ctx, env.ID, req.UserID)
		if err != nil {
			return err
		}

		now := uc.timeProvider.Now()
		if err := env.CheckClaim(req.UserID, req.Answer, claimed, now); err != nil {
			return err
		}

		claimer, err := uc.uow.GetUserRepository(ctx).GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}

		paid, err := claims.SumByEnvelope(ctx, env.ID)
		if err != nil {
			return err
		}
		share, err := uc.allocator.Next(env.AmountInCents-paid, env.RemainingShares())
		if err != nil {
			return fmt.Errorf("%w: envelope %d: %v", errs.ErrInternalServer, env.ID, err)
		}

		claim := &entity.Claim{
			EnvelopeID:      env.ID,
			ClaimerID:       claimer.ID,
			ClaimerNickname: claimer.Nickname,
			AmountInCents:   share,
			CreatedAt:       now,
		}
		if err := claims.Create(ctx, claim); err != nil {
			return err
		}

		status := entity.EnvelopePending
		if env.ClaimedCount+1 >= env.TotalCount {
			status = entity.EnvelopeClaimed
		}
		if err := envelopes.RecordClaim(ctx, env.ID, env.ClaimedCount, status); err != nil {
			return err
		}

		envelopeID := env.ID
		credit, err := uc.ledger.Credit(ctx, usecase.LedgerEntry{
			UserID:     claimer.ID,
			Amount:     share,
			EnvelopeID: &envelopeID,
			Reference:  ClaimReference(envelopeID, claimer.ID),
		})
		if err != nil {
			return err
		}

		env.ClaimedCount++
		env.Status = status
		result = &usecase.ClaimResult{Claim: claim, Envelope: env, Balance: credit.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
