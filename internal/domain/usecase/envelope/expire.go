package envelope

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// RefundReference is the ledger reference of an envelope's refund. It is
// deterministic so a replayed refund hits the unique reference index.
func RefundReference(envelopeID uint64) string {
	return fmt.Sprintf("refund:envelope:%d", envelopeID)
}

// Expire moves an overdue pending envelope to expired and refunds the
// unclaimed remainder to the sender. Only the call that wins the status
// change refunds; the rest report Expired false.
func (uc *EnvelopeUseCase) Expire(ctx context.Context, envelopeID uint64) (*usecase.ExpireResult, error) {
	if envelopeID == 0 {
		return nil, errs.ErrInvalidEnvelopeID
	}

	env, err := uc.uow.GetEnvelopeRepository(ctx).GetByID(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if !env.IsExpirable(uc.timeProvider.Now()) {
		return &usecase.ExpireResult{}, nil
	}

	result := &usecase.ExpireResult{}
	err = uc.serializer.Do(ctx, envelopeID, func(ctx context.Context) error {
		return uc.retrier.Do(ctx, func(ctx context.Context) error {
			r, err := uc.expireOnce(ctx, env)
			if r != nil {
				result = r
			}
			return err
		})
	})
	if err != nil {
		uc.logger.Error("Envelope expiry failed", coreport.ErrorFields(err, map[string]any{
			"envelope_id": envelopeID,
		}))
		return nil, err
	}

	if result.Expired {
		uc.logger.Info("Envelope expired", map[string]any{
			"envelope_id": envelopeID,
			"sender_id":   env.SenderID,
			"refunded":    entity.AmountInCentsToString(result.Refunded),
		})
	}
	return result, nil
}

func (uc *EnvelopeUseCase) expireOnce(ctx context.Context, env *entity.Envelope) (*usecase.ExpireResult, error) {
	result := &usecase.ExpireResult{}

	err := persistence.WithinTransaction(ctx, uc.uow, func(ctx context.Context) error {
		won, err := uc.uow.GetEnvelopeRepository(ctx).MarkExpired(ctx, env.ID, uc.timeProvider.Now())
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		result.Expired = true

		paid, err := uc.uow.GetClaimRepository(ctx).SumByEnvelope(ctx, env.ID)
		if err != nil {
			return err
		}
		remaining := env.AmountInCents - paid
		if remaining <= 0 {
			return nil
		}

		envelopeID := env.ID
		if _, err := uc.ledger.Recharge(ctx, usecase.LedgerEntry{
			UserID:     env.SenderID,
			Amount:     remaining,
			EnvelopeID: &envelopeID,
			Reference:  RefundReference(envelopeID),
		}); err != nil {
			return err
		}
		result.Refunded = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Sweep expires every pending envelope past its deadline. It keeps going
// when a single envelope fails and returns the joined errors.
func (uc *EnvelopeUseCase) Sweep(ctx context.Context) (int, error) {
	expired := 0
	var failures []error
	var cursor uint64

	for {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		ids, err := uc.uow.GetEnvelopeRepository(ctx).ListExpirable(ctx, uc.timeProvider.Now(), cursor, uc.config.SweepBatchSize)
		if err != nil {
			return expired, err
		}

		for _, id := range ids {
			cursor = id
			result, err := uc.Expire(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return expired, ctx.Err()
				}
				failures = append(failures, fmt.Errorf("envelope %d: %w", id, err))
				continue
			}
			if result.Expired {
				expired++
			}
		}

		if len(ids) < uc.config.SweepBatchSize {
			break
		}
	}

	if expired > 0 || len(failures) > 0 {
		uc.logger.Info("Expiry sweep finished", map[string]any{
			"expired": expired,
			"failed":  len(failures),
		})
	}
	return expired, errors.Join(failures...)
}

// RunSweeper sweeps every interval until ctx is done
func (uc *EnvelopeUseCase) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	uc.logger.Info("Expiry sweeper started", map[string]any{"interval": interval.String()})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("Expiry sweeper stopped", nil)
			return nil
		case <-ticker.C:
			if _, err := uc.Sweep(ctx); err != nil && ctx.Err() == nil {
				uc.logger.Error("Expiry sweep failed", coreport.ErrorFields(err, nil))
			}
		}
	}
}
