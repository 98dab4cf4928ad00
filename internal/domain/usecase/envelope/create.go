package envelope

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/excerpt"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// SendReference is the ledger reference of the debit that funds an envelope
func SendReference(envelopeID uint64) string {
	return fmt.Sprintf("send:envelope:%d", envelopeID)
}

// Create funds a new envelope from the sender's wallet
func (uc *EnvelopeUseCase) Create(ctx context.Context, req usecase.CreateEnvelopeRequest) (*usecase.CreatedEnvelope, error) {
	if req.SenderID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if err := entity.ValidateEnvelopeRequest(req.AmountInCents, req.Count); err != nil {
		return nil, err
	}

	sender, err := uc.uow.GetUserRepository(ctx).GetByID(ctx, req.SenderID)
	if err != nil {
		return nil, err
	}
	if !sender.CanDeduct(req.AmountInCents) {
		return nil, errs.NewInsufficientBalanceError(
			sender.ID,
			entity.AmountInCentsToString(req.AmountInCents),
			sender.GetBalance(),
		)
	}

	passage, err := uc.pickExcerpt(ctx, req.BookName)
	if err != nil {
		return nil, err
	}

	selection := uc.extractor.Extract(passage.Text, uc.config.PasswordLength)
	if selection.Chars == "" {
		return nil, fmt.Errorf("%w: excerpt from %s has no usable characters", errs.ErrInternalServer, passage.BookName)
	}
	encoding := uc.codec.Encode(selection.Chars)

	env, err := entity.NewEnvelope(
		sender.ID,
		req.AmountInCents,
		req.Count,
		passage.BookName,
		passage.Text,
		selection.Chars,
		encoding.Cipher,
		uc.config.Lifetime,
		uc.timeProvider,
	)
	if err != nil {
		return nil, err
	}
	env.SenderNickname = sender.Nickname

	var balance int64
	err = uc.retrier.Do(ctx, func(ctx context.Context) error {
		env.ID = 0
		return persistence.WithinTransaction(ctx, uc.uow, func(ctx context.Context) error {
			if err := uc.uow.GetEnvelopeRepository(ctx).Create(ctx, env); err != nil {
				return err
			}

			envelopeID := env.ID
			result, err := uc.ledger.Deduct(ctx, usecase.LedgerEntry{
				UserID:     sender.ID,
				Amount:     env.AmountInCents,
				EnvelopeID: &envelopeID,
				Reference:  SendReference(envelopeID),
			})
			if err != nil {
				return err
			}
			balance = result.Balance
			return nil
		})
	})
	if err != nil {
		uc.logger.Warn("Envelope creation failed", coreport.ErrorFields(err, map[string]any{
			"sender_id": sender.ID,
			"amount":    entity.AmountInCentsToString(req.AmountInCents),
			"count":     req.Count,
		}))
		return nil, err
	}

	uc.logger.Info("Envelope created", map[string]any{
		"envelope_id": env.ID,
		"sender_id":   sender.ID,
		"amount":      entity.AmountInCentsToString(env.AmountInCents),
		"count":       env.TotalCount,
		"book":        env.BookName,
		"expires_at":  env.ExpiresAt,
	})

	return &usecase.CreatedEnvelope{
		EnvelopeView: usecase.EnvelopeView{Envelope: env, Timeline: encoding.Timeline},
		Phonetic:     encoding.Phonetic,
		Balance:      balance,
	}, nil
}

func (uc *EnvelopeUseCase) pickExcerpt(ctx context.Context, book string) (excerpt.Excerpt, error) {
	if book != "" {
		return uc.excerpts.ByBook(ctx, book)
	}
	return uc.excerpts.Random(ctx)
}
