// Package wallet implements the wallet ledger: every balance movement is
// applied together with the transaction row that records it.
package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// Ledger implements usecase.WalletLedger on top of a unit of work
type Ledger struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.WalletLedger = (*Ledger)(nil)

// NewLedger creates a new Ledger
func NewLedger(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *Ledger {
	return &Ledger{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetBalance returns the balance of a user in cents
func (l *Ledger) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	if userID == 0 {
		return 0, errs.ErrInvalidUserID
	}
	user, err := l.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance(), nil
}

// Recharge credits money entering the game from outside
func (l *Ledger) Recharge(ctx context.Context, entry usecase.LedgerEntry) (*usecase.LedgerResult, error) {
	return l.apply(ctx, entry, entity.KindRecharge, entry.Amount)
}

// Deduct debits a wallet
func (l *Ledger) Deduct(ctx context.Context, entry usecase.LedgerEntry) (*usecase.LedgerResult, error) {
	return l.apply(ctx, entry, entity.KindSend, -entry.Amount)
}

// Credit pays into a wallet
func (l *Ledger) Credit(ctx context.Context, entry usecase.LedgerEntry) (*usecase.LedgerResult, error) {
	return l.apply(ctx, entry, entity.KindReceive, entry.Amount)
}

// Transfer moves money between two wallets. The debit runs first so an
// uncovered transfer fails before anything is credited.
func (l *Ledger) Transfer(ctx context.Context, req usecase.TransferRequest) (*usecase.TransferResult, error) {
	if req.FromUserID == 0 || req.ToUserID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if req.FromUserID == req.ToUserID {
		return nil, fmt.Errorf("%w: cannot transfer to the same wallet", errs.ErrInvalidUserID)
	}

	reference := req.Reference
	if reference == "" {
		reference = "transfer:" + uuid.NewString()
	}

	result := &usecase.TransferResult{}
	err := persistence.WithinTransaction(ctx, l.uow, func(ctx context.Context) error {
		debit, err := l.Deduct(ctx, usecase.LedgerEntry{
			UserID:     req.FromUserID,
			Amount:     req.Amount,
			EnvelopeID: req.EnvelopeID,
			Reference:  reference + ":out",
		})
		if err != nil {
			return err
		}
		credit, err := l.Credit(ctx, usecase.LedgerEntry{
			UserID:     req.ToUserID,
			Amount:     req.Amount,
			EnvelopeID: req.EnvelopeID,
			Reference:  reference + ":in",
		})
		if err != nil {
			return err
		}
		result.Debit, result.Credit = debit, credit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) apply(
	ctx context.Context,
	entry usecase.LedgerEntry,
	kind entity.TransactionKind,
	delta int64,
) (*usecase.LedgerResult, error) {
	if entry.UserID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if entry.Amount <= 0 {
		return nil, fmt.Errorf("%w: ledger amounts must be positive", errs.ErrInvalidAmount)
	}

	reference := entry.Reference
	if reference == "" {
		reference = fmt.Sprintf("%s:%s", kind, uuid.NewString())
	}

	tx, err := entity.NewTransaction(entry.UserID, reference, kind, delta, entry.EnvelopeID, l.timeProvider)
	if err != nil {
		return nil, err
	}

	var result *usecase.LedgerResult
	err = persistence.WithinTransaction(ctx, l.uow, func(ctx context.Context) error {
		user, err := l.uow.GetUserRepository(ctx).ApplyBalanceChange(ctx, entry.UserID, delta)
		if err != nil {
			return err
		}

		tx.BalanceAfter = user.Balance()
		if err := l.uow.GetTransactionRepository(ctx).Create(ctx, tx); err != nil {
			return err
		}

		result = &usecase.LedgerResult{Transaction: tx, Balance: user.Balance()}
		return nil
	})
	if err != nil {
		l.logger.Warn("Ledger entry rejected", coreport.ErrorFields(err, map[string]any{
			"user_id":   entry.UserID,
			"kind":      kind,
			"amount":    entity.AmountInCentsToString(delta),
			"reference": reference,
		}))
		return nil, err
	}

	l.logger.Info("Ledger entry recorded", map[string]any{
		"user_id":       entry.UserID,
		"kind":          kind,
		"amount":        tx.Amount(),
		"balance_after": entity.AmountInCentsToString(result.Balance),
		"reference":     reference,
	})
	return result, nil
}
