package user

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// GetWallet returns the balance of a user
func (u *UserUseCase) GetWallet(ctx context.Context, userID uint64) (*usecase.Wallet, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	user, err := u.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &usecase.Wallet{
		UserID:           user.ID,
		Nickname:         user.Nickname,
		Balance:          user.Balance(),
		TransactionCount: user.TransactionCount,
	}, nil
}

// Recharge adds money to a wallet
func (u *UserUseCase) Recharge(ctx context.Context, userID uint64, amountInCents int64) (*usecase.LedgerResult, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amountInCents <= 0 {
		return nil, fmt.Errorf("%w: recharge amount must be positive", errs.ErrInvalidAmount)
	}

	return u.ledger.Recharge(ctx, usecase.LedgerEntry{UserID: userID, Amount: amountInCents})
}

// ListTransactions returns the newest ledger entries of a user
func (u *UserUseCase) ListTransactions(ctx context.Context, userID uint64) ([]*entity.Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	if _, err := u.uow.GetUserRepository(ctx).GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return u.uow.GetTransactionRepository(ctx).ListByUser(ctx, userID, u.config.TransactionLimit)
}
