package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// Login registers an unknown nickname with the starting grant, or checks the
// password of a known one
func (u *UserUseCase) Login(ctx context.Context, nickname, password string) (*usecase.LoginResult, error) {
	nickname, err := entity.NormalizeNickname(nickname)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidatePassword(password); err != nil {
		return nil, err
	}

	user, err := u.uow.GetUserRepository(ctx).GetByNickname(ctx, nickname)
	created := false

	switch {
	case err == nil:
		if err := u.checkPassword(user, password); err != nil {
			return nil, err
		}
	case errors.Is(err, errs.ErrUserNotFound):
		user, err = u.register(ctx, nickname, password)
		if errors.Is(err, errs.ErrDuplicateUser) {
			// Someone registered the nickname between our read and insert
			user, err = u.uow.GetUserRepository(ctx).GetByNickname(ctx, nickname)
			if err != nil {
				return nil, err
			}
			if err := u.checkPassword(user, password); err != nil {
				return nil, err
			}
			break
		}
		if err != nil {
			return nil, err
		}
		created = true
	default:
		return nil, err
	}

	result := &usecase.LoginResult{User: user, Created: created}
	if u.tokens != nil {
		token, expiresAt, err := u.tokens.Issue(user.ID, user.Nickname)
		if err != nil {
			u.logger.Error("Failed to issue session token", map[string]any{
				"user_id": user.ID,
				"error":   err.Error(),
			})
			return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
		}
		result.Token = token
		result.ExpiresAt = expiresAt
	}

	u.logger.Info("User logged in", map[string]any{
		"user_id":  user.ID,
		"nickname": user.Nickname,
		"created":  created,
	})
	return result, nil
}

func (u *UserUseCase) checkPassword(user *entity.User, password string) error {
	if !u.verifier.Verify(user.Credential, password) {
		u.logger.Warn("Password mismatch", map[string]any{"user_id": user.ID})
		return errs.ErrInvalidCredentials
	}
	return nil
}

// register stores the user and its starting grant in one transaction
func (u *UserUseCase) register(ctx context.Context, nickname, password string) (*entity.User, error) {
	credential, err := u.verifier.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	user, err := entity.NewUser(nickname, credential, u.timeProvider)
	if err != nil {
		return nil, err
	}

	err = persistence.WithinTransaction(ctx, u.uow, func(ctx context.Context) error {
		if err := u.uow.GetUserRepository(ctx).Create(ctx, user); err != nil {
			return err
		}
		if u.config.StartingBalance == 0 {
			return nil
		}

		res, err := u.ledger.Recharge(ctx, usecase.LedgerEntry{
			UserID:    user.ID,
			Amount:    u.config.StartingBalance,
			Reference: fmt.Sprintf("grant:user:%d", user.ID),
		})
		if err != nil {
			return err
		}
		user.SetBalance(res.Balance, u.timeProvider)
		user.TransactionCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
