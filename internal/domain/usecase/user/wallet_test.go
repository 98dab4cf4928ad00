package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	persistencemocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/persistence"
)

func TestUserUseCase_GetWallet(t *testing.T) {
	t.Run("should return the balance in cents", func(t *testing.T) {
		f := newLoginFixture(t, stubIssuer{}, false)
		u := &entity.User{ID: 3, Nickname: "eve", TransactionCount: 2}
		u.SetBalance(2550, f.clock)
		f.users.On("GetByID", f.ctx, uint64(3)).Return(u, nil).Once()

		wallet, err := f.uc.GetWallet(f.ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, int64(2550), wallet.Balance)
		assert.Equal(t, "eve", wallet.Nickname)
		assert.Equal(t, uint64(2), wallet.TransactionCount)
	})

	t.Run("should reject user zero", func(t *testing.T) {
		f := newLoginFixture(t, stubIssuer{}, false)

		_, err := f.uc.GetWallet(f.ctx, 0)

		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestUserUseCase_Recharge(t *testing.T) {
	t.Run("should credit through the ledger", func(t *testing.T) {
		f := newLoginFixture(t, stubIssuer{}, false)
		f.ledger.On("Recharge", f.ctx, usecase.LedgerEntry{UserID: 3, Amount: 1234}).
			Return(&usecase.LedgerResult{Balance: 5000}, nil).Once()

		res, err := f.uc.Recharge(f.ctx, 3, 1234)

		require.NoError(t, err)
		assert.Equal(t, int64(5000), res.Balance)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		f := newLoginFixture(t, stubIssuer{}, false)

		_, err := f.uc.Recharge(f.ctx, 3, 0)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestUserUseCase_ListTransactions(t *testing.T) {
	t.Run("should list with the configured limit", func(t *testing.T) {
		f := newLoginFixture(t, stubIssuer{}, false)
		txRepo := persistencemocks.NewMockTransactionRepository(t)
		f.uow.On("GetTransactionRepository", f.ctx).Return(txRepo).Once()
		f.users.On("GetByID", f.ctx, uint64(3)).Return(&entity.User{ID: 3}, nil).Once()
		entries := []*entity.Transaction{{ID: 2}, {ID: 1}}
		txRepo.On("ListByUser", f.ctx, uint64(3), DefaultTransactionLimit).Return(entries, nil).Once()

		got, err := f.uc.ListTransactions(f.ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("should report unknown users", func(t *testing.T) {
		f := newLoginFixture(t, stubIssuer{}, false)
		f.users.On("GetByID", f.ctx, uint64(99)).Return(nil, errs.ErrUserNotFound).Once()

		_, err := f.uc.ListTransactions(f.ctx, 99)

		assert.ErrorIs(t, err, errs.ErrUserNotFound)
		f.uow.AssertNotCalled(t, "GetTransactionRepository", mock.Anything)
	})
}
