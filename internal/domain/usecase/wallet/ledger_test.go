package wallet

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/persistence"
)

type txMarker struct{}

type ledgerFixture struct {
	ledger   *Ledger
	uow      *persistencemocks.MockUnitOfWork
	users    *persistencemocks.MockUserRepository
	txs      *persistencemocks.MockTransactionRepository
	clock    *coremocks.MockTimeProvider
	ctx      context.Context
	txCtx    context.Context
	fixedNow time.Time
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	f := &ledgerFixture{
		uow:      persistencemocks.NewMockUnitOfWork(t),
		users:    persistencemocks.NewMockUserRepository(t),
		txs:      persistencemocks.NewMockTransactionRepository(t),
		clock:    coremocks.NewMockTimeProvider(t),
		ctx:      context.Background(),
		fixedNow: time.Date(2026, 2, 17, 9, 30, 0, 0, time.UTC),
	}
	f.txCtx = context.WithValue(f.ctx, txMarker{}, "tx")
	f.clock.On("Now").Return(f.fixedNow).Maybe()
	f.ledger = NewLedger(f.uow, f.clock, coremocks.NewPermissiveLogger())
	return f
}

func (f *ledgerFixture) expectTransaction(commit bool) {
	f.uow.On("InTransaction", f.ctx).Return(false).Once()
	f.uow.On("Begin", f.ctx).Return(f.txCtx, nil).Once()
	f.uow.On("GetUserRepository", f.txCtx).Return(f.users)
	f.uow.On("GetTransactionRepository", f.txCtx).Return(f.txs).Maybe()
	if commit {
		f.uow.On("Commit", f.txCtx).Return(nil).Once()
	} else {
		f.uow.On("Rollback", f.txCtx).Return(nil).Once()
	}
}

func (f *ledgerFixture) userWithBalance(id uint64, cents int64) *entity.User {
	u := &entity.User{ID: id, Nickname: "u"}
	u.SetBalance(cents, f.clock)
	return u
}

func TestLedgerCredit(t *testing.T) {
	t.Run("should apply the credit and record a receive entry", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.expectTransaction(true)
		envelopeID := uint64(5)
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(1), int64(500)).
			Return(f.userWithBalance(1, 1500), nil).Once()
		f.txs.On("Create", f.txCtx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Kind == entity.KindReceive &&
				tx.AmountInCents == 500 &&
				tx.BalanceAfter == 1500 &&
				tx.Reference == "claim:5:1" &&
				*tx.EnvelopeID == envelopeID
		})).Return(nil).Once()

		// Act
		res, err := f.ledger.Credit(f.ctx, usecase.LedgerEntry{
			UserID: 1, Amount: 500, EnvelopeID: &envelopeID, Reference: "claim:5:1",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(1500), res.Balance)
		assert.Equal(t, f.fixedNow, res.Transaction.CreatedAt)
	})
}

func TestLedgerDeduct(t *testing.T) {
	t.Run("should roll back when the balance does not cover the debit", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.expectTransaction(false)
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(2), int64(-10000)).
			Return(nil, errs.NewInsufficientBalanceError(2, "100.00", "5.00")).Once()

		// Act
		res, err := f.ledger.Deduct(f.ctx, usecase.LedgerEntry{UserID: 2, Amount: 10000})

		// Assert
		assert.Nil(t, res)
		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
		f.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("should record a negative send entry", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.expectTransaction(true)
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(2), int64(-300)).
			Return(f.userWithBalance(2, 700), nil).Once()
		f.txs.On("Create", f.txCtx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Kind == entity.KindSend && tx.AmountInCents == -300 && strings.HasPrefix(tx.Reference, "send:")
		})).Return(nil).Once()

		// Act
		res, err := f.ledger.Deduct(f.ctx, usecase.LedgerEntry{UserID: 2, Amount: 300})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "-3.00", res.Transaction.Amount())
	})
}

func TestLedgerRecharge(t *testing.T) {
	t.Run("should join a transaction already in the context", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.uow.On("InTransaction", f.txCtx).Return(true).Once()
		f.uow.On("GetUserRepository", f.txCtx).Return(f.users).Once()
		f.uow.On("GetTransactionRepository", f.txCtx).Return(f.txs).Once()
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(3), int64(10000)).
			Return(f.userWithBalance(3, 10000), nil).Once()
		f.txs.On("Create", f.txCtx, mock.AnythingOfType("*entity.Transaction")).Return(nil).Once()

		// Act
		res, err := f.ledger.Recharge(f.txCtx, usecase.LedgerEntry{UserID: 3, Amount: 10000})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, entity.KindRecharge, res.Transaction.Kind)
		f.uow.AssertNotCalled(t, "Begin", mock.Anything)
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should surface a replayed reference", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.expectTransaction(false)
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(3), int64(100)).
			Return(f.userWithBalance(3, 200), nil).Once()
		f.txs.On("Create", f.txCtx, mock.Anything).Return(errs.ErrDuplicateTransaction).Once()

		// Act
		_, err := f.ledger.Recharge(f.ctx, usecase.LedgerEntry{UserID: 3, Amount: 100, Reference: "refund:envelope:9"})

		// Assert
		assert.ErrorIs(t, err, errs.ErrDuplicateTransaction)
	})

	t.Run("should reject invalid entries before touching storage", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.ledger.Recharge(f.ctx, usecase.LedgerEntry{UserID: 3, Amount: 0})
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = f.ledger.Recharge(f.ctx, usecase.LedgerEntry{UserID: 0, Amount: 10})
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestLedgerTransfer(t *testing.T) {
	t.Run("should debit and credit inside one transaction", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.expectTransaction(true)
		f.uow.On("InTransaction", f.txCtx).Return(true).Twice()
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(1), int64(-500)).
			Return(f.userWithBalance(1, 500), nil).Once()
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(2), int64(500)).
			Return(f.userWithBalance(2, 500), nil).Once()
		f.txs.On("Create", f.txCtx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Reference == "gift:7:out" && tx.Kind == entity.KindSend
		})).Return(nil).Once()
		f.txs.On("Create", f.txCtx, mock.MatchedBy(func(tx *entity.Transaction) bool {
			return tx.Reference == "gift:7:in" && tx.Kind == entity.KindReceive
		})).Return(nil).Once()

		// Act
		res, err := f.ledger.Transfer(f.ctx, usecase.TransferRequest{
			FromUserID: 1, ToUserID: 2, Amount: 500, Reference: "gift:7",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(500), res.Debit.Balance)
		assert.Equal(t, int64(500), res.Credit.Balance)
	})

	t.Run("should roll back the debit when the credit fails", func(t *testing.T) {
		// Arrange
		f := newLedgerFixture(t)
		f.expectTransaction(false)
		f.uow.On("InTransaction", f.txCtx).Return(true).Twice()
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(1), int64(-500)).
			Return(f.userWithBalance(1, 500), nil).Once()
		f.users.On("ApplyBalanceChange", f.txCtx, uint64(2), int64(500)).
			Return(nil, errs.ErrUserNotFound).Once()
		f.txs.On("Create", f.txCtx, mock.Anything).Return(nil).Once()

		// Act
		res, err := f.ledger.Transfer(f.ctx, usecase.TransferRequest{FromUserID: 1, ToUserID: 2, Amount: 500})

		// Assert
		assert.Nil(t, res)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should refuse a transfer to the same wallet", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.ledger.Transfer(f.ctx, usecase.TransferRequest{FromUserID: 3, ToUserID: 3, Amount: 10})
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)

		_, err = f.ledger.Transfer(f.ctx, usecase.TransferRequest{FromUserID: 3, Amount: 10})
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestLedgerGetBalance(t *testing.T) {
	t.Run("should read the balance in cents", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.uow.On("GetUserRepository", f.ctx).Return(f.users).Once()
		f.users.On("GetByID", f.ctx, uint64(4)).Return(f.userWithBalance(4, 4242), nil).Once()

		balance, err := f.ledger.GetBalance(f.ctx, 4)

		require.NoError(t, err)
		assert.Equal(t, int64(4242), balance)
	})

	t.Run("should propagate not found", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.uow.On("GetUserRepository", f.ctx).Return(f.users).Once()
		f.users.On("GetByID", f.ctx, uint64(9)).Return(nil, errs.ErrUserNotFound).Once()

		_, err := f.ledger.GetBalance(f.ctx, 9)

		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}
