package wallet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/usecase/wallet"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/database"
	timeadapter "github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
)

func TestTransferOnSQLite(t *testing.T) {
	ctx := context.Background()
	logger := coremocks.NewPermissiveLogger()
	clock := timeadapter.NewFixedTimeProvider(time.Date(2026, 2, 17, 9, 30, 0, 0, time.UTC))
	tdb := database.NewTestDBManager(t, logger, clock)
	ledger := wallet.NewLedger(tdb.UnitOfWork(), clock, logger)

	alice := tdb.CreateTestUser(t, "alice", 1000)
	bob := tdb.CreateTestUser(t, "bob", 0)

	res, err := ledger.Transfer(ctx, usecase.TransferRequest{FromUserID: alice, ToUserID: bob, Amount: 400})
	require.NoError(t, err)
	assert.Equal(t, int64(600), res.Debit.Balance)
	assert.Equal(t, int64(400), res.Credit.Balance)

	_, err = ledger.Transfer(ctx, usecase.TransferRequest{FromUserID: bob, ToUserID: alice, Amount: 401})
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

	_, err = ledger.Transfer(ctx, usecase.TransferRequest{FromUserID: alice, ToUserID: 999, Amount: 100})
	assert.ErrorIs(t, err, errs.ErrUserNotFound)

	assert.Equal(t, int64(600), tdb.Balance(t, alice))
	assert.Equal(t, int64(400), tdb.Balance(t, bob))
	assert.Equal(t, int64(1), tdb.CountTransactions(t, alice, entity.KindSend))
	assert.Equal(t, int64(1), tdb.CountTransactions(t, bob, entity.KindReceive))
	tdb.AssertLedgerBalanced(t)
}
