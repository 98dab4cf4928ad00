package usecase

import (
	"context"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// LedgerEntry describes one balance movement. Amount is always positive;
// the operation decides the direction.
type LedgerEntry struct {
	UserID     uint64
	Amount     int64
	EnvelopeID *uint64
	Reference  string // generated when empty
}

// LedgerResult is the recorded entry and the balance it left behind
type LedgerResult struct {
	Transaction *entity.Transaction
	Balance     int64
}

// TransferRequest moves Amount from one wallet to another. The debit and
// credit entries take Reference with ":out" and ":in" appended.
type TransferRequest struct {
	FromUserID uint64
	ToUserID   uint64
	Amount     int64
	EnvelopeID *uint64
	Reference  string // generated when empty
}

// TransferResult holds both sides of a transfer
type TransferResult struct {
	Debit  *LedgerResult
	Credit *LedgerResult
}

// WalletLedger moves money between wallets and records every movement.
// Calls made with a context that carries a unit of work join it.
type WalletLedger interface {
	// GetBalance returns a user's balance in cents
	GetBalance(ctx context.Context, userID uint64) (int64, error)

	// Recharge credits a wallet from outside the game
	Recharge(ctx context.Context, entry LedgerEntry) (*LedgerResult, error)

	// Deduct debits a wallet as a send entry
	//
	// Possible errors:
	// - ErrInsufficientBalance: If the balance does not cover the amount
	Deduct(ctx context.Context, entry LedgerEntry) (*LedgerResult, error)

	// Credit credits a wallet as a receive entry
	Credit(ctx context.Context, entry LedgerEntry) (*LedgerResult, error)

	// Transfer deducts from one wallet and credits another in a single unit
	// of work, so either both entries are recorded or neither is
	//
	// Possible errors:
	// - ErrInsufficientBalance: If the payer cannot cover the amount
	// - ErrInvalidUserID: If either side is missing or both are the same
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}
