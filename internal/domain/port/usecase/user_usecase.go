package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	User      *entity.User
	Created   bool      // true when this login registered the nickname
	Token     string    // session token, empty when tokens are disabled
	ExpiresAt time.Time // token expiry, zero when tokens are disabled
}

// Wallet is a user's balance together with their ledger size
type Wallet struct {
	UserID           uint64
	Nickname         string
	Balance          int64
	TransactionCount uint64
}

// UserUseCase defines methods for user-related business operations
type UserUseCase interface {
	// Login creates the user on first use of a nickname, granting the starting
	// balance, and otherwise verifies the password
	Login(ctx context.Context, nickname, password string) (*LoginResult, error)

	// GetWallet returns the current balance of a user
	GetWallet(ctx context.Context, userID uint64) (*Wallet, error)

	// Recharge credits a positive amount to the user's wallet
	Recharge(ctx context.Context, userID uint64, amountInCents int64) (*LedgerResult, error)

	// ListTransactions returns the newest ledger entries of a user first
	ListTransactions(ctx context.Context, userID uint64) ([]*entity.Transaction, error)
}
