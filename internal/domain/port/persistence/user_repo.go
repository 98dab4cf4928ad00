package persistence

import (
	"context"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// UserRepository defines the methods needed to manage players and their wallets
type UserRepository interface {
	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// GetByIDs loads several users at once, keyed by ID. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*entity.User, error)

	// GetByNickname retrieves a user by login name
	//
	// Possible errors:
	// - ErrUserNotFound: If no user has this nickname
	GetByNickname(ctx context.Context, nickname string) (*entity.User, error)

	// Create stores a new user and fills in its ID
	//
	// Possible errors:
	// - ErrDuplicateUser: If the nickname is taken
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// ApplyBalanceChange adds delta to the balance in a single guarded update
	// and returns the updated user. The balance never drops below zero.
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrInsufficientBalance: If a debit would make the balance negative
	// - ErrDatabaseConnection: If database connection fails
	ApplyBalanceChange(ctx context.Context, userID uint64, delta int64) (*entity.User, error)
}
