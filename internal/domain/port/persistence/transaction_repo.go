package persistence

import (
	"context"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// TransactionRepository stores wallet ledger entries
type TransactionRepository interface {
	// Create records a ledger entry and fills in its ID
	//
	// Possible errors:
	// - ErrDuplicateTransaction: If the reference was already recorded
	Create(ctx context.Context, tx *entity.Transaction) error

	// ExistsByReference checks whether an entry with this reference exists
	ExistsByReference(ctx context.Context, reference string) (bool, error)

	// ListByUser returns the newest entries of a user first, with the related
	// envelope summary attached when there is one
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error)
}
