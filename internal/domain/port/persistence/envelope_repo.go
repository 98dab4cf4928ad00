package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// EnvelopeRepository stores envelopes and guards their state transitions
type EnvelopeRepository interface {
	// Create stores a new envelope and fills in its ID
	Create(ctx context.Context, envelope *entity.Envelope) error

	// GetByID loads an envelope with its sender nickname
	//
	// Possible errors:
	// - ErrEnvelopeNotFound: If the envelope doesn't exist
	GetByID(ctx context.Context, id uint64) (*entity.Envelope, error)

	// GetForUpdate loads an envelope and locks its row until the surrounding
	// transaction ends, on databases that support row locks
	GetForUpdate(ctx context.Context, id uint64) (*entity.Envelope, error)

	// ListRecent returns the newest envelopes first
	ListRecent(ctx context.Context, limit int) ([]*entity.Envelope, error)

	// ListExpirable returns IDs of pending envelopes whose expiry is before
	// now, ascending and strictly after afterID
	ListExpirable(ctx context.Context, now time.Time, afterID uint64, limit int) ([]uint64, error)

	// RecordClaim advances the claimed count from expectedClaimed by one and
	// sets the resulting status, only while the envelope is still pending
	//
	// Possible errors:
	// - ErrConcurrentUpdate: If another writer moved the envelope first
	RecordClaim(ctx context.Context, id uint64, expectedClaimed int, status entity.EnvelopeStatus) error

	// MarkExpired moves a pending envelope to expired. It reports false when
	// the envelope was not pending, so only one caller wins the transition.
	MarkExpired(ctx context.Context, id uint64, at time.Time) (bool, error)
}
