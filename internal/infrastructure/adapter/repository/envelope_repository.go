package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/model"
)

// EnvelopeRepository implements EnvelopeRepository interface using GORM
type EnvelopeRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewEnvelopeRepository creates a new EnvelopeRepository instance
func NewEnvelopeRepository(db *gorm.DB, logger coreport.Logger) *EnvelopeRepository {
	return &EnvelopeRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func modelToEnvelope(m *model.Envelope) *entity.Envelope {
	return &entity.Envelope{
		ID:            m.ID,
		SenderID:      m.SenderID,
		AmountInCents: m.AmountInCents,
		TotalCount:    m.TotalCount,
		ClaimedCount:  m.ClaimedCount,
		BookName:      m.BookName,
		Excerpt:       m.Excerpt,
		Answer:        m.Answer,
		Cipher:        m.Cipher,
		Status:        entity.EnvelopeStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		ExpiresAt:     m.ExpiresAt,
		RefundedAt:    m.RefundedAt,
	}
}

func (r *EnvelopeRepository) handleDatabaseError(operation string, err error, envelopeID uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrEnvelopeNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), coreport.ErrorFields(err, map[string]any{
		"envelope_id": envelopeID,
	}))

	switch r.errorClassifier.Classify(err) {
	case LockError:
		return fmt.Errorf("%w: %s", errs.ErrConcurrentUpdate, err.Error())
	case ConstraintError, DuplicateKeyError:
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, err.Error())
	default:
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
}

// attachSenderNicknames fills SenderNickname with one lookup for all envelopes
func (r *EnvelopeRepository) attachSenderNicknames(ctx context.Context, envelopes ...*entity.Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(envelopes))
	for _, e := range envelopes {
		ids = append(ids, e.SenderID)
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Select("id", "nickname").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return r.handleDatabaseError("loading sender nicknames", err, envelopes[0].ID)
	}

	names := make(map[uint64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Nickname
	}
	for _, e := range envelopes {
		e.SenderNickname = names[e.SenderID]
	}
	return nil
}

// Create stores a new envelope
func (r *EnvelopeRepository) Create(ctx context.Context, envelope *entity.Envelope) error {
	m := model.Envelope{
		SenderID:      envelope.SenderID,
		AmountInCents: envelope.AmountInCents,
		TotalCount:    envelope.TotalCount,
		ClaimedCount:  envelope.ClaimedCount,
		BookName:      envelope.BookName,
		Excerpt:       envelope.Excerpt,
		Answer:        envelope.Answer,
		Cipher:        envelope.Cipher,
		Status:        string(envelope.Status),
		CreatedAt:     envelope.CreatedAt,
		ExpiresAt:     envelope.ExpiresAt,
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.handleDatabaseError("creating envelope", err, 0)
	}

	envelope.ID = m.ID
	r.logger.Debug("Envelope stored", map[string]any{
		"envelope_id": envelope.ID,
		"sender_id":   envelope.SenderID,
	})
	return nil
}

// GetByID loads an envelope with its sender nickname
func (r *EnvelopeRepository) GetByID(ctx context.Context, id uint64) (*entity.Envelope, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate loads an envelope and locks its row on PostgreSQL
func (r *EnvelopeRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Envelope, error) {
	return r.get(ctx, lockForUpdate(r.db.WithContext(ctx)), id)
}

func (r *EnvelopeRepository) get(ctx context.Context, db *gorm.DB, id uint64) (*entity.Envelope, error) {
	var m model.Envelope
	if err := db.First(&m, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting envelope", err, id)
	}

	envelope := modelToEnvelope(&m)
	if err := r.attachSenderNicknames(ctx, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// ListRecent returns the newest envelopes first
func (r *EnvelopeRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Envelope, error) {
	var models []model.Envelope
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing envelopes", err, 0)
	}

	out := make([]*entity.Envelope, 0, len(models))
	for i := range models {
		out = append(out, modelToEnvelope(&models[i]))
	}
	if err := r.attachSenderNicknames(ctx, out...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpirable returns pending envelopes whose expiry lies before now and
// whose id is above afterID, in id order
func (r *EnvelopeRepository) ListExpirable(ctx context.Context, now time.Time, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Envelope{}).
		Where("status = ? AND expires_at < ? AND id > ?", string(entity.EnvelopePending), now, afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing expirable envelopes", err, 0)
	}
	return ids, nil
}

// RecordClaim advances claimed_count by one if nobody moved it since it was read
func (r *EnvelopeRepository) RecordClaim(ctx context.Context, id uint64, expectedClaimed int, status entity.EnvelopeStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Envelope{}).
		Where("id = ? AND claimed_count = ? AND status = ?", id, expectedClaimed, string(entity.EnvelopePending)).
		Updates(map[string]any{
			"claimed_count": expectedClaimed + 1,
			"status":        string(status),
		})
	if result.Error != nil {
		return r.handleDatabaseError("recording claim", result.Error, id)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Envelope changed under claim", map[string]any{
			"envelope_id":      id,
			"expected_claimed": expectedClaimed,
		})
		return errs.ErrConcurrentUpdate
	}
	return nil
}

// MarkExpired flips a pending envelope to expired. Only one caller sees true.
func (r *EnvelopeRepository) MarkExpired(ctx context.Context, id uint64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Envelope{}).
		Where("id = ? AND status = ?", id, string(entity.EnvelopePending)).
		Updates(map[string]any{
			"status":      string(entity.EnvelopeExpired),
			"refunded_at": at,
		})
	if result.Error != nil {
		return false, r.handleDatabaseError("expiring envelope", result.Error, id)
	}
	return result.RowsAffected == 1, nil
}
