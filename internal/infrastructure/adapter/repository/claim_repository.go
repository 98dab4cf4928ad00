package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/model"
)

// ClaimRepository implements ClaimRepository interface using GORM
type ClaimRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewClaimRepository creates a new ClaimRepository instance
func NewClaimRepository(db *gorm.DB, logger coreport.Logger) *ClaimRepository {
	return &ClaimRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *ClaimRepository) dbError(operation string, err error, fields map[string]any) error {
	r.logger.Error(fmt.Sprintf("Database error when %s", operation), coreport.ErrorFields(err, fields))
	if r.errorClassifier.IsLockError(err) {
		return fmt.Errorf("%w: %s", errs.ErrConcurrentUpdate, err.Error())
	}
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// Create records a claim; the (envelope, claimer) unique index rejects repeats
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	m := model.Claim{
		EnvelopeID:    claim.EnvelopeID,
		ClaimerID:     claim.ClaimerID,
		AmountInCents: claim.AmountInCents,
		CreatedAt:     claim.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.NewClaimError(claim.EnvelopeID, claim.ClaimerID, "duplicate claim", errs.ErrAlreadyClaimed)
		}
		return r.dbError("creating claim", err, map[string]any{
			"envelope_id": claim.EnvelopeID,
			"claimer_id":  claim.ClaimerID,
		})
	}

	claim.ID = m.ID
	return nil
}

// Exists reports whether the user already claimed the envelope
func (r *ClaimRepository) Exists(ctx context.Context, envelopeID, claimerID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Claim{}).
		Where("envelope_id = ? AND claimer_id = ?", envelopeID, claimerID).
		Count(&count).Error
	if err != nil {
		return false, r.dbError("checking claim", err, map[string]any{
			"envelope_id": envelopeID,
			"claimer_id":  claimerID,
		})
	}
	return count > 0, nil
}

// ListByEnvelope returns claims newest first with claimer nicknames
func (r *ClaimRepository) ListByEnvelope(ctx context.Context, envelopeID uint64) ([]*entity.Claim, error) {
	byEnvelope, err := r.ListByEnvelopes(ctx, []uint64{envelopeID})
	if err != nil {
		return nil, err
	}
	claims := byEnvelope[envelopeID]
	if claims == nil {
		claims = []*entity.Claim{}
	}
	return claims, nil
}

// ListByEnvelopes loads claims of several envelopes in two queries
func (r *ClaimRepository) ListByEnvelopes(ctx context.Context, envelopeIDs []uint64) (map[uint64][]*entity.Claim, error) {
	out := make(map[uint64][]*entity.Claim, len(envelopeIDs))
	if len(envelopeIDs) == 0 {
		return out, nil
	}

	db := r.db.WithContext(ctx)

	var models []model.Claim
	err := db.Where("envelope_id IN ?", envelopeIDs).
		Order("created_at DESC").Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, r.dbError("listing claims", err, map[string]any{"envelope_ids": envelopeIDs})
	}

	names, err := r.nicknames(db, models)
	if err != nil {
		return nil, err
	}

	for _, m := range models {
		out[m.EnvelopeID] = append(out[m.EnvelopeID], &entity.Claim{
			ID:              m.ID,
			EnvelopeID:      m.EnvelopeID,
			ClaimerID:       m.ClaimerID,
			ClaimerNickname: names[m.ClaimerID],
			AmountInCents:   m.AmountInCents,
			CreatedAt:       m.CreatedAt,
		})
	}
	return out, nil
}

func (r *ClaimRepository) nicknames(db *gorm.DB, claims []model.Claim) (map[uint64]string, error) {
	names := make(map[uint64]string)
	if len(claims) == 0 {
		return names, nil
	}

	ids := make([]uint64, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.ClaimerID)
	}

	var users []model.User
	if err := db.Select("id", "nickname").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, r.dbError("loading claimer nicknames", err, nil)
	}
	for _, u := range users {
		names[u.ID] = u.Nickname
	}
	return names, nil
}

// SumByEnvelope totals what has been paid out of an envelope
func (r *ClaimRepository) SumByEnvelope(ctx context.Context, envelopeID uint64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Claim{}).
		Select("COALESCE(SUM(amount_in_cents), 0)").
		Where("envelope_id = ?", envelopeID).
		Scan(&total).Error
	if err != nil {
		return 0, r.dbError("summing claims", err, map[string]any{"envelope_id": envelopeID})
	}
	return total, nil
}
