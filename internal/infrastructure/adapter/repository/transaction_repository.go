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

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *TransactionRepository) entityToModel(tx *entity.Transaction) model.Transaction {
	return model.Transaction{
		UserID:        tx.UserID,
		Reference:     tx.Reference,
		Kind:          string(tx.Kind),
		AmountInCents: tx.AmountInCents,
		BalanceAfter:  tx.BalanceAfter,
		EnvelopeID:    tx.EnvelopeID,
		CreatedAt:     tx.CreatedAt,
	}
}

func modelToTransaction(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		UserID:        m.UserID,
		Reference:     m.Reference,
		Kind:          entity.TransactionKind(m.Kind),
		AmountInCents: m.AmountInCents,
		BalanceAfter:  m.BalanceAfter,
		EnvelopeID:    m.EnvelopeID,
		CreatedAt:     m.CreatedAt,
	}
}

// Create saves a new ledger entry
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	txModel := r.entityToModel(tx)

	if err := r.db.WithContext(ctx).Create(&txModel).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"reference": tx.Reference,
				"user_id":   tx.UserID,
			})
			return errs.ErrDuplicateTransaction
		}

		r.logger.Error("Failed to create transaction", coreport.ErrorFields(err, map[string]any{
			"reference": tx.Reference,
			"user_id":   tx.UserID,
		}))
		if r.errorClassifier.IsLockError(err) {
			return fmt.Errorf("%w: %s", errs.ErrConcurrentUpdate, err.Error())
		}
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	tx.ID = txModel.ID
	r.logger.Debug("Transaction created", map[string]any{
		"transaction_id": tx.ID,
		"reference":      tx.Reference,
		"kind":           tx.Kind,
		"user_id":        tx.UserID,
	})
	return nil
}

// ExistsByReference checks if an entry with the given reference exists
func (r *TransactionRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("reference = ?", reference).
		Count(&count).Error
	if err != nil {
		r.logger.Error("Failed to check transaction reference", coreport.ErrorFields(err, map[string]any{
			"reference": reference,
		}))
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
	return count > 0, nil
}

// ListByUser returns the newest entries first with their envelope summaries
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error) {
	db := r.db.WithContext(ctx)

	var models []model.Transaction
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		r.logger.Error("Failed to list transactions", coreport.ErrorFields(err, map[string]any{"user_id": userID}))
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	envelopeIDs := make([]uint64, 0, len(models))
	seen := make(map[uint64]bool)
	for _, m := range models {
		if m.EnvelopeID != nil && !seen[*m.EnvelopeID] {
			seen[*m.EnvelopeID] = true
			envelopeIDs = append(envelopeIDs, *m.EnvelopeID)
		}
	}

	summaries := make(map[uint64]*entity.EnvelopeSummary, len(envelopeIDs))
	if len(envelopeIDs) > 0 {
		var envelopes []model.Envelope
		err := db.Select("id", "sender_id", "book_name", "amount_in_cents", "status").
			Where("id IN ?", envelopeIDs).
			Find(&envelopes).Error
		if err != nil {
			r.logger.Error("Failed to load envelope summaries", coreport.ErrorFields(err, map[string]any{"user_id": userID}))
			return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
		}
		for _, e := range envelopes {
			summaries[e.ID] = &entity.EnvelopeSummary{
				ID:            e.ID,
				SenderID:      e.SenderID,
				BookName:      e.BookName,
				AmountInCents: e.AmountInCents,
				Status:        entity.EnvelopeStatus(e.Status),
			}
		}
	}

	out := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		tx := modelToTransaction(&models[i])
		if tx.EnvelopeID != nil {
			tx.Envelope = summaries[*tx.EnvelopeID]
		}
		out = append(out, tx)
	}
	return out, nil
}
