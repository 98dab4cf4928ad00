package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/model"
)

// getOperationType returns "credit" for positive or zero changes and "debit" for negative changes
func getOperationType(balanceChange int64) string {
	if balanceChange >= 0 {
		return "credit"
	}
	return "debit"
}

// UserRepository implements UserRepository interface using GORM
type UserRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *UserRepository) modelToEntity(m *model.User) *entity.User {
	user := &entity.User{
		ID:               m.ID,
		Nickname:         m.Nickname,
		Credential:       m.Credential,
		CreatedAt:        m.CreatedAt,
		TransactionCount: m.TransactionCount,
	}
	user.SetBalance(m.Balance, r.timeProvider)
	user.UpdatedAt = m.UpdatedAt
	return user
}

// handleDatabaseError standardizes database error handling
func (r *UserRepository) handleDatabaseError(operation string, err error, fields map[string]any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Debug("User not found", fields)
		return errs.ErrUserNotFound
	}

	if r.errorClassifier.IsDuplicateKeyError(err) {
		r.logger.Warn("Duplicate user", fields)
		return errs.ErrDuplicateUser
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), coreport.ErrorFields(err, fields))

	if r.errorClassifier.IsLockError(err) {
		return fmt.Errorf("%w: %s", errs.ErrConcurrentUpdate, err.Error())
	}
	if r.errorClassifier.IsConstraintError(err) {
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, err.Error())
	}
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting user", err, map[string]any{"user_id": id})
	}
	return r.modelToEntity(&userModel), nil
}

// GetByIDs loads several users keyed by ID
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*entity.User, error) {
	out := make(map[uint64]*entity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, r.handleDatabaseError("listing users", err, map[string]any{"user_ids": ids})
	}

	for i := range models {
		out[models[i].ID] = r.modelToEntity(&models[i])
	}
	return out, nil
}

// GetByNickname retrieves a user by login name
func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	var userModel model.User
	err := r.db.WithContext(ctx).Where("nickname = ?", nickname).First(&userModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("getting user by nickname", err, map[string]any{"nickname": nickname})
	}
	return r.modelToEntity(&userModel), nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := model.User{
		Nickname:         user.Nickname,
		Credential:       user.Credential,
		Balance:          user.Balance(),
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
		TransactionCount: user.TransactionCount,
	}

	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		return r.handleDatabaseError("creating user", err, map[string]any{"nickname": user.Nickname})
	}

	user.ID = userModel.ID
	r.logger.Info("User created successfully", map[string]any{
		"user_id":  user.ID,
		"nickname": user.Nickname,
	})
	return nil
}

// ApplyBalanceChange adds delta to the balance with a single conditional
// UPDATE. The WHERE clause keeps the balance non-negative, so concurrent
// debits cannot overdraw the wallet.
func (r *UserRepository) ApplyBalanceChange(ctx context.Context, userID uint64, delta int64) (*entity.User, error) {
	fields := map[string]any{
		"user_id":        userID,
		"balance_change": entity.AmountInCentsToString(delta),
		"operation_type": getOperationType(delta),
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&model.User{}).
		Where("id = ? AND balance + ? >= 0", userID, delta).
		Updates(map[string]any{
			"balance":           gorm.Expr("balance + ?", delta),
			"transaction_count": gorm.Expr("transaction_count + 1"),
			"updated_at":        r.timeProvider.Now(),
		})
	if result.Error != nil {
		return nil, r.handleDatabaseError("applying balance change", result.Error, fields)
	}

	if result.RowsAffected == 0 {
		// Either the user is missing or the debit is not covered
		current, err := r.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.logger.Warn("Insufficient balance for debit", fields)
		return nil, errs.NewInsufficientBalanceError(userID, entity.AmountInCentsToString(-delta), current.GetBalance())
	}

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Balance updated", map[string]any{
		"user_id":     userID,
		"new_balance": user.GetBalance(),
		"tx_count":    user.TransactionCount,
	})
	return user, nil
}
