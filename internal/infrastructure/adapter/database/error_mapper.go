package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainErr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/repository"
)

// ErrorMapper maps raw driver errors to domain errors and decides which
// ones are worth retrying
type ErrorMapper struct {
	classifier *repository.ErrorClassifier
}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{classifier: repository.NewErrorClassifier()}
}

// Kind returns the classifier category of err, for logging
func (m *ErrorMapper) Kind(err error) string {
	return string(m.classifier.Classify(err))
}

// MapError maps a database error that escaped the repositories to a domain error
func (m *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}

	switch m.classifier.Classify(err) {
	case repository.LockError:
		return errors.Join(domainErr.ErrConcurrentUpdate, err)
	case repository.ConstraintError, repository.DuplicateKeyError:
		return errors.Join(domainErr.ErrConstraintViolation, err)
	case repository.ConnectionError, repository.TransientError:
		return errors.Join(domainErr.ErrDatabaseConnection, err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(domainErr.ErrInternalServer, err)
	}
	return err
}

// IsRetryable reports whether an operation that failed with err may succeed
// on a second attempt. Lost compare-and-swap races count, validation and
// business rejections never do.
func (m *ErrorMapper) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domainErr.ErrConcurrentUpdate) {
		return true
	}
	return m.classifier.IsTransientError(err)
}
