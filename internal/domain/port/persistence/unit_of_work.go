package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// InTransaction reports whether ctx already carries a transaction
	InTransaction(ctx context.Context) bool

	// GetUserRepository returns a user repository bound to the current transaction
	GetUserRepository(ctx context.Context) UserRepository

	// GetTransactionRepository returns a transaction repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetEnvelopeRepository returns an envelope repository bound to the current transaction
	GetEnvelopeRepository(ctx context.Context) EnvelopeRepository

	// GetClaimRepository returns a claim repository bound to the current transaction
	GetClaimRepository(ctx context.Context) ClaimRepository
}

// WithinTransaction runs fn inside a transaction. When ctx already carries
// one, fn joins it and the outer caller decides commit or rollback.
func WithinTransaction(ctx context.Context, uow UnitOfWork, fn func(ctx context.Context) error) (err error) {
	if uow.InTransaction(ctx) {
		return fn(ctx)
	}

	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(txCtx)
			panic(r)
		}
	}()

	if err = fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
