package persistence

import "context"

// Retrier re-runs an operation that failed on a transient storage conflict,
// such as a serialization failure or a lost compare-and-swap
type Retrier interface {
	Do(ctx context.Context, op func(ctx context.Context) error) error
}

// NoRetry runs the operation once
type NoRetry struct{}

// Do implements Retrier
func (NoRetry) Do(ctx context.Context, op func(ctx context.Context) error) error {
	return op(ctx)
}
