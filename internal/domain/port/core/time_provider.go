package core

import "time"

// Duration is the elapsed-time type handed back by a TimeProvider
type Duration time.Duration

// Std converts to time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TimeProvider is the clock seen by entities, use cases and adapters.
// Expiry checks, ledger timestamps and token lifetimes all read it.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) Duration
}
