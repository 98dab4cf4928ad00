package security

import (
	"context"
	"time"
)

// CredentialVerifier turns passwords into stored credentials and checks them
type CredentialVerifier interface {
	// Hash produces the value stored for a new user
	Hash(password string) (string, error)
	// Verify reports whether password matches the stored credential
	Verify(stored, password string) bool
}

// TokenIssuer issues and checks session tokens
type TokenIssuer interface {
	Issue(userID uint64, nickname string) (token string, expiresAt time.Time, err error)
	Parse(token string) (userID uint64, err error)
}

type principalKey struct{}

// WithPrincipal stores the authenticated user ID in ctx
func WithPrincipal(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// PrincipalFrom returns the authenticated user ID, if any
func PrincipalFrom(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(principalKey{}).(uint64)
	return id, ok && id != 0
}
