// Package security provides credential verifiers and the session token issuer.
package security

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
)

// Credential modes accepted in configuration
const (
	ModePlaintext = "plaintext"
	ModeBcrypt    = "bcrypt"
)

// PlaintextVerifier stores passwords as given and compares them exactly
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptVerifier stores bcrypt hashes
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (v BcryptVerifier) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewVerifier returns the verifier for a configured mode
func NewVerifier(mode string, cost int) (sport.CredentialVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModePlaintext:
		return PlaintextVerifier{}, nil
	case ModeBcrypt:
		return BcryptVerifier{Cost: cost}, nil
	default:
		return nil, fmt.Errorf("unknown credential mode %q", mode)
	}
}
