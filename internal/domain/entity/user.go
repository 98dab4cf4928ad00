package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// Nickname and credential limits
const (
	MaxNicknameLength = 32
	MaxPasswordLength = 72
)

// User represents a player holding a wallet balance
type User struct {
	ID               uint64    // Unique identifier for the user
	Nickname         string    // Unique display name, also the login name
	Credential       string    // Stored credential, plaintext or hash depending on the verifier
	balance          int64     // Balance stored in cents to avoid floating point precision issues (private)
	CreatedAt        time.Time // When the user was created
	UpdatedAt        time.Time // When the user was last updated
	TransactionCount uint64    // Count of ledger entries recorded for this user
}

// NewUser creates a user with a zero balance; the starting grant is recorded
// separately through the ledger so it leaves a transaction behind.
func NewUser(nickname, credential string, timeProvider coreport.TimeProvider) (*User, error) {
	nickname, err := NormalizeNickname(nickname)
	if err != nil {
		return nil, err
	}

	if credential == "" {
		return nil, errs.ErrInvalidPassword
	}

	now := timeProvider.Now()
	return &User{
		Nickname:   nickname,
		Credential: credential,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// NormalizeNickname trims and validates a nickname
func NormalizeNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return "", errs.ErrInvalidNickname
	}
	return nickname, nil
}

// ValidatePassword checks the raw password submitted at login
func ValidatePassword(password string) error {
	if password == "" || len(password) > MaxPasswordLength {
		return errs.ErrInvalidPassword
	}
	return nil
}

// Balance returns the current balance in cents (for internal use)
func (u *User) Balance() int64 {
	return u.balance
}

// GetBalance returns the balance as a string with 2 decimal places
func (u *User) GetBalance() string {
	return AmountInCentsToString(u.balance)
}

// SetBalance updates the balance directly (for internal use, like repositories)
func (u *User) SetBalance(balanceInCents int64, timeProvider coreport.TimeProvider) {
	u.balance = balanceInCents
	u.UpdatedAt = timeProvider.Now()
}

// CanDeduct reports whether the balance covers the given amount
func (u *User) CanDeduct(amountInCents int64) bool {
	return u.balance >= amountInCents
}
