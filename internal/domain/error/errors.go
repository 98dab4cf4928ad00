package error

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientBalance  = 4001
	CodeInvalidAmount        = 4002
	CodeInvalidUserID        = 4003
	CodeInvalidShareCount    = 4004
	CodeAmountBelowMinimum   = 4005
	CodeInvalidNickname      = 4006
	CodeInvalidPassword      = 4007
	CodeMissingAnswer        = 4008
	CodeWrongAnswer          = 4009
	CodeSelfClaim            = 4010
	CodeAlreadyClaimed       = 4011
	CodeEnvelopeFullyClaimed = 4012
	CodeEnvelopeExpired      = 4013
	CodeInvalidEnvelopeID    = 4014
	CodeInvalidRequest       = 4015
	CodeInvalidCipher        = 4016
	CodeUserNotFound         = 4040
	CodeEnvelopeNotFound     = 4041
	CodeBookNotFound         = 4042
	CodeConcurrentUpdate     = 4090
	CodeDuplicateTransaction = 4091
	CodeInvalidCredentials   = 4101
	CodeUnauthorized         = 4102
	CodeForbidden            = 4103

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5001
	CodeEmptyCorpus        = 5002
)

// Base error types
var (
	// ErrInsufficientBalance is returned when a user cannot cover a debit
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when an amount is missing, non-positive or has more than two decimals
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAmount is returned when an amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAmountOverflow is returned when an amount does not fit into int64 cents
	ErrAmountOverflow = errors.New("amount is too large")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrInvalidEnvelopeID is returned when the envelope ID is not a positive integer
	ErrInvalidEnvelopeID = errors.New("envelope ID must be positive")

	// ErrInvalidShareCount is returned when the share count is outside [1, MaxShares]
	ErrInvalidShareCount = errors.New("share count out of range")

	// ErrAmountBelowMinimum is returned when the pot cannot give every share at least one cent
	ErrAmountBelowMinimum = errors.New("amount too small for the number of shares")

	// ErrInvalidNickname is returned when the nickname is empty or too long
	ErrInvalidNickname = errors.New("invalid nickname")

	// ErrInvalidPassword is returned when the password is empty or too long
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCredentials is returned when a login password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when a session token is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a session token belongs to another user
	ErrForbidden = errors.New("forbidden")

	// ErrMissingAnswer is returned when a claim carries no answer
	ErrMissingAnswer = errors.New("answer is required")

	// ErrWrongAnswer is returned when the submitted answer does not match the password
	ErrWrongAnswer = errors.New("wrong answer")

	// ErrSelfClaim is returned when the sender tries to claim their own envelope
	ErrSelfClaim = errors.New("cannot claim your own envelope")

	// ErrAlreadyClaimed is returned when the user already holds a share of the envelope
	ErrAlreadyClaimed = errors.New("envelope already claimed by this user")

	// ErrEnvelopeFullyClaimed is returned when no shares are left
	ErrEnvelopeFullyClaimed = errors.New("envelope fully claimed")

	// ErrEnvelopeExpired is returned when the envelope is past its expiry
	ErrEnvelopeExpired = errors.New("envelope expired")

	// ErrEnvelopeNotFound is returned when the requested envelope doesn't exist
	ErrEnvelopeNotFound = errors.New("envelope not found")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrBookNotFound is returned when the corpus has no book with the given name
	ErrBookNotFound = errors.New("book not found")

	// ErrEmptyCorpus is returned when the excerpt corpus holds no usable passage
	ErrEmptyCorpus = errors.New("excerpt corpus is empty")

	// ErrInvalidCipher is returned when a cipher string cannot be decoded
	ErrInvalidCipher = errors.New("invalid cipher")

	// ErrConcurrentUpdate is returned when a guarded update lost a race
	ErrConcurrentUpdate = errors.New("concurrent update detected")

	// ErrDuplicateTransaction is returned when a ledger reference was already recorded
	ErrDuplicateTransaction = errors.New("transaction with this reference already exists")

	// ErrDuplicateUser is returned when trying to create a user that already exists
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount), errors.Is(err, ErrAmountOverflow):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrInvalidEnvelopeID):
		return CodeInvalidEnvelopeID
	case errors.Is(err, ErrInvalidShareCount):
		return CodeInvalidShareCount
	case errors.Is(err, ErrAmountBelowMinimum):
		return CodeAmountBelowMinimum
	case errors.Is(err, ErrInvalidNickname):
		return CodeInvalidNickname
	case errors.Is(err, ErrInvalidPassword):
		return CodeInvalidPassword
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrMissingAnswer):
		return CodeMissingAnswer
	case errors.Is(err, ErrWrongAnswer):
		return CodeWrongAnswer
	case errors.Is(err, ErrSelfClaim):
		return CodeSelfClaim
	case errors.Is(err, ErrAlreadyClaimed):
		return CodeAlreadyClaimed
	case errors.Is(err, ErrEnvelopeFullyClaimed):
		return CodeEnvelopeFullyClaimed
	case errors.Is(err, ErrEnvelopeExpired):
		return CodeEnvelopeExpired
	case errors.Is(err, ErrEnvelopeNotFound):
		return CodeEnvelopeNotFound
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrBookNotFound):
		return CodeBookNotFound
	case errors.Is(err, ErrInvalidCipher):
		return CodeInvalidCipher
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrConcurrentUpdate):
		return CodeConcurrentUpdate
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrEmptyCorpus):
		return CodeEmptyCorpus
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// HTTPStatus maps a domain error onto the HTTP status reported to clients
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConcurrentUpdate):
		return http.StatusConflict
	case IsValidationError(err), IsClaimRejection(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// BalanceError represents an error related to balance operations
type BalanceError struct {
	UserID         uint64
	Amount         string
	CurrentBalance string
	Err            error
}

// Error implements the error interface for BalanceError
func (e *BalanceError) Error() string {
	return fmt.Sprintf("balance operation failed for user %d (current balance: %s, amount: %s): %v",
		e.UserID, e.CurrentBalance, e.Amount, e.Err)
}

// Unwrap returns the underlying error
func (e *BalanceError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *BalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "balance_error",
		"user_id":         e.UserID,
		"amount":          e.Amount,
		"current_balance": e.CurrentBalance,
		"error":           e.Err.Error(),
		"error_code":      ErrorCode(e.Err),
	}
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	UserID      uint64
	Amount      string
	CurrBalance string
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %d: required %s, available %s",
		e.UserID, e.Amount, e.CurrBalance)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_balance",
		"user_id":         e.UserID,
		"amount":          e.Amount,
		"current_balance": e.CurrBalance,
		"error_code":      CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID uint64, amount, currentBalance string) error {
	return &InsufficientBalanceError{
		UserID:      userID,
		Amount:      amount,
		CurrBalance: currentBalance,
	}
}

// ClaimError describes a rejected claim attempt
type ClaimError struct {
	EnvelopeID uint64
	UserID     uint64
	Reason     string
	Err        error
}

// Error implements the error interface for ClaimError
func (e *ClaimError) Error() string {
	return fmt.Sprintf("claim rejected for envelope %d (user: %d): %s - %v",
		e.EnvelopeID, e.UserID, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *ClaimError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ClaimError) LogFields() map[string]any {
	return map[string]any{
		"error_type":  "claim_error",
		"envelope_id": e.EnvelopeID,
		"user_id":     e.UserID,
		"reason":      e.Reason,
		"error":       e.Err.Error(),
		"error_code":  ErrorCode(e.Err),
	}
}

// NewClaimError creates a detailed claim error
func NewClaimError(envelopeID, userID uint64, reason string, err error) error {
	return &ClaimError{
		EnvelopeID: envelopeID,
		UserID:     userID,
		Reason:     reason,
		Err:        err,
	}
}

// IsNotFound reports whether err denotes a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEnvelopeNotFound) ||
		errors.Is(err, ErrBookNotFound)
}

// IsValidationError reports whether err is a caller input problem
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrAmountOverflow) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidEnvelopeID) ||
		errors.Is(err, ErrInvalidShareCount) ||
		errors.Is(err, ErrAmountBelowMinimum) ||
		errors.Is(err, ErrInvalidNickname) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrInvalidCipher) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrMissingAnswer) ||
		errors.Is(err, ErrInsufficientBalance)
}

// IsClaimRejection reports whether err is one of the claim-time business rejections
func IsClaimRejection(err error) bool {
	return errors.Is(err, ErrWrongAnswer) ||
		errors.Is(err, ErrSelfClaim) ||
		errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrEnvelopeFullyClaimed) ||
		errors.Is(err, ErrEnvelopeExpired)
}

// IsInsufficientBalance checks if the error is an insufficient balance error
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}
