package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	tport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// TransactionKind classifies a ledger entry
type TransactionKind string

// Transaction kinds
const (
	KindRecharge TransactionKind = "recharge"
	KindSend     TransactionKind = "send"
	KindReceive  TransactionKind = "receive"
)

// IsValid reports whether k is a known kind
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindRecharge, KindSend, KindReceive:
		return true
	default:
		return false
	}
}

// Transaction is one ledger entry against a user's wallet
type Transaction struct {
	ID            uint64          // Unique identifier for the entry
	UserID        uint64          // Wallet owner
	Reference     string          // Unique reference; replays with the same value are rejected
	Kind          TransactionKind // recharge, send or receive
	AmountInCents int64           // Signed change applied to the balance
	BalanceAfter  int64           // Balance right after this entry was applied
	EnvelopeID    *uint64         // Related envelope, if any
	CreatedAt     time.Time       // When the entry was recorded

	// Envelope is filled in by listings that join the related envelope
	Envelope *EnvelopeSummary
}

// EnvelopeSummary is the slice of an envelope shown next to a ledger entry
type EnvelopeSummary struct {
	ID            uint64
	SenderID      uint64
	BookName      string
	AmountInCents int64
	Status        EnvelopeStatus
}

// NewTransaction builds a ledger entry. amountInCents is the signed balance change:
// send entries are negative, recharge and receive entries are positive.
func NewTransaction(
	userID uint64,
	reference string,
	kind TransactionKind,
	amountInCents int64,
	envelopeID *uint64,
	timeProvider tport.TimeProvider,
) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	if reference == "" {
		return nil, fmt.Errorf("%w: empty transaction reference", errs.ErrInvalidRequest)
	}

	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", errs.ErrInvalidRequest, kind)
	}

	switch {
	case amountInCents == 0:
		return nil, fmt.Errorf("%w: zero amount", errs.ErrInvalidAmount)
	case kind == KindSend && amountInCents > 0:
		return nil, fmt.Errorf("%w: send entries must debit", errs.ErrInvalidAmount)
	case kind != KindSend && amountInCents < 0:
		return nil, fmt.Errorf("%w: %s entries must credit", errs.ErrInvalidAmount, kind)
	}

	return &Transaction{
		UserID:        userID,
		Reference:     reference,
		Kind:          kind,
		AmountInCents: amountInCents,
		EnvelopeID:    envelopeID,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// IsCredit returns true if this entry increases the balance
func (t *Transaction) IsCredit() bool {
	return t.AmountInCents > 0
}

// IsDebit returns true if this entry decreases the balance
func (t *Transaction) IsDebit() bool {
	return t.AmountInCents < 0
}

// Amount returns the signed amount with two decimals
func (t *Transaction) Amount() string {
	return AmountInCentsToString(t.AmountInCents)
}
