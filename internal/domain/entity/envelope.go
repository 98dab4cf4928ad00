package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// EnvelopeStatus is the lifecycle state of an envelope
type EnvelopeStatus string

// Envelope states. pending is the only state that accepts claims or expires.
const (
	EnvelopePending EnvelopeStatus = "pending"
	EnvelopeClaimed EnvelopeStatus = "claimed"
	EnvelopeExpired EnvelopeStatus = "expired"
)

// Envelope limits
const (
	MinShares        = 1
	MaxShares        = 100
	DefaultShares    = 1
	EnvelopeLifetime = 24 * time.Hour
)

// Envelope is a funded pool split into shares and locked behind a password
type Envelope struct {
	ID             uint64
	SenderID       uint64
	SenderNickname string
	AmountInCents  int64
	TotalCount     int
	ClaimedCount   int
	BookName       string
	Excerpt        string // full passage shown to claimers
	Answer         string // password extracted from the passage
	Cipher         string // Morse form of the answer's pinyin
	Status         EnvelopeStatus
	CreatedAt      time.Time
	ExpiresAt      time.Time
	RefundedAt     *time.Time

	// Claims is filled in by reads that load the claim list, newest first
	Claims []*Claim
}

// Claim is one user's redeemed share of an envelope
type Claim struct {
	ID              uint64
	EnvelopeID      uint64
	ClaimerID       uint64
	ClaimerNickname string
	AmountInCents   int64
	CreatedAt       time.Time
}

// ValidateEnvelopeRequest checks amount and share count in the order callers see errors:
// positive amount, count range, then one cent per share.
func ValidateEnvelopeRequest(amountInCents int64, count int) error {
	if amountInCents <= 0 {
		return fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}

	if count < MinShares || count > MaxShares {
		return fmt.Errorf("%w: count must be between %d and %d", errs.ErrInvalidShareCount, MinShares, MaxShares)
	}

	minimum := int64(count) * MinShareInCents
	if amountInCents < minimum {
		return fmt.Errorf("%w: %d shares need at least %s",
			errs.ErrAmountBelowMinimum, count, AmountInCentsToString(minimum))
	}

	return nil
}

// NewEnvelope creates a pending envelope that expires after lifetime
func NewEnvelope(
	senderID uint64,
	amountInCents int64,
	count int,
	bookName, excerpt, answer, cipher string,
	lifetime time.Duration,
	timeProvider coreport.TimeProvider,
) (*Envelope, error) {
	if senderID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	if err := ValidateEnvelopeRequest(amountInCents, count); err != nil {
		return nil, err
	}

	if answer == "" {
		return nil, fmt.Errorf("%w: envelope needs a password", errs.ErrInvalidRequest)
	}

	if lifetime <= 0 {
		lifetime = EnvelopeLifetime
	}

	now := timeProvider.Now()
	return &Envelope{
		SenderID:      senderID,
		AmountInCents: amountInCents,
		TotalCount:    count,
		BookName:      bookName,
		Excerpt:       excerpt,
		Answer:        answer,
		Cipher:        cipher,
		Status:        EnvelopePending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(lifetime),
	}, nil
}

// IsPastExpiry reports whether now is strictly after the expiry instant
func (e *Envelope) IsPastExpiry(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// IsExpirable reports whether the envelope should transition to expired at now
func (e *Envelope) IsExpirable(now time.Time) bool {
	return e.Status == EnvelopePending && e.IsPastExpiry(now)
}

// RemainingShares returns how many shares are still unclaimed
func (e *Envelope) RemainingShares() int {
	return e.TotalCount - e.ClaimedCount
}

// IsAmountVisible reports whether the total may be shown to anyone
func (e *Envelope) IsAmountVisible() bool {
	return e.Status == EnvelopeClaimed || e.Status == EnvelopeExpired
}

// MatchesAnswer compares a submitted answer with the password after trimming
// surrounding whitespace. The comparison is byte-exact and case-sensitive.
func (e *Envelope) MatchesAnswer(answer string) bool {
	return strings.TrimSpace(answer) == e.Answer
}

// CheckClaim applies the claim rules in order: fully claimed, expired, own
// envelope, already claimed, wrong answer. No state is touched.
func (e *Envelope) CheckClaim(userID uint64, answer string, hasClaimed bool, now time.Time) error {
	switch {
	case e.Status == EnvelopeClaimed || e.RemainingShares() <= 0:
		return errs.NewClaimError(e.ID, userID, "no shares left", errs.ErrEnvelopeFullyClaimed)
	case e.Status == EnvelopeExpired || e.IsPastExpiry(now):
		return errs.NewClaimError(e.ID, userID, "past expiry", errs.ErrEnvelopeExpired)
	case e.SenderID == userID:
		return errs.NewClaimError(e.ID, userID, "sender cannot claim", errs.ErrSelfClaim)
	case hasClaimed:
		return errs.NewClaimError(e.ID, userID, "duplicate claim", errs.ErrAlreadyClaimed)
	case !e.MatchesAnswer(answer):
		return errs.NewClaimError(e.ID, userID, "answer mismatch", errs.ErrWrongAnswer)
	}
	return nil
}

// ClaimedTotal sums the loaded claims
func (e *Envelope) ClaimedTotal() int64 {
	var total int64
	for _, c := range e.Claims {
		total += c.AmountInCents
	}
	return total
}
