package model

import (
	"time"
)

// Envelope represents the database model for envelopes
type Envelope struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID      uint64    `gorm:"not null;index"`
	AmountInCents int64     `gorm:"not null"`
	TotalCount    int       `gorm:"not null"`
	ClaimedCount  int       `gorm:"not null;default:0"`
	BookName      string    `gorm:"not null;size:64"`
	Excerpt       string    `gorm:"type:text;not null"`
	Answer        string    `gorm:"not null;size:64"`
	Cipher        string    `gorm:"type:text;not null"`
	Status        string    `gorm:"not null;size:16;index:idx_envelopes_status_expires,priority:1"`
	CreatedAt     time.Time `gorm:"not null;index"`
	ExpiresAt     time.Time `gorm:"not null;index:idx_envelopes_status_expires,priority:2"`
	RefundedAt    *time.Time
}

// TableName specifies the table name for Envelope
func (Envelope) TableName() string {
	return "envelopes"
}

// Claim represents the database model for a redeemed share
type Claim struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	EnvelopeID    uint64    `gorm:"not null;uniqueIndex:idx_claims_envelope_claimer,priority:1"`
	ClaimerID     uint64    `gorm:"not null;uniqueIndex:idx_claims_envelope_claimer,priority:2;index"`
	AmountInCents int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Claim
func (Claim) TableName() string {
	return "claims"
}
