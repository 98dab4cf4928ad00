package model

import (
	"time"
)

// Transaction represents the database model for wallet ledger entries
type Transaction struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	UserID        uint64    `gorm:"not null;index:idx_transactions_user_created,priority:1"`
	Reference     string    `gorm:"uniqueIndex:idx_transactions_reference;not null;size:128"`
	Kind          string    `gorm:"not null;size:16"`
	AmountInCents int64     `gorm:"not null"` // Signed balance change
	BalanceAfter  int64     `gorm:"not null"`
	EnvelopeID    *uint64   `gorm:"index"`
	CreatedAt     time.Time `gorm:"not null;index:idx_transactions_user_created,priority:2"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
