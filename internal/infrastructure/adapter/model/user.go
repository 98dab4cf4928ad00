package model

import (
	"time"
)

// User represents the database model for users
type User struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	Nickname         string    `gorm:"uniqueIndex:idx_users_nickname;not null;size:64"`
	Credential       string    `gorm:"not null;size:255"`
	Balance          int64     `gorm:"not null;default:0"` // Balance in cents
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	TransactionCount uint64    `gorm:"not null;default:0"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
