package dto

import (
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// LoginRequest is the body of POST /users
type LoginRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse identifies the user after login or registration
type LoginResponse struct {
	ID        uint64     `json:"id"`
	Nickname  string     `json:"nickname"`
	Balance   Money      `json:"balance"`
	Created   bool       `json:"created"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// WalletResponse is the body of GET /users/:id/wallet
type WalletResponse struct {
	UserID  uint64 `json:"userId"`
	Balance Money  `json:"balance"`
}

// RechargeRequest is the body of POST /users/:id/recharge
type RechargeRequest struct {
	Amount Money `json:"amount"`
}

// RechargeResponse reports the ledger entry and the new balance
type RechargeResponse struct {
	Success     bool           `json:"success"`
	Transaction TransactionDTO `json:"transaction"`
	Balance     Money          `json:"balance"`
}

// EnvelopeSummaryDTO is the envelope shown next to a ledger entry
type EnvelopeSummaryDTO struct {
	ID       uint64 `json:"id"`
	BookName string `json:"bookName"`
	Amount   Money  `json:"amount"`
}

// TransactionDTO is one ledger entry
type TransactionDTO struct {
	ID           uint64              `json:"id"`
	UserID       uint64              `json:"userId"`
	Type         string              `json:"type"`
	Amount       Money               `json:"amount"`
	BalanceAfter Money               `json:"balanceAfter"`
	Reference    string              `json:"reference"`
	EnvelopeID   *uint64             `json:"envelopeId,omitempty"`
	Envelope     *EnvelopeSummaryDTO `json:"envelope,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// NewTransactionDTO converts a ledger entry
func NewTransactionDTO(tx *entity.Transaction) TransactionDTO {
	out := TransactionDTO{
		ID:           tx.ID,
		UserID:       tx.UserID,
		Type:         string(tx.Kind),
		Amount:       NewMoney(tx.AmountInCents),
		BalanceAfter: NewMoney(tx.BalanceAfter),
		Reference:    tx.Reference,
		EnvelopeID:   tx.EnvelopeID,
		CreatedAt:    tx.CreatedAt,
	}
	if tx.Envelope != nil {
		out.Envelope = &EnvelopeSummaryDTO{
			ID:       tx.Envelope.ID,
			BookName: tx.Envelope.BookName,
			Amount:   NewMoney(tx.Envelope.AmountInCents),
		}
	}
	return out
}
