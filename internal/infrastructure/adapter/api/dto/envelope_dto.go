package dto

import (
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// HiddenAmount stands in for the total of an envelope that is still in play
const HiddenAmount = "???"

// CreateEnvelopeRequest is the body of POST /envelopes
type CreateEnvelopeRequest struct {
	SenderID uint64 `json:"senderId"`
	Amount   Money  `json:"amount"`
	Count    *int   `json:"count"`
	BookName string `json:"bookName"`
}

// CreateEnvelopeResponse is shown to the sender only; it carries the answer
type CreateEnvelopeResponse struct {
	ID            uint64          `json:"id"`
	Amount        Money           `json:"amount"`
	TotalCount    int             `json:"totalCount"`
	BookName      string          `json:"bookName"`
	BookExcerpt   string          `json:"bookExcerpt"`
	Answer        string          `json:"answer"`
	AnswerPinyin  []string        `json:"answerPinyin"`
	MorseCode     string          `json:"morseCode"`
	MorseTimeline cipher.Timeline `json:"morseTimeline"`
	Balance       Money           `json:"balance"`
	ExpiresAt     time.Time       `json:"expiresAt"`
}

// NewCreateEnvelopeResponse converts a freshly created envelope
func NewCreateEnvelopeResponse(created *usecase.CreatedEnvelope) CreateEnvelopeResponse {
	env := created.Envelope
	pinyin := created.Phonetic
	if pinyin == nil {
		pinyin = []string{}
	}
	return CreateEnvelopeResponse{
		ID:            env.ID,
		Amount:        NewMoney(env.AmountInCents),
		TotalCount:    env.TotalCount,
		BookName:      env.BookName,
		BookExcerpt:   env.Excerpt,
		Answer:        env.Answer,
		AnswerPinyin:  pinyin,
		MorseCode:     env.Cipher,
		MorseTimeline: created.Timeline,
		Balance:       NewMoney(created.Balance),
		ExpiresAt:     env.ExpiresAt,
	}
}

// UserRef names a user inside another resource
type UserRef struct {
	ID       uint64 `json:"id"`
	Nickname string `json:"nickname"`
}

// ClaimDTO is one redeemed share
type ClaimDTO struct {
	ID        uint64    `json:"id"`
	Claimer   UserRef   `json:"claimer"`
	Amount    Money     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

func newClaimDTOs(claims []*entity.Claim) []ClaimDTO {
	out := make([]ClaimDTO, 0, len(claims))
	for _, c := range claims {
		out = append(out, ClaimDTO{
			ID:        c.ID,
			Claimer:   UserRef{ID: c.ClaimerID, Nickname: c.ClaimerNickname},
			Amount:    NewMoney(c.AmountInCents),
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

// EnvelopeResponse is the public view of one envelope. The answer is never included.
type EnvelopeResponse struct {
	ID            uint64          `json:"id"`
	Sender        UserRef         `json:"sender"`
	Amount        *Money          `json:"amount,omitempty"`
	TotalCount    int             `json:"totalCount"`
	ClaimedCount  int             `json:"claimedCount"`
	BookName      string          `json:"bookName"`
	BookExcerpt   string          `json:"bookExcerpt"`
	MorseCode     string          `json:"morseCode"`
	MorseTimeline cipher.Timeline `json:"morseTimeline"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	Claims        []ClaimDTO      `json:"claims"`
}

// NewEnvelopeResponse converts a view, exposing the amount once it is settled
func NewEnvelopeResponse(view *usecase.EnvelopeView) EnvelopeResponse {
	env := view.Envelope
	out := EnvelopeResponse{
		ID:            env.ID,
		Sender:        UserRef{ID: env.SenderID, Nickname: env.SenderNickname},
		TotalCount:    env.TotalCount,
		ClaimedCount:  env.ClaimedCount,
		BookName:      env.BookName,
		BookExcerpt:   env.Excerpt,
		MorseCode:     env.Cipher,
		MorseTimeline: view.Timeline,
		Status:        string(env.Status),
		CreatedAt:     env.CreatedAt,
		ExpiresAt:     env.ExpiresAt,
		Claims:        newClaimDTOs(env.Claims),
	}
	if env.IsAmountVisible() {
		amount := NewMoney(env.AmountInCents)
		out.Amount = &amount
	}
	return out
}

// EnvelopeListItem is one row of GET /envelopes. Amount is a number once the
// envelope is fully claimed and HiddenAmount otherwise.
type EnvelopeListItem struct {
	ID           uint64     `json:"id"`
	Sender       UserRef    `json:"sender"`
	BookName     string     `json:"bookName"`
	Status       string     `json:"status"`
	Amount       any        `json:"amount"`
	TotalCount   int        `json:"totalCount"`
	ClaimedCount int        `json:"claimedCount"`
	Claims       []ClaimDTO `json:"claims"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
}

// NewEnvelopeList converts the listing
func NewEnvelopeList(envelopes []*entity.Envelope) []EnvelopeListItem {
	out := make([]EnvelopeListItem, 0, len(envelopes))
	for _, env := range envelopes {
		var amount any = HiddenAmount
		if env.Status == entity.EnvelopeClaimed {
			amount = NewMoney(env.AmountInCents)
		}
		out = append(out, EnvelopeListItem{
			ID:           env.ID,
			Sender:       UserRef{ID: env.SenderID, Nickname: env.SenderNickname},
			BookName:     env.BookName,
			Status:       string(env.Status),
			Amount:       amount,
			TotalCount:   env.TotalCount,
			ClaimedCount: env.ClaimedCount,
			Claims:       newClaimDTOs(env.Claims),
			CreatedAt:    env.CreatedAt,
			ExpiresAt:    env.ExpiresAt,
		})
	}
	return out
}

// ClaimRequest is the body of POST /envelopes/:id/claim
type ClaimRequest struct {
	UserID uint64 `json:"userId"`
	Answer string `json:"answer"`
}

// ClaimResponse reports a successful claim
type ClaimResponse struct {
	Success      bool   `json:"success"`
	Amount       Money  `json:"amount"`
	BookName     string `json:"bookName"`
	Balance      Money  `json:"balance"`
	TotalCount   int    `json:"totalCount"`
	ClaimedCount int    `json:"claimedCount"`
	Message      string `json:"message"`
}

// BookDTO is one corpus entry
type BookDTO struct {
	Name         string `json:"name"`
	Author       string `json:"author"`
	ExcerptCount int    `json:"excerptCount"`
}

// DecodeRequest is the body of POST /cipher/decode
type DecodeRequest struct {
	MorseCode string `json:"morseCode" binding:"required"`
}

// DecodeResponse holds the decoded phonetic tokens
type DecodeResponse struct {
	Pinyin   []string        `json:"pinyin"`
	Timeline cipher.Timeline `json:"morseTimeline"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database,omitempty"`
	LatencyMs int64     `json:"latencyMs,omitempty"`
	OpenConns int       `json:"openConnections,omitempty"`
	InUse     int       `json:"inUse,omitempty"`
}
