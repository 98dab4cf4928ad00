package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
)

// EnvelopeHandler serves the envelope game
type EnvelopeHandler struct {
	envelopes usecase.EnvelopeUseCase
	logger    coreport.Logger
}

// NewEnvelopeHandler creates a new envelope handler instance
func NewEnvelopeHandler(envelopes usecase.EnvelopeUseCase, logger coreport.Logger) *EnvelopeHandler {
	return &EnvelopeHandler{envelopes: envelopes, logger: logger}
}

// Create handles POST /envelopes
func (h *EnvelopeHandler) Create(c *gin.Context) {
	var req dto.CreateEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerr.ErrInvalidRequest, "Malformed envelope request")
		return
	}
	if req.SenderID == 0 {
		badRequest(c, domainerr.ErrInvalidUserID, "senderId is required")
		return
	}
	if !actingAs(c, req.SenderID) {
		return
	}

	cents, err := req.Amount.Cents()
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	count := entity.DefaultShares
	if req.Count != nil {
		count = *req.Count
	}

	created, err := h.envelopes.Create(c.Request.Context(), usecase.CreateEnvelopeRequest{
		SenderID:      req.SenderID,
		AmountInCents: cents,
		Count:         count,
		BookName:      req.BookName,
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"sender_id": req.SenderID})
		return
	}

	c.JSON(http.StatusOK, dto.NewCreateEnvelopeResponse(created))
}

// Get handles GET /envelopes/:id
func (h *EnvelopeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", domainerr.ErrInvalidEnvelopeID)
	if !ok {
		return
	}

	view, err := h.envelopes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"envelope_id": id})
		return
	}

	c.JSON(http.StatusOK, dto.NewEnvelopeResponse(view))
}

// Claim handles POST /envelopes/:id/claim
func (h *EnvelopeHandler) Claim(c *gin.Context) {
	id, ok := pathID(c, "id", domainerr.ErrInvalidEnvelopeID)
	if !ok {
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerr.ErrInvalidRequest, "Malformed claim request")
		return
	}
	if req.UserID == 0 {
		badRequest(c, domainerr.ErrInvalidUserID, "userId is required")
		return
	}
	if !actingAs(c, req.UserID) {
		return
	}

	result, err := h.envelopes.Claim(c.Request.Context(), usecase.ClaimRequest{
		EnvelopeID: id,
		UserID:     req.UserID,
		Answer:     req.Answer,
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"envelope_id": id, "user_id": req.UserID})
		return
	}

	amount := dto.NewMoney(result.Claim.AmountInCents)
	c.JSON(http.StatusOK, dto.ClaimResponse{
		Success:      true,
		Amount:       amount,
		BookName:     result.Envelope.BookName,
		Balance:      dto.NewMoney(result.Balance),
		TotalCount:   result.Envelope.TotalCount,
		ClaimedCount: result.Envelope.ClaimedCount,
		Message:      fmt.Sprintf("恭喜！成功领取 ¥%s 红包", amount.StringFixed(entity.MaxDecimalPlaces)),
	})
}

// List handles GET /envelopes
func (h *EnvelopeHandler) List(c *gin.Context) {
	envelopes, err := h.envelopes.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.NewEnvelopeList(envelopes))
}
