package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      coreport.Logger
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(userUseCase usecase.UserUseCase, logger coreport.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// Login handles POST /users. The first login of a nickname registers it.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerr.ErrInvalidRequest, "Nickname and password are required")
		return
	}

	result, err := h.userUseCase.Login(c.Request.Context(), req.Nickname, req.Password)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"nickname": req.Nickname})
		return
	}

	resp := dto.LoginResponse{
		ID:       result.User.ID,
		Nickname: result.User.Nickname,
		Balance:  dto.NewMoney(result.User.Balance()),
		Created:  result.Created,
		Token:    result.Token,
	}
	if !result.ExpiresAt.IsZero() {
		resp.ExpiresAt = &result.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}

// GetWallet handles GET /users/:id/wallet
func (h *UserHandler) GetWallet(c *gin.Context) {
	userID, ok := pathID(c, "id", domainerr.ErrInvalidUserID)
	if !ok {
		return
	}

	wallet, err := h.userUseCase.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, dto.WalletResponse{
		UserID:  wallet.UserID,
		Balance: dto.NewMoney(wallet.Balance),
	})
}

// Recharge handles POST /users/:id/recharge
func (h *UserHandler) Recharge(c *gin.Context) {
	userID, ok := pathID(c, "id", domainerr.ErrInvalidUserID)
	if !ok || !actingAs(c, userID) {
		return
	}

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerr.ErrInvalidAmount, "Invalid amount")
		return
	}

	cents, err := req.Amount.Cents()
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	result, err := h.userUseCase.Recharge(c.Request.Context(), userID, cents)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, dto.RechargeResponse{
		Success:     true,
		Transaction: dto.NewTransactionDTO(result.Transaction),
		Balance:     dto.NewMoney(result.Balance),
	})
}

// ListTransactions handles GET /users/:id/transactions
func (h *UserHandler) ListTransactions(c *gin.Context) {
	userID, ok := pathID(c, "id", domainerr.ErrInvalidUserID)
	if !ok {
		return
	}

	txs, err := h.userUseCase.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	out := make([]dto.TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dto.NewTransactionDTO(tx))
	}
	c.JSON(http.StatusOK, out)
}
