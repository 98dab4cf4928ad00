package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/excerpt"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
)

// CipherHandler exposes the corpus and the Morse decoder
type CipherHandler struct {
	books  excerpt.Provider
	logger coreport.Logger
}

// NewCipherHandler creates a new cipher handler instance
func NewCipherHandler(books excerpt.Provider, logger coreport.Logger) *CipherHandler {
	return &CipherHandler{books: books, logger: logger}
}

// Books handles GET /books
func (h *CipherHandler) Books(c *gin.Context) {
	books := h.books.Books()
	out := make([]dto.BookDTO, 0, len(books))
	for _, b := range books {
		out = append(out, dto.BookDTO{Name: b.Name, Author: b.Author, ExcerptCount: b.ExcerptCount})
	}
	c.JSON(http.StatusOK, out)
}

// Decode handles POST /cipher/decode
func (h *CipherHandler) Decode(c *gin.Context) {
	var req dto.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerr.ErrInvalidCipher, "morseCode is required")
		return
	}

	if err := cipher.ValidateCipher(req.MorseCode); err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, dto.DecodeResponse{
		Pinyin:   cipher.CipherToPhonetic(req.MorseCode),
		Timeline: cipher.CipherToTimeline(req.MorseCode),
	})
}
