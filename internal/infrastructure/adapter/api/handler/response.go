package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
)

// respondError maps a domain error onto the JSON error shape. Server-side failures
// are logged and reported without detail.
func respondError(c *gin.Context, logger coreport.Logger, err error, fields map[string]any) {
	status := domainerr.HTTPStatus(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		if fields == nil {
			fields = map[string]any{}
		}
		fields["path"] = c.FullPath()
		fields["request_id"] = coreport.RequestIDFrom(c.Request.Context())
		logger.Error("Request failed", coreport.ErrorFields(err, fields))
		message = "Internal server error"
	}

	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(c.Request.Context(), err, message))
}

// badRequest rejects malformed input before it reaches a use case
func badRequest(c *gin.Context, err error, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c.Request.Context(), err, message))
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string, invalid error) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, invalid, "Invalid "+name+" format")
		return 0, false
	}
	return id, true
}

// actingAs checks that an authenticated caller only acts for themselves.
// Unauthenticated requests pass; routes that need a token say so in the router.
func actingAs(c *gin.Context, userID uint64) bool {
	principal, ok := sport.PrincipalFrom(c.Request.Context())
	if !ok || principal == userID {
		return true
	}
	c.JSON(http.StatusForbidden, dto.NewErrorResponse(c.Request.Context(),
		domainerr.ErrForbidden, "Token does not belong to this user"))
	return false
}
