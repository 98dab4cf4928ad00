package dto

import (
	"context"

	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// ErrorResponse is the body of every 4xx and 5xx reply. Code is the numeric
// domain code for err; RequestID echoes the X-Request-ID of the failed call.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// NewErrorResponse builds the reply for err with a caller-facing message
func NewErrorResponse(ctx context.Context, err error, message string) ErrorResponse {
	return ErrorResponse{
		Code:      domainerr.ErrorCode(err),
		Message:   message,
		RequestID: coreport.RequestIDFrom(ctx),
	}
}
