package middleware

import (
	"net/http"
	"strings"

	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// Authenticate reads a bearer token when one is sent and stores its subject as
// the request principal. A bad token is rejected; a missing one is not.
// A nil issuer turns the middleware into a no-op.
func Authenticate(issuer sport.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			c.Next()
			return
		}

		userID, err := issuer.Parse(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Request = c.Request.WithContext(sport.WithPrincipal(c.Request.Context(), userID))
		c.Next()
	}
}

// RequirePrincipal rejects requests that did not authenticate
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sport.PrincipalFrom(c.Request.Context()); !ok {
			abortUnauthorized(c, "Missing bearer token")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(c.Request.Context(), domainerr.ErrUnauthorized, message))
}
