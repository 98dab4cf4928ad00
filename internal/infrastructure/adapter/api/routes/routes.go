package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups everything mounted under /api
type Handlers struct {
	Users     *handler.UserHandler
	Envelopes *handler.EnvelopeHandler
	Cipher    *handler.CipherHandler
	Health    *handler.HealthHandler
}

// Options controls route-level policy
type Options struct {
	// RequireToken makes every mutating route except login demand a bearer token
	RequireToken bool
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, opts Options) {
	api := router.Group("/api")

	// Mutating routes pass through this chain
	var guard []gin.HandlerFunc
	if opts.RequireToken {
		guard = append(guard, middleware.RequirePrincipal())
	}
	guarded := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), fn)
	}

	api.GET("/health", h.Health.Health)

	// User routes
	users := api.Group("/users")
	{
		users.POST("", h.Users.Login)
		users.GET("/:id/wallet", h.Users.GetWallet)
		users.POST("/:id/recharge", guarded(h.Users.Recharge)...)
		users.GET("/:id/transactions", h.Users.ListTransactions)
	}

	// Envelope routes
	envelopes := api.Group("/envelopes")
	{
		envelopes.POST("", guarded(h.Envelopes.Create)...)
		envelopes.GET("", h.Envelopes.List)
		envelopes.GET("/:id", h.Envelopes.Get)
		envelopes.POST("/:id/claim", guarded(h.Envelopes.Claim)...)
	}

	api.GET("/books", h.Cipher.Books)
	api.POST("/cipher/decode", h.Cipher.Decode)
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, issuer sport.TokenIssuer, corsOrigins []string) {
	// Apply middlewares in the correct order
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(corsOrigins...))
	router.Use(middleware.Authenticate(issuer))
}
