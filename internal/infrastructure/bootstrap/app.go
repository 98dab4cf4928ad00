// Package bootstrap assembles the envelope service from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/allocator"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/excerpt"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/usecase/envelope"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/usecase/wallet"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/corpus"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/pinyin"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/security"
	timeadapter "github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/config"
)

// PoolMetricsInterval is how often connection pool statistics are logged
const PoolMetricsInterval = time.Minute

// NewLogger builds the application logger from the logger section
func NewLogger(cfg *config.Config) (*logger.ZapLogger, error) {
	return logger.NewZapLogger(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		CallerInfo: cfg.Logger.CallerInfo,
		Production: cfg.IsProduction(),
	})
}

// LoadBooks returns the configured corpus, falling back to the embedded one
func LoadBooks(cfg *config.Config) (*corpus.Corpus, error) {
	if cfg.Envelope.CorpusPath != "" {
		return corpus.LoadFile(cfg.Envelope.CorpusPath, nil)
	}
	return corpus.Default(nil)
}

// App holds the wired service
type App struct {
	Config    *config.Config
	Logger    coreport.Logger
	Clock     coreport.TimeProvider
	DB        *database.Manager
	Books     excerpt.Provider
	Tokens    sport.TokenIssuer // nil when no token secret is configured
	Ledger    *wallet.Ledger
	Users     *user.UserUseCase
	Envelopes *envelope.EnvelopeUseCase
}

// New connects to the database, migrates it when asked to and builds the use cases
func New(ctx context.Context, cfg *config.Config, log coreport.Logger) (*App, error) {
	clock := timeadapter.NewRealTimeProvider()

	startingBalance, err := entity.ValidateAndConvertAmount(cfg.Wallet.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("wallet.startingBalance: %w", err)
	}

	books, err := LoadBooks(cfg)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	verifier, err := security.NewVerifier(cfg.Auth.CredentialMode, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	var tokens sport.TokenIssuer
	if cfg.Auth.TokenSecret != "" {
		issuer, err := security.NewJWTIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL, clock)
		if err != nil {
			return nil, err
		}
		tokens = issuer
	}

	manager := database.NewManager(database.FromAppConfig(cfg), log, clock)
	if _, err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := manager.Migrate(ctx); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	uow := manager.CreateUnitOfWork()
	ledger := wallet.NewLedger(uow, clock, log)
	translit := pinyin.NewTransliterator()

	return &App{
		Config: cfg,
		Logger: log,
		Clock:  clock,
		DB:     manager,
		Books:  books,
		Tokens: tokens,
		Ledger: ledger,
		Users: user.NewUserUseCase(uow, ledger, verifier, tokens, user.Config{
			StartingBalance:  startingBalance,
			TransactionLimit: cfg.Wallet.TransactionLimit,
		}, clock, log),
		Envelopes: envelope.NewEnvelopeUseCase(envelope.Dependencies{
			UnitOfWork:   uow,
			Ledger:       ledger,
			Excerpts:     books,
			Extractor:    excerpt.NewExtractor(translit, nil),
			Codec:        cipher.NewCodec(translit),
			Allocator:    allocator.New(nil),
			Serializer:   envelope.NewSerializer(cfg.Transaction.ConcurrencyLevel, log),
			Retrier:      manager.CreateRetrier(database.RetryConfigFromApp(cfg)),
			TimeProvider: clock,
			Logger:       log,
		}, envelope.Config{
			Lifetime:       cfg.Envelope.Lifetime,
			ListLimit:      cfg.Envelope.ListLimit,
			PasswordLength: cfg.Envelope.PasswordLength,
			SweepBatchSize: cfg.Envelope.SweepBatchSize,
		}),
	}, nil
}

// Router builds the HTTP router with every route mounted
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupMiddlewares(router, a.Logger, a.Tokens, a.Config.Server.CORSOrigins)
	routes.SetupRoutes(router, routes.Handlers{
		Users:     handler.NewUserHandler(a.Users, a.Logger),
		Envelopes: handler.NewEnvelopeHandler(a.Envelopes, a.Logger),
		Cipher:    handler.NewCipherHandler(a.Books, a.Logger),
		Health:    handler.NewHealthHandler(a.DB.HealthChecker(), a.Clock),
	}, routes.Options{RequireToken: a.Config.Auth.RequireToken})
	return router
}

// Serve runs the HTTP server and the expiry sweeper until ctx is cancelled,
// then shuts both down within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := a.Config.Server
	server := &http.Server{
		Addr:              net.JoinHostPort(srv.Host, strconv.Itoa(srv.Port)),
		Handler:           a.Router(),
		ReadTimeout:       srv.ReadTimeout,
		WriteTimeout:      srv.WriteTimeout,
		ReadHeaderTimeout: srv.ReadHeaderTimeout,
		IdleTimeout:       srv.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  a.Config.Environment,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Envelopes.RunSweeper(gctx, a.Config.Envelope.SweepInterval)
	})

	g.Go(func() error {
		monitor := database.NewPoolMonitor(a.DB.DB(), a.Logger)
		if err := monitor.Run(gctx, PoolMetricsInterval); err != nil {
			a.Logger.Warn("Connection pool monitor stopped", coreport.ErrorFields(err, nil))
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down server...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close drains the claim workers and closes the database
func (a *App) Close() error {
	a.Envelopes.Shutdown()
	err := a.DB.Close()
	if flushErr := a.Logger.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}
